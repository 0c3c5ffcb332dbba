package competitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoverURLs_KnownIndustry(t *testing.T) {
	urls := DiscoverURLs("fashion")
	assert.Equal(t, industryCompetitors["fashion"], urls)
}

func TestDiscoverURLs_SubstringMatch(t *testing.T) {
	urls := DiscoverURLs("Sustainable Fashion Retail")
	assert.Equal(t, industryCompetitors["fashion"], urls)

	urls = DiscoverURLs("fintech")
	assert.Equal(t, industryCompetitors["tech"], urls)
}

func TestDiscoverURLs_UnknownIndustryFallsBack(t *testing.T) {
	urls := DiscoverURLs("underwater basket weaving")
	assert.Equal(t, defaultCompetitors, urls)
}

func TestDiscoverURLs_EmptyIndustry(t *testing.T) {
	urls := DiscoverURLs("")
	assert.Equal(t, defaultCompetitors, urls)
}

func TestDiscoverURLs_ReturnsCopy(t *testing.T) {
	urls := DiscoverURLs("travel")
	urls[0] = "https://mutated.example"

	assert.NotEqual(t, urls[0], industryCompetitors["travel"][0])
}
