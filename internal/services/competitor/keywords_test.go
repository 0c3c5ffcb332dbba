package competitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_RanksByFrequency(t *testing.T) {
	text := "growth growth growth marketing marketing brand"
	got := ExtractKeywords(text, 0)

	assert.Equal(t, []string{"growth", "marketing", "brand"}, got)
}

func TestExtractKeywords_TiesBreakByFirstSeen(t *testing.T) {
	text := "alpha beta alpha beta gamma"
	got := ExtractKeywords(text, 0)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestExtractKeywords_DropsShortAndStopWords(t *testing.T) {
	text := "the cat sat with this that have from growth"
	got := ExtractKeywords(text, 0)

	assert.Equal(t, []string{"growth"}, got)
	for _, kw := range got {
		assert.Greater(t, len(kw), 3)
		_, isStop := stopWords[kw]
		assert.False(t, isStop, "stop word %q leaked through", kw)
	}
}

func TestExtractKeywords_NormalizesCaseAndPunctuation(t *testing.T) {
	text := "Growth! GROWTH? growth... Marketing/Brand"
	got := ExtractKeywords(text, 0)

	assert.Equal(t, []string{"growth", "marketing", "brand"}, got)
}

func TestExtractKeywords_Idempotent(t *testing.T) {
	text := "sustainable bottles for eco-conscious students seeking sustainable living"

	first := ExtractKeywords(text, 0)
	second := ExtractKeywords(text, 0)

	assert.Equal(t, first, second)
}

func TestExtractKeywords_Limit(t *testing.T) {
	text := "one1 two2 three3 four4 five5 six6"
	got := ExtractKeywords(text, 3)

	assert.Len(t, got, 3)
}

func TestExtractKeywords_EmptyInput(t *testing.T) {
	assert.Empty(t, ExtractKeywords("", 10))
	assert.Empty(t, ExtractKeywords("a an to of", 10))
}
