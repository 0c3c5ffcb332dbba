package competitor

import "strings"

// industryCompetitors maps an industry keyword to a fixed list of
// representative competitor sites, used when no explicit URLs are supplied.
var industryCompetitors = map[string][]string{
	"fashion": {
		"https://www.zara.com",
		"https://www.hm.com",
		"https://www.asos.com",
	},
	"tech": {
		"https://www.apple.com",
		"https://www.samsung.com",
		"https://www.microsoft.com",
	},
	"food": {
		"https://www.hellofresh.com",
		"https://www.blueapron.com",
		"https://www.doordash.com",
	},
	"fitness": {
		"https://www.peloton.com",
		"https://www.nike.com",
		"https://www.myfitnesspal.com",
	},
	"beauty": {
		"https://www.sephora.com",
		"https://www.glossier.com",
		"https://www.ulta.com",
	},
	"travel": {
		"https://www.airbnb.com",
		"https://www.booking.com",
		"https://www.expedia.com",
	},
	"finance": {
		"https://www.stripe.com",
		"https://www.chime.com",
		"https://www.robinhood.com",
	},
	"education": {
		"https://www.coursera.org",
		"https://www.udemy.com",
		"https://www.khanacademy.org",
	},
}

// industryOrder fixes the probe order for substring matching
var industryOrder = []string{
	"fashion", "tech", "food", "fitness", "beauty", "travel", "finance", "education",
}

var defaultCompetitors = []string{
	"https://www.shopify.com",
	"https://www.squarespace.com",
	"https://www.mailchimp.com",
}

// DiscoverURLs maps an industry string to a fixed competitor list. Matching
// is a case-insensitive substring check against the table keys, first match
// in declaration order; unknown industries get the default list.
func DiscoverURLs(industry string) []string {
	needle := strings.ToLower(strings.TrimSpace(industry))
	if needle == "" {
		return append([]string(nil), defaultCompetitors...)
	}

	// Exact key first, then substring containment either way
	if urls, ok := industryCompetitors[needle]; ok {
		return append([]string(nil), urls...)
	}
	for _, key := range industryOrder {
		if strings.Contains(needle, key) || strings.Contains(key, needle) {
			return append([]string(nil), industryCompetitors[key]...)
		}
	}

	return append([]string(nil), defaultCompetitors...)
}
