package competitor

import (
	"sort"
	"strings"
)

// stopWords are dropped before ranking. Tokens of length <= 3 are dropped
// unconditionally, so only longer words need to appear here.
var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "have": {}, "from": {},
	"they": {}, "will": {}, "been": {}, "were": {}, "said": {},
	"each": {}, "which": {}, "their": {}, "time": {}, "would": {},
	"there": {}, "what": {}, "about": {}, "when": {}, "your": {},
	"more": {}, "other": {}, "into": {}, "only": {}, "some": {},
	"could": {}, "them": {}, "than": {}, "then": {}, "these": {},
	"also": {}, "after": {}, "most": {}, "make": {}, "like": {},
}

// ExtractKeywords tokenizes free text and returns tokens ranked descending by
// occurrence count, ties broken by first-seen order. Lowercases, treats every
// non-alphanumeric rune as a separator, and drops tokens of length <= 3 or in
// the stop-word set. limit <= 0 means no cap.
func ExtractKeywords(text string, limit int) []string {
	if text == "" {
		return []string{}
	}

	lowered := strings.ToLower(text)
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for _, tok := range tokens {
		if len(tok) <= 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, seen := counts[tok]; !seen {
			firstSeen[tok] = order
			order++
		}
		counts[tok]++
	}

	ranked := make([]string, 0, len(counts))
	for tok := range counts {
		ranked = append(ranked, tok)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
