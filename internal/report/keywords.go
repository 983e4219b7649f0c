package report

import (
	"strings"
	"unicode"
)

const topKeywordLimit = 10

// Filler words and report-domain terms that would drown out the signal.
var keywordStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "to": {}, "and": {},
	"of": {}, "in": {}, "what": {}, "who": {}, "how": {}, "summary": {},
	"summarize": {},
}

// TopKeywords extracts the ten most frequent words across the question
// texts. Words are lowercased, split on non-word runs; stopwords and pure
// digit tokens are dropped. Ties break by keyword ascending.
func TopKeywords(questions []string) []MetricCountResult {
	counts := make(map[string]int)
	for _, q := range questions {
		for _, word := range splitWords(strings.ToLower(q)) {
			if _, stop := keywordStopwords[word]; stop {
				continue
			}
			if allDigits(word) {
				continue
			}
			counts[word]++
		}
	}

	results := sortedCounts(counts)
	if len(results) > topKeywordLimit {
		results = results[:topKeywordLimit]
	}
	return results
}

// splitWords mirrors a \w+ scan: runs of letters, digits and underscores.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
