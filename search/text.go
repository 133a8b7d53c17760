package search

import (
	"strings"
	"unicode"
)

// Stop words to filter out when checking for verbatim matches
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"it": true, "for": true, "on": true, "with": true, "as": true, "at": true,
	"by": true, "from": true, "my": true, "your": true, "le": true, "la": true,
	"les": true, "de": true, "der": true, "die": true, "das": true,
}

// tokenizeAndFilter splits text on anything that is not a letter or digit,
// lowercases, and removes stop words. "Op.27-No.2" yields op, 27, no, 2.
func tokenizeAndFilter(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, "'"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// containsAllQueryWords checks if all query words (after filtering) appear in the title
func containsAllQueryWords(title, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	titleWords := make(map[string]bool)
	for _, word := range tokenizeAndFilter(title) {
		titleWords[word] = true
	}

	for _, qWord := range queryWords {
		if !titleWords[qWord] {
			return false
		}
	}

	return true
}
