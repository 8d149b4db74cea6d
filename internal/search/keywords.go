package search

import (
	"path/filepath"
	"strings"
)

// MinKeywordLen is the shortest token kept; shorter ones are noise words
const MinKeywordLen = 4

// Keywords splits a task description into lowercase ASCII alphanumeric tokens,
// dropping tokens of three characters or fewer. Order and duplicates are kept
// so a word repeated in the description weighs more.
func Keywords(description string) []string {
	text := strings.ToLower(description)

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})

	keywords := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if len(t) < MinKeywordLen {
			continue
		}
		keywords = append(keywords, t)
	}
	return keywords
}

// Score rates one file: +3 for every keyword contained in the lowercased base
// name, plus one for every case-insensitive occurrence in the content.
func Score(path, content string, keywords []string) int {
	name := strings.ToLower(filepath.Base(path))
	lower := strings.ToLower(content)

	score := 0
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			score += 3
		}
		score += strings.Count(lower, kw)
	}
	return score
}
