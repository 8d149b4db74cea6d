// Package response splits a model reply into explanation and code.
package response

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmpty is returned for a blank reply
var ErrEmpty = errors.New("empty response")

// Opening fence with an optional language tag, body up to the closing fence
var fenced = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")

// Parsed is the structured form of a reply
type Parsed struct {
	Code        string
	Explanation string
	Blocks      []string
}

// Parse extracts every fenced block in order. Code is the blocks joined by a
// blank line; the explanation is the trimmed text before the first fence, or
// the whole reply when there is none. An unterminated fence is prose.
func Parse(text string) (Parsed, error) {
	if strings.TrimSpace(text) == "" {
		return Parsed{}, ErrEmpty
	}

	matches := fenced.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return Parsed{Explanation: strings.TrimSpace(text)}, nil
	}

	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, strings.TrimSuffix(text[m[2]:m[3]], "\n"))
	}

	return Parsed{
		Code:        strings.Join(blocks, "\n\n"),
		Explanation: strings.TrimSpace(text[:matches[0][0]]),
		Blocks:      blocks,
	}, nil
}
