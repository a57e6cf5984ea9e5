package detect

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/usersearch/internal/normalize"
)

// Input is normalized text pre-split into tokens. Matching is always
// token-based so "female" never matches "male".
type Input struct {
	text   string
	tokens []string
	set    map[string]struct{}
}

// NewInput tokenizes normalized text.
func NewInput(normalized string) Input {
	tokens := normalize.Tokens(normalized)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return Input{text: strings.Join(tokens, " "), tokens: tokens, set: set}
}

// Text returns the whitespace-joined tokens.
func (in Input) Text() string { return in.text }

// Tokens returns the token list. Callers must not modify it.
func (in Input) Tokens() []string { return in.tokens }

// Has reports whether any of the words is a token.
func (in Input) Has(words ...string) bool {
	for _, w := range words {
		if _, ok := in.set[w]; ok {
			return true
		}
	}
	return false
}

// HasAny reports whether any token is in the set.
func (in Input) HasAny(set map[string]bool) bool {
	for _, t := range in.tokens {
		if set[t] {
			return true
		}
	}
	return false
}

// HasPhrase reports whether any phrase occurs as a whole-token sequence.
func (in Input) HasPhrase(phrases ...string) bool {
	padded := " " + in.text + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

// PhraseEnd returns the token index right after the earliest occurrence of
// any phrase, or -1.
func (in Input) PhraseEnd(phrases ...string) int {
	bestStart, bestEnd := -1, -1
	for _, p := range phrases {
		words := strings.Fields(p)
		for i := 0; i+len(words) <= len(in.tokens); i++ {
			if slices.Equal(in.tokens[i:i+len(words)], words) {
				if bestStart == -1 || i < bestStart {
					bestStart, bestEnd = i, i+len(words)
				}
				break
			}
		}
	}
	return bestEnd
}

// token returns the token at i or "" when out of range.
func (in Input) token(i int) string {
	if i < 0 || i >= len(in.tokens) {
		return ""
	}
	return in.tokens[i]
}
