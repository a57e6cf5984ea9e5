// Package normalize canonicalizes free-text search queries.
//
// Normalize is the key-derivation step for fuzzy cache lookups and the input of
// pattern detection, so it must stay pure and idempotent:
// Normalize(Normalize(x)) == Normalize(x).
package normalize

import (
	"strings"
)

// edgePunct is stripped from both ends of every token.
const edgePunct = "?!.,;:\"'`()[]{}"

// abbreviations expands shorthand and fixes common vocabulary misspellings.
// Gender misspellings are left alone so the detector can flag them.
var abbreviations = map[string]string{
	"w/":            "with",
	"w/o":           "without",
	"wo/":           "without",
	"pic":           "picture",
	"pics":          "pictures",
	"pfp":           "profile picture",
	"img":           "image",
	"imgs":          "images",
	"usr":           "user",
	"usrs":          "users",
	"ppl":           "people",
	"usernmae":      "username",
	"usernmaes":     "usernames",
	"lenght":        "length",
	"pciture":       "picture",
	"picutre":       "picture",
	"alphabeticaly": "alphabetical",
	"alphabetic":    "alphabetical",
	"newst":         "newest",
	"oldst":         "oldest",
}

// synonyms map colloquial vocabulary onto the words detectors look for.
var synonyms = map[string]string{
	"ladies":    "female users",
	"lady":      "female",
	"women":     "female users",
	"woman":     "female",
	"girls":     "female users",
	"girl":      "female",
	"gals":      "female users",
	"females":   "female",
	"guys":      "male users",
	"guy":       "male",
	"men":       "male users",
	"man":       "male",
	"boys":      "male users",
	"boy":       "male",
	"gentlemen": "male users",
	"males":     "male",
	"people":    "users",
	"persons":   "users",
	"folks":     "users",
	"members":   "users",
	"accounts":  "users",
	"recent":    "newest",
	"latest":    "newest",
	"biggest":   "longest",
	"largest":   "longest",
	"smallest":  "shortest",
	"tiniest":   "shortest",
	"called":    "named",
}

// starters are command verbs collapsed into the canonical "show".
var starters = map[string]bool{
	"show": true, "find": true, "get": true, "list": true, "display": true,
	"search": true, "fetch": true, "give": true, "see": true, "view": true, "lookup": true,
}

// fillers are dropped everywhere.
var fillers = map[string]bool{
	"please": true, "kindly": true, "the": true, "an": true, "my": true,
}

// fillerPairs are two-word fillers ("could you").
var fillerPairs = map[string]bool{
	"could": true, "can": true, "would": true, "will": true,
}

// leadWords may appear in a leading command run next to a starter.
var leadWords = map[string]bool{
	"me": true, "i": true, "want": true, "to": true, "for": true, "us": true,
	"could": true, "can": true, "would": true, "will": true, "you": true,
}

// Normalize canonicalizes query text. It never fails; empty input yields "".
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = FirstLine(text)

	tokens := tokenize(text)
	tokens = expandAbbreviations(tokens)
	tokens = replaceSynonyms(tokens)
	tokens = collapseStarter(tokens)
	tokens = dropFillers(tokens)

	return strings.Join(tokens, " ")
}

// FirstLine returns text up to the first line break.
func FirstLine(text string) string {
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		return text[:i]
	}
	return text
}

// Tokens splits normalized text into words.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

func tokenize(text string) []string {
	raw := strings.Fields(text)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.Trim(t, edgePunct); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func expandAbbreviations(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, expandToken(t)...)
	}
	return out
}

func expandToken(t string) []string {
	t = strings.Trim(t, edgePunct)
	if t == "" {
		return nil
	}
	if v, ok := abbreviations[t]; ok {
		return strings.Fields(v)
	}
	for _, prefix := range []string{"w/o", "wo/", "w/"} {
		if rest, ok := strings.CutPrefix(t, prefix); ok {
			return append(strings.Fields(abbreviations[prefix]), expandToken(rest)...)
		}
	}
	return []string{t}
}

func replaceSynonyms(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if v, ok := synonyms[t]; ok {
			out = append(out, strings.Fields(v)...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// collapseStarter replaces a leading command run ("could you please show me")
// with "show" when the run contains at least one starter verb.
func collapseStarter(tokens []string) []string {
	i := 0
	sawStarter := false
	for i < len(tokens) {
		t := tokens[i]
		if !starters[t] && !fillers[t] && !leadWords[t] {
			break
		}
		sawStarter = sawStarter || starters[t]
		i++
	}
	if !sawStarter {
		return tokens
	}
	return append([]string{"show"}, tokens[i:]...)
}

// dropFillers removes single and two-word fillers until none remain.
func dropFillers(tokens []string) []string {
	for {
		out := make([]string, 0, len(tokens))
		for i := 0; i < len(tokens); i++ {
			t := tokens[i]
			if fillers[t] {
				continue
			}
			if fillerPairs[t] && i+1 < len(tokens) && tokens[i+1] == "you" {
				i++
				continue
			}
			out = append(out, t)
		}
		if len(out) == len(tokens) {
			return out
		}
		tokens = out
	}
}
