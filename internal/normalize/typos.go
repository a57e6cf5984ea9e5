package normalize

import (
	"regexp"
	"strings"
)

// typos maps known misspellings to the vocabulary word, gender words included.
var typos = map[string]string{
	"fmale":     "female",
	"femal":     "female",
	"femail":    "female",
	"femails":   "females",
	"femle":     "female",
	"feamle":    "female",
	"femmale":   "female",
	"femlae":    "female",
	"mlae":      "male",
	"maale":     "male",
	"usres":     "users",
	"uesrs":     "users",
	"usernmae":  "username",
	"lenght":    "length",
	"pciture":   "picture",
	"picutre":   "picture",
	"nonbinray": "non-binary",
}

var typoRe = buildTypoRe()

func buildTypoRe() *regexp.Regexp {
	words := make([]string, 0, len(typos))
	for w := range typos {
		words = append(words, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
}

// FixTypos corrects known misspellings in place, leaving the rest of the text
// (case included) untouched. It reports whether anything changed.
func FixTypos(text string) (string, bool) {
	changed := false
	out := typoRe.ReplaceAllStringFunc(text, func(m string) string {
		changed = true
		return typos[strings.ToLower(m)]
	})
	return out, changed
}
