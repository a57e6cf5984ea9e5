package detect

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

const (
	minBareName    = 2
	maxBareName    = 40
	maxBareNameLen = 4
)

var (
	startsWithPhrases = []string{
		"starts with", "starting with", "begins with", "beginning with", "begin with",
		"start with", "start at", "starting letter", "first letter",
	}
	letterArticles = setOf("a", "an", "the", "letter", "of")
	namedSkip      = setOf("is", "like", "of", "that", "which", "who", "a", "an", "the", "users", "user", "all", "me")
	sortingWords   = setOf("oldest", "newest", "longest", "shortest", "with", "without")
	possessives    = setOf("their", "his", "her", "its")
	commandWords   = setOf("show", "all")
	filterFollow   = setOf(
		"female", "male", "other", "newest", "oldest", "longest", "shortest",
		"with", "without", "no", "user", "users",
	)
)

type namePattern func(in Input, found query.Fields) (name string, prefix bool, ok bool)

// namePatterns are tried in order; the first match wins.
var namePatterns = []namePattern{
	letterBeforeNames,
	startsWith,
	letterInName,
	containing,
	namedAs,
	inTheirName,
	withName,
	leadingName,
	nameUsers,
	singleLetter,
	bareName,
}

// Name extracts a name substring and whether it is a prefix match. The
// substring always applies to the full name, so a username phrasing is
// flagged.
func Name(in Input, found query.Fields) Output {
	if found.NameSubstr != nil {
		return Output{}
	}
	for _, p := range namePatterns {
		if name, prefix, ok := p(in, found); ok {
			out := Output{Fields: query.Fields{NameSubstr: query.Ptr(name), StartsWith: prefix}}
			if in.HasAny(usernameWords) {
				out.Warnings = []string{WarnUsernameMatch}
			}
			return out
		}
	}
	return Output{}
}

// "show a names" / "j names".
func letterBeforeNames(in Input, _ query.Fields) (string, bool, bool) {
	for i, t := range in.tokens {
		if t == "names" && isLetter(in.token(i-1)) {
			return strings.ToUpper(in.token(i - 1)), true, true
		}
	}
	return "", false, false
}

// "names starting with the letter j" / "users whose name begins with jo".
func startsWith(in Input, _ query.Fields) (string, bool, bool) {
	end := in.PhraseEnd(startsWithPhrases...)
	if end < 0 {
		return "", false, false
	}
	for end < len(in.tokens) && letterArticles[in.token(end)] && end+1 < len(in.tokens) {
		end++
	}
	switch t := in.token(end); {
	case isLetter(t):
		return strings.ToUpper(t), true, true
	case isNameWord(t):
		return titleCase(t), true, true
	}
	return "", false, false
}

// "letter k in their name".
func letterInName(in Input, _ query.Fields) (string, bool, bool) {
	for i, t := range in.tokens {
		if t != "letter" || !isLetter(in.token(i+1)) {
			continue
		}
		if slicesHasAny(in.tokens[i:], nameWords) {
			return strings.ToUpper(in.token(i + 1)), false, true
		}
	}
	return "", false, false
}

// "containing ann" / "names including the letter z".
func containing(in Input, _ query.Fields) (string, bool, bool) {
	end := in.PhraseEnd("containing", "contains", "contain", "including", "includes", "include")
	if end < 0 {
		return "", false, false
	}
	for letterArticles[in.token(end)] && end+1 < len(in.tokens) {
		end++
	}
	switch t := in.token(end); {
	case isLetter(t):
		return strings.ToUpper(t), false, true
	case isNameWord(t):
		return titleCase(t), false, true
	}
	return "", false, false
}

// "named bob" / "name like ann" / "with the name lady". Gender words are
// accepted here because the phrasing marks them as names.
func namedAs(in Input, _ query.Fields) (string, bool, bool) {
	for i, t := range in.tokens {
		if !nameMarkers[t] {
			continue
		}
		j := i + 1
		for namedSkip[in.token(j)] && j+1 < len(in.tokens) {
			j++
		}
		next := in.token(j)
		if next == "" || namedSkip[next] || sortingWords[next] || !isNameChars(next) || !unicode.IsLetter(firstRune(next)) {
			continue
		}
		if vocabulary[next] && !femaleWords[next] && !maleWords[next] {
			continue
		}
		return titleCase(next), false, true
	}
	return "", false, false
}

// "with taylor in their name" / "jo in name".
func inTheirName(in Input, _ query.Fields) (string, bool, bool) {
	for i, t := range in.tokens {
		if t != "in" {
			continue
		}
		n := i + 1
		if possessives[in.token(n)] {
			n++
		}
		if !nameWords[in.token(n)] && !usernameWords[in.token(n)] {
			continue
		}
		switch cand := in.token(i - 1); {
		case isLetter(cand):
			return strings.ToUpper(cand), false, true
		case isNameWord(cand):
			return titleCase(cand), false, true
		}
	}
	return "", false, false
}

// "female users with ann": only once a gender is known and nothing else
// claims the "with".
func withName(in Input, found query.Fields) (string, bool, bool) {
	if found.Gender == nil || found.HasProfilePic != nil || in.HasAny(imageWords) || in.Has("profile") {
		return "", false, false
	}
	for i, t := range in.tokens {
		if t == "with" && isNameWord(in.token(i+1)) {
			return titleCase(in.token(i + 1)), false, true
		}
	}
	return "", false, false
}

// "show taylor female users" / "taylor with pictures".
func leadingName(in Input, found query.Fields) (string, bool, bool) {
	rest := trimLeading(in.tokens, commandWords)
	if len(rest) < 2 || !isNameWord(rest[0]) {
		return "", false, false
	}
	if filterFollow[rest[1]] || found.Gender != nil {
		return titleCase(rest[0]), false, true
	}
	return "", false, false
}

// "taylor users".
func nameUsers(in Input, _ query.Fields) (string, bool, bool) {
	rest := trimLeading(in.tokens, commandWords)
	if len(rest) == 2 && (rest[1] == "users" || rest[1] == "user") && isNameWord(rest[0]) {
		return titleCase(rest[0]), false, true
	}
	return "", false, false
}

func singleLetter(in Input, _ query.Fields) (string, bool, bool) {
	if len(in.tokens) == 1 && isLetter(in.tokens[0]) {
		return strings.ToUpper(in.tokens[0]), false, true
	}
	return "", false, false
}

// bareName treats short text made only of non-vocabulary words as a name.
// Anything containing complex vocabulary abstains so the model sees it.
func bareName(in Input, _ query.Fields) (string, bool, bool) {
	n := len(in.tokens)
	if n == 0 || n > maxBareNameLen || len(in.text) < minBareName || len(in.text) > maxBareName {
		return "", false, false
	}
	if in.HasAny(complexWords) {
		return "", false, false
	}
	for _, t := range in.tokens {
		if !isNameWord(t) {
			return "", false, false
		}
	}
	return titleCase(in.text), false, true
}

// isNameWord accepts letters, apostrophes and hyphens, starting with a letter,
// and rejects anything the detectors treat as vocabulary.
func isNameWord(t string) bool {
	if len(t) < 2 || vocabulary[t] {
		return false
	}
	return unicode.IsLetter(firstRune(t)) && isNameChars(t)
}

func isNameChars(t string) bool {
	for _, r := range t {
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}

func isLetter(t string) bool {
	r := []rune(t)
	return len(r) == 1 && unicode.IsLetter(r[0])
}

func firstRune(t string) rune {
	for _, r := range t {
		return r
	}
	return 0
}

// titleCase capitalizes every word and every part after ' or -.
func titleCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if upper {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		upper = r == ' ' || r == '\'' || r == '-'
	}
	return b.String()
}

func trimLeading(tokens []string, set map[string]bool) []string {
	for len(tokens) > 0 && set[tokens[0]] {
		tokens = tokens[1:]
	}
	return tokens
}

func slicesHasAny(tokens []string, set map[string]bool) bool {
	for _, t := range tokens {
		if set[t] {
			return true
		}
	}
	return false
}
