package detect

import (
	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// Warnings emitted by gender detection.
const (
	WarnNonBinary  = "Interpreted as 'non-binary'"
	WarnFemaleTypo = "Interpreted as 'female' (possible typo corrected)"
)

// Gender checks Other first, then female words and typos, then male words.
func Gender(in Input, found query.Fields) Output {
	if found.Gender != nil {
		return Output{}
	}

	switch {
	case in.HasAny(otherWords) || in.HasPhrase("non binary", "other gender", "other genders"):
		return genderOut(query.GenderOther)
	case in.Has("nb"):
		return genderOut(query.GenderOther, WarnNonBinary)
	case hasGenderWord(in, femaleWords):
		return genderOut(query.GenderFemale)
	case hasGenderWord(in, femaleTypos) && !in.Has("male"):
		return genderOut(query.GenderFemale, WarnFemaleTypo)
	case hasGenderWord(in, maleWords):
		return genderOut(query.GenderMale)
	case in.Has("other") && in.Has("gender", "users", "user"):
		return genderOut(query.GenderOther)
	}
	return Output{}
}

// hasGenderWord ignores words used as a name ("named lady").
func hasGenderWord(in Input, words map[string]bool) bool {
	for i, t := range in.tokens {
		if words[t] && !nameMarkers[in.token(i-1)] {
			return true
		}
	}
	return false
}

func genderOut(g query.Gender, warnings ...string) Output {
	return Output{Fields: query.Fields{Gender: query.Ptr(g)}, Warnings: warnings}
}
