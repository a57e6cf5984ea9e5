package detect

import (
	"github.com/kailas-cloud/usersearch/internal/domain/query"
	"github.com/kailas-cloud/usersearch/internal/normalize"
)

var (
	everything     = query.Fields{Everything: true}
	femaleFields   = query.Fields{Gender: query.Ptr(query.GenderFemale)}
	maleFields     = query.Fields{Gender: query.Ptr(query.GenderMale)}
	otherFields    = query.Fields{Gender: query.Ptr(query.GenderOther)}
	withPicture    = query.Fields{HasProfilePic: query.Ptr(true)}
	withoutPicture = query.Fields{HasProfilePic: query.Ptr(false)}
	newestFields   = query.Fields{SortBy: query.Ptr(query.SortCreatedAt), SortOrder: query.Ptr(query.Desc)}
	oldestFields   = query.Fields{SortBy: query.Ptr(query.SortCreatedAt), SortOrder: query.Ptr(query.Asc)}
)

// exactPhrases holds the most frequent queries verbatim. Keys pass through
// the normalizer once at init so lookups compare canonical forms.
var exactPhrases = normalizeKeys(map[string]query.Fields{
	"all users":               everything,
	"users":                   everything,
	"show users":              everything,
	"show all users":          everything,
	"list all users":          everything,
	"everyone":                everything,
	"show everyone":           everything,
	"everybody":               everything,
	"female users":            femaleFields,
	"all female users":        femaleFields,
	"show female users":       femaleFields,
	"show all female users":   femaleFields,
	"women":                   femaleFields,
	"male users":              maleFields,
	"all male users":          maleFields,
	"show male users":         maleFields,
	"show all male users":     maleFields,
	"men":                     maleFields,
	"other users":             otherFields,
	"non-binary users":        otherFields,
	"show non-binary users":   otherFields,
	"users with pictures":     withPicture,
	"users with a picture":    withPicture,
	"users without pictures":  withoutPicture,
	"users without a picture": withoutPicture,
	"newest users":            newestFields,
	"show newest users":       newestFields,
	"oldest users":            oldestFields,
	"show oldest users":       oldestFields,
})

func normalizeKeys(in map[string]query.Fields) map[string]query.Fields {
	out := make(map[string]query.Fields, len(in))
	for k, v := range in {
		out[normalize.Normalize(k)] = v
	}
	return out
}

// ExactPhrase answers whole-text matches against the phrase dictionary.
func ExactPhrase(in Input, found query.Fields) Output {
	if !found.IsEmpty() {
		return Output{}
	}
	if f, ok := exactPhrases[in.Text()]; ok {
		return Output{Fields: f}
	}
	return Output{}
}
