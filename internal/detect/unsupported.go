package detect

import (
	"github.com/kailas-cloud/usersearch/internal/domain/query"
)

// Warnings for phrasing the filter model cannot express.
const (
	WarnNegation      = "Negation/exclusion queries are not supported - showing matching results instead"
	WarnGenderOr      = "OR logic between genders is not supported - using first gender found"
	WarnEndsWith      = "Ends-with filtering is not supported - use 'contains' or 'starts with' instead"
	WarnExactLength   = "Exact length filtering is not supported - only odd/even length is available"
	WarnUsernameMatch = "Username text filtering is not supported - matching full names instead"
)

// Unsupported never sets fields; it only explains what will be ignored.
// A "not" already consumed as a picture negation is supported.
func Unsupported(in Input, found query.Fields) Output {
	var warnings []string
	pictureNegation := found.HasProfilePic != nil || in.Has("profile")
	if in.Has("except", "exclude", "excluding") || (in.Has("not") && !pictureNegation) {
		warnings = append(warnings, WarnNegation)
	}
	if in.Has("or") && in.Has("male", "female", "other") {
		warnings = append(warnings, WarnGenderOr)
	}
	if in.HasPhrase("ends with", "end with", "ending with") {
		warnings = append(warnings, WarnEndsWith)
	}
	if in.Has("exactly") && in.Has("letter", "letters", "char", "chars", "character", "characters") {
		warnings = append(warnings, WarnExactLength)
	}
	return Output{Warnings: warnings}
}
