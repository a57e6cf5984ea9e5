// Package query defines the structured search intent produced by query parsing.
package query

import (
	"fmt"
	"strings"
)

// Gender is a gender filter value.
type Gender string

// Supported gender values.
const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// ParseGender accepts a case-insensitive gender name.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	case "other":
		return GenderOther, nil
	default:
		return "", fmt.Errorf("unknown gender %q", s)
	}
}

// Parity filters names by letter count modulo two.
type Parity string

// Supported parity values.
const (
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
)

// ParseParity accepts "odd" or "even" in any case.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "odd":
		return ParityOdd, nil
	case "even":
		return ParityEven, nil
	default:
		return "", fmt.Errorf("unknown parity %q", s)
	}
}

// SortField is the column or derived value results are ordered by.
type SortField string

// Supported sort fields.
const (
	SortNameLength     SortField = "name_length"
	SortUsernameLength SortField = "username_length"
	SortName           SortField = "name"
	SortUsername       SortField = "username"
	SortCreatedAt      SortField = "created_at"
)

// ParseSortField validates a sort field name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortNameLength, SortUsernameLength, SortName, SortUsername, SortCreatedAt:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", s)
	}
}

// SortOrder is the sort direction.
type SortOrder string

// Supported sort orders. Desc is the default.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder validates a sort direction.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case Asc, Desc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}
