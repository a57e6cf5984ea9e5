package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Filters is the immutable structured search intent. It is self-describing:
// applying it never requires the original query text.
type Filters struct {
	gender        *Gender
	nameSubstr    *string
	startsWith    bool
	parity        *Parity
	hasProfilePic *bool
	sortBy        *SortField
	sortOrder     SortOrder
	understood    bool
	warnings      []string
}

// New creates Filters from a partial field set.
func New(f Fields, understood bool, warnings []string) Filters {
	out := Filters{
		gender:        clone(f.Gender),
		nameSubstr:    clone(f.NameSubstr),
		parity:        clone(f.Parity),
		hasProfilePic: clone(f.HasProfilePic),
		sortBy:        clone(f.SortBy),
		sortOrder:     Desc,
		understood:    understood,
		warnings:      slices.Clone(warnings),
	}
	if out.nameSubstr != nil {
		out.startsWith = f.StartsWith
	}
	if f.SortOrder != nil {
		out.sortOrder = *f.SortOrder
	}
	return out
}

// Empty returns the unfiltered, not-understood fallback carrying warnings.
func Empty(warnings ...string) Filters {
	return New(Fields{}, false, warnings)
}

// Gender returns the gender filter, if set.
func (f Filters) Gender() (Gender, bool) { return deref(f.gender) }

// NameSubstr returns the name text to match, if set.
func (f Filters) NameSubstr() (string, bool) { return deref(f.nameSubstr) }

// StartsWith reports prefix matching for NameSubstr.
func (f Filters) StartsWith() bool { return f.startsWith }

// Parity returns the name-length parity filter, if set.
func (f Filters) Parity() (Parity, bool) { return deref(f.parity) }

// HasProfilePic returns the profile-picture presence filter, if set.
func (f Filters) HasProfilePic() (bool, bool) { return deref(f.hasProfilePic) }

// SortBy returns the sort field, if set.
func (f Filters) SortBy() (SortField, bool) { return deref(f.sortBy) }

// SortOrder returns the sort direction (desc by default).
func (f Filters) SortOrder() SortOrder { return f.sortOrder }

// Understood reports whether the parse was more than a best-effort guess.
func (f Filters) Understood() bool { return f.understood }

// Warnings returns a copy of the parse warnings.
func (f Filters) Warnings() []string { return slices.Clone(f.warnings) }

// Fields returns the filter values as a partial field set.
func (f Filters) Fields() Fields {
	out := Fields{
		Gender:        clone(f.gender),
		NameSubstr:    clone(f.nameSubstr),
		StartsWith:    f.startsWith,
		Parity:        clone(f.parity),
		HasProfilePic: clone(f.hasProfilePic),
		SortBy:        clone(f.sortBy),
	}
	order := f.sortOrder
	out.SortOrder = &order
	return out
}

// HasFilter reports whether any filter or sort field is set.
func (f Filters) HasFilter() bool {
	return f.gender != nil || f.nameSubstr != nil || f.parity != nil ||
		f.hasProfilePic != nil || f.sortBy != nil
}

// WithWarnings returns a copy with extra warnings appended.
func (f Filters) WithWarnings(extra ...string) Filters {
	if len(extra) == 0 {
		return f
	}
	out := f
	out.warnings = append(slices.Clone(f.warnings), extra...)
	return out
}

// wire is the JSON form shared by the cache tiers and the model prompt.
type wire struct {
	Gender           *string  `json:"gender"`
	NameSubstr       *string  `json:"name_substr"`
	StartsWithMode   bool     `json:"starts_with_mode"`
	NameLengthParity *string  `json:"name_length_parity"`
	HasProfilePic    *bool    `json:"has_profile_pic"`
	SortBy           *string  `json:"sort_by"`
	SortOrder        string   `json:"sort_order"`
	QueryUnderstood  bool     `json:"query_understood"`
	ParseWarnings    []string `json:"parse_warnings"`
}

// MarshalJSON encodes the filters using the public field names.
func (f Filters) MarshalJSON() ([]byte, error) {
	w := wire{
		NameSubstr:      clone(f.nameSubstr),
		StartsWithMode:  f.startsWith,
		HasProfilePic:   clone(f.hasProfilePic),
		SortOrder:       string(f.sortOrder),
		QueryUnderstood: f.understood,
		ParseWarnings:   f.warnings,
	}
	if w.ParseWarnings == nil {
		w.ParseWarnings = []string{}
	}
	if f.gender != nil {
		w.Gender = Ptr(string(*f.gender))
	}
	if f.parity != nil {
		w.NameLengthParity = Ptr(string(*f.parity))
	}
	if f.sortBy != nil {
		w.SortBy = Ptr(string(*f.sortBy))
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal filters: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes strictly: any out-of-domain value is an error.
// Lenient per-field recovery belongs to the model sanitizer, not to cache reads.
func (f *Filters) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("unmarshal filters: %w", err)
	}

	var fields Fields
	var errs []error
	if w.Gender != nil {
		g, err := ParseGender(*w.Gender)
		errs = append(errs, err)
		fields.Gender = &g
	}
	if w.NameSubstr != nil {
		if *w.NameSubstr == "" {
			errs = append(errs, errors.New("empty name_substr"))
		}
		fields.NameSubstr = clone(w.NameSubstr)
		fields.StartsWith = w.StartsWithMode
	}
	if w.NameLengthParity != nil {
		p, err := ParseParity(*w.NameLengthParity)
		errs = append(errs, err)
		fields.Parity = &p
	}
	fields.HasProfilePic = clone(w.HasProfilePic)
	if w.SortBy != nil {
		s, err := ParseSortField(*w.SortBy)
		errs = append(errs, err)
		fields.SortBy = &s
	}
	if w.SortOrder != "" {
		o, err := ParseSortOrder(w.SortOrder)
		errs = append(errs, err)
		fields.SortOrder = &o
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("unmarshal filters: %w", err)
	}

	*f = New(fields, w.QueryUnderstood, w.ParseWarnings)
	return nil
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
