package query

// Fields is a partially populated filter set produced by one detector or by
// the model sanitizer. A nil pointer means the field was not set.
type Fields struct {
	Gender        *Gender
	NameSubstr    *string
	StartsWith    bool
	Parity        *Parity
	HasProfilePic *bool
	SortBy        *SortField
	SortOrder     *SortOrder

	// Everything marks an explicit request for the unfiltered set ("all users").
	Everything bool
}

// IsEmpty reports whether no field was set and the match-all marker is absent.
func (f Fields) IsEmpty() bool {
	return !f.Everything && !f.HasFilter() && f.SortOrder == nil
}

// HasFilter reports whether any filter or sort field is set.
func (f Fields) HasFilter() bool {
	return f.Gender != nil || f.NameSubstr != nil || f.Parity != nil ||
		f.HasProfilePic != nil || f.SortBy != nil
}

// Merge returns f with every field of other that f has not set yet.
// Fields already present in f are never overwritten.
func (f Fields) Merge(other Fields) Fields {
	if f.Gender == nil {
		f.Gender = other.Gender
	}
	if f.NameSubstr == nil && other.NameSubstr != nil {
		f.NameSubstr = other.NameSubstr
		f.StartsWith = other.StartsWith
	}
	if f.Parity == nil {
		f.Parity = other.Parity
	}
	if f.HasProfilePic == nil {
		f.HasProfilePic = other.HasProfilePic
	}
	if f.SortBy == nil {
		f.SortBy = other.SortBy
	}
	if f.SortOrder == nil {
		f.SortOrder = other.SortOrder
	}
	f.Everything = f.Everything || other.Everything
	return f
}

// Ptr returns a pointer to v. Used to populate optional fields.
func Ptr[T any](v T) *T { return &v }
