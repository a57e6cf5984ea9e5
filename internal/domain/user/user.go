// Package user holds the record shape the search pipeline reads.
package user

import "time"

// Record is one searchable user.
type Record struct {
	ID         int64
	FullName   string
	Username   string
	Gender     string
	ProfilePic *string
	CreatedAt  time.Time
}

// HasProfilePic treats an empty path the same as a missing one.
func (r Record) HasProfilePic() bool {
	return r.ProfilePic != nil && *r.ProfilePic != ""
}
