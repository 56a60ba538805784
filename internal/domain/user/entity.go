package user

import "time"

// User represents an account of the clinical data platform.
type User struct {
	ID        string     // ID is the unique identifier (uuid) of the user
	Email     string     // Email is the unique login address
	Name      *string    // Name is the display name, unset until the profile is filled in
	Gender    *string    // Gender as entered by the user (e.g. "male", "female")
	Birthday  *time.Time // Birthday is optional
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileChanges holds the profile fields to overwrite. Nil fields are left untouched.
type ProfileChanges struct {
	Name     *string
	Gender   *string
	Birthday *time.Time
}

// IsEmpty reports whether no field would change.
func (c ProfileChanges) IsEmpty() bool {
	return c.Name == nil && c.Gender == nil && c.Birthday == nil
}
