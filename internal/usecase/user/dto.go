package user

import "time"

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string `validate:"required"`
}

// UpdateProfileRequest carries the profile fields a user submitted.
// Nil fields were not submitted and stay unchanged.
type UpdateProfileRequest struct {
	ID       string  `validate:"required"`
	Name     *string `validate:"omitempty,max=100"`
	Gender   *string `validate:"omitempty,max=32"`
	Birthday *string // ISO-8601, a trailing Z is accepted
}

// UpdateProfileResponse reports the outcome of a profile update.
type UpdateProfileResponse struct {
	Success bool
	Error   string
	User    *User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID        string
	Email     string
	Name      *string
	Gender    *string
	Birthday  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
