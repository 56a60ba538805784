package user

import "context"

// Usecase defines the interface for user profile operations.
type Usecase interface {
	GetUser(ctx context.Context, in GetUserRequest) (*User, error)
	UpdateProfile(ctx context.Context, in UpdateProfileRequest) (*UpdateProfileResponse, error)
}
