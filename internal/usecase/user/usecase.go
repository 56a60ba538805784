package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "crf-service/internal/domain/user"
	"crf-service/internal/usecase"
	apperrors "crf-service/pkg/errors"
)

// ErrNoChanges is reported when a profile update carries nothing to store.
const ErrNoChanges = "没有提交任何更改"

// birthdayLayouts are tried in order after a trailing Z is removed.
var birthdayLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Repository defines the interface for user data access operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.User, error)
}

// Service implements the business logic for user profiles.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new user Service.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: usecase.NewValidator()}
}

// GetUser retrieves a user by ID. A missing user is reported as a NotFoundError.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.NewValidationError("id", usecase.FormatValidationError(err).Error())
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.log.Error("failed to get user", zap.String("id", in.ID), zap.Error(err))
		}
		return nil, err
	}
	return toDTO(u), nil
}

// UpdateProfile stores the submitted profile fields. Business failures are
// reported in the response, not as an error.
func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileRequest) (*UpdateProfileResponse, error) {
	s.log.Info("updating user profile", zap.String("id", in.ID))

	if err := s.validate.Struct(in); err != nil {
		s.log.Warn("validate failed", zap.Error(err))
		return &UpdateProfileResponse{Error: usecase.FormatValidationError(err).Error()}, nil
	}

	changes := domain.ProfileChanges{Name: in.Name, Gender: in.Gender}
	if in.Birthday != nil {
		birthday, err := ParseBirthday(*in.Birthday)
		if err != nil {
			s.log.Warn("ignoring unparsable birthday", zap.String("birthday", *in.Birthday), zap.Error(err))
		} else {
			changes.Birthday = &birthday
		}
	}

	if changes.IsEmpty() {
		return &UpdateProfileResponse{Error: ErrNoChanges}, nil
	}

	u, err := s.repo.UpdateProfile(ctx, in.ID, changes)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.log.Error("failed to update user profile", zap.String("id", in.ID), zap.Error(err))
		}
		return &UpdateProfileResponse{Error: err.Error()}, nil
	}

	return &UpdateProfileResponse{Success: true, User: toDTO(u)}, nil
}

// ParseBirthday reads an ISO-8601 date or datetime. A trailing Z is dropped
// and the result is interpreted as UTC.
func ParseBirthday(raw string) (time.Time, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(raw), "Z", "")
	if clean == "" {
		return time.Time{}, errors.New("empty birthday")
	}

	var lastErr error
	for _, layout := range birthdayLayouts {
		t, err := time.Parse(layout, clean)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func toDTO(u *domain.User) *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Gender:    u.Gender,
		Birthday:  u.Birthday,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
