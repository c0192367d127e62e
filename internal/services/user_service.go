package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/net-super/api/internal/repositories"
	"github.com/net-super/api/internal/shipping"
)

// ErrUserInvalidInput indicates the caller supplied invalid input.
var ErrUserInvalidInput = errors.New("user service: invalid input")

// ErrUserProfileNotFound indicates the account has no profile document yet.
var ErrUserProfileNotFound = errors.New("user service: profile not found")

// ErrUserUnavailable indicates the profile store cannot fulfil the request.
var ErrUserUnavailable = errors.New("user service: unavailable")

// UserServiceDeps wires the profile store for customer profile operations.
type UserServiceDeps struct {
	Users  repositories.UserRepository
	Clock  func() time.Time
	Logger func(context.Context, string, map[string]any)
}

type userService struct {
	users  repositories.UserRepository
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

var _ UserService = (*userService)(nil)

// NewUserService constructs a UserService enforcing dependency validation.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Users == nil {
		return nil, errors.New("user service: user repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &userService{
		users:  deps.Users,
		now:    func() time.Time { return clock().UTC() },
		logger: logger,
	}, nil
}

// GetProfile loads the customer profile document.
func (s *userService) GetProfile(ctx context.Context, uid string) (UserProfile, error) {
	if s == nil || s.users == nil {
		return UserProfile{}, ErrUserUnavailable
	}
	id := strings.TrimSpace(uid)
	if id == "" {
		return UserProfile{}, fmt.Errorf("%w: uid is required", ErrUserInvalidInput)
	}

	profile, err := s.users.Get(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return UserProfile{}, fmt.Errorf("%w: %s", ErrUserProfileNotFound, id)
		}
		return UserProfile{}, fmt.Errorf("%w: %v", ErrUserUnavailable, err)
	}
	return profile, nil
}

// UpdateProfile validates and writes the customer profile. The prefecture
// must resolve against the shipping table so checkout can always quote a fee
// for the saved address.
func (s *userService) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error) {
	if s == nil || s.users == nil {
		return UserProfile{}, ErrUserUnavailable
	}
	uid := strings.TrimSpace(cmd.UID)
	if uid == "" {
		return UserProfile{}, fmt.Errorf("%w: uid is required", ErrUserInvalidInput)
	}

	email := strings.TrimSpace(cmd.Email)
	if email == "" || !strings.Contains(email, "@") {
		return UserProfile{}, fmt.Errorf("%w: email is required", ErrUserInvalidInput)
	}
	lastName := strings.TrimSpace(cmd.LastName)
	firstName := strings.TrimSpace(cmd.FirstName)
	if lastName == "" || firstName == "" {
		return UserProfile{}, fmt.Errorf("%w: name is required", ErrUserInvalidInput)
	}
	prefecture := shipping.Normalize(cmd.Prefecture)
	if _, ok := shipping.ResolveFee(prefecture); !ok {
		return UserProfile{}, fmt.Errorf("%w: unknown prefecture %q", ErrUserInvalidInput, strings.TrimSpace(cmd.Prefecture))
	}

	saved, err := s.users.Upsert(ctx, UserProfile{
		UID:        uid,
		Email:      email,
		LastName:   lastName,
		FirstName:  firstName,
		PostalCode: strings.TrimSpace(cmd.PostalCode),
		Prefecture: prefecture,
		City:       strings.TrimSpace(cmd.City),
	})
	if err != nil {
		return UserProfile{}, fmt.Errorf("%w: %v", ErrUserUnavailable, err)
	}

	s.logger(ctx, "user.profile.updated", map[string]any{
		"userId":     uid,
		"prefecture": prefecture,
	})
	return saved, nil
}
