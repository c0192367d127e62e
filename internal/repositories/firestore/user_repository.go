package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/net-super/api/internal/domain"
	pfirestore "github.com/net-super/api/internal/platform/firestore"
	"github.com/net-super/api/internal/repositories"
)

const userCollection = "users"

// UserRepository stores customer profiles keyed by Firebase UID.
type UserRepository struct {
	base *pfirestore.BaseRepository[userDocument]
}

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	return &UserRepository{
		base: pfirestore.NewBaseRepository[userDocument](provider, userCollection, nil, nil),
	}, nil
}

// Get loads a customer profile by UID.
func (r *UserRepository) Get(ctx context.Context, uid string) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}
	id := strings.TrimSpace(uid)
	if id == "" {
		return domain.UserProfile{}, errors.New("user repository: uid is required")
	}

	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.UserProfile{}, err
	}

	return domain.UserProfile{
		UID:        id,
		Email:      doc.Data.Email,
		LastName:   doc.Data.LastName,
		FirstName:  doc.Data.FirstName,
		PostalCode: doc.Data.PostalCode,
		Prefecture: doc.Data.Prefecture,
		City:       doc.Data.City,
		CreatedAt:  doc.Data.CreatedAt,
		UpdatedAt:  doc.UpdateTime,
	}, nil
}

// Upsert writes the customer profile document.
func (r *UserRepository) Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}
	id := strings.TrimSpace(profile.UID)
	if id == "" {
		return domain.UserProfile{}, errors.New("user repository: uid is required")
	}

	now := time.Now().UTC()
	createdAt := profile.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}

	doc := userDocument{
		Email:      strings.TrimSpace(profile.Email),
		LastName:   strings.TrimSpace(profile.LastName),
		FirstName:  strings.TrimSpace(profile.FirstName),
		PostalCode: strings.TrimSpace(profile.PostalCode),
		Prefecture: strings.TrimSpace(profile.Prefecture),
		City:       strings.TrimSpace(profile.City),
		CreatedAt:  createdAt,
		UpdatedAt:  now,
	}

	result, err := r.base.Set(ctx, id, doc)
	if err != nil {
		return domain.UserProfile{}, err
	}

	saved := profile
	saved.UID = id
	saved.CreatedAt = createdAt
	saved.UpdatedAt = result.UpdateTime
	return saved, nil
}

type userDocument struct {
	Email      string    `firestore:"email,omitempty"`
	LastName   string    `firestore:"lastName,omitempty"`
	FirstName  string    `firestore:"firstName,omitempty"`
	PostalCode string    `firestore:"postalCode,omitempty"`
	Prefecture string    `firestore:"prefecture,omitempty"`
	City       string    `firestore:"city,omitempty"`
	CreatedAt  time.Time `firestore:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt"`
}

var _ repositories.UserRepository = (*UserRepository)(nil)
