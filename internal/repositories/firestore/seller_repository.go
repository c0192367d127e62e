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

const sellerCollection = "sellers"

// SellerRepository stores the storefront identity sellers manage in the console.
type SellerRepository struct {
	base *pfirestore.BaseRepository[sellerDocument]
}

// NewSellerRepository constructs a Firestore-backed seller repository.
func NewSellerRepository(provider *pfirestore.Provider) (*SellerRepository, error) {
	if provider == nil {
		return nil, errors.New("seller repository requires firestore provider")
	}
	return &SellerRepository{
		base: pfirestore.NewBaseRepository[sellerDocument](provider, sellerCollection, nil, nil),
	}, nil
}

// GetProfile loads the seller profile by seller UID.
func (r *SellerRepository) GetProfile(ctx context.Context, sellerID string) (domain.SellerProfile, error) {
	if r == nil || r.base == nil {
		return domain.SellerProfile{}, errors.New("seller repository not initialised")
	}
	id := strings.TrimSpace(sellerID)
	if id == "" {
		return domain.SellerProfile{}, errors.New("seller repository: seller id is required")
	}

	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.SellerProfile{}, err
	}

	return domain.SellerProfile{
		SellerID:    id,
		Name:        doc.Data.Name,
		ImageURL:    doc.Data.ImageURL,
		Description: doc.Data.Description,
		Contact:     doc.Data.Contact,
		UpdatedAt:   doc.UpdateTime,
	}, nil
}

// UpsertProfile writes the seller profile document.
func (r *SellerRepository) UpsertProfile(ctx context.Context, profile domain.SellerProfile) (domain.SellerProfile, error) {
	if r == nil || r.base == nil {
		return domain.SellerProfile{}, errors.New("seller repository not initialised")
	}
	id := strings.TrimSpace(profile.SellerID)
	if id == "" {
		return domain.SellerProfile{}, errors.New("seller repository: seller id is required")
	}

	doc := sellerDocument{
		Name:        strings.TrimSpace(profile.Name),
		ImageURL:    strings.TrimSpace(profile.ImageURL),
		Description: strings.TrimSpace(profile.Description),
		Contact:     strings.TrimSpace(profile.Contact),
		UpdatedAt:   time.Now().UTC(),
	}

	result, err := r.base.Set(ctx, id, doc)
	if err != nil {
		return domain.SellerProfile{}, err
	}

	saved := profile
	saved.SellerID = id
	saved.UpdatedAt = result.UpdateTime
	return saved, nil
}

type sellerDocument struct {
	Name        string    `firestore:"name"`
	ImageURL    string    `firestore:"imageUrl,omitempty"`
	Description string    `firestore:"description,omitempty"`
	Contact     string    `firestore:"contact,omitempty"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

var _ repositories.SellerRepository = (*SellerRepository)(nil)
