package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/net-super/api/internal/repositories"
)

// ErrSellerInvalidInput indicates the caller supplied invalid input.
var ErrSellerInvalidInput = errors.New("seller service: invalid input")

// ErrSellerProfileNotFound indicates the seller has no profile document yet.
var ErrSellerProfileNotFound = errors.New("seller service: profile not found")

// ErrSellerProductNotFound indicates the product does not exist.
var ErrSellerProductNotFound = errors.New("seller service: product not found")

// ErrSellerProductNotOwned indicates the product belongs to another seller.
var ErrSellerProductNotOwned = errors.New("seller service: product not owned")

// ErrSellerUnavailable indicates the backing stores cannot fulfil the request.
var ErrSellerUnavailable = errors.New("seller service: unavailable")

const maxProductNameLength = 200

// SellerServiceDeps wires the seller and product stores for console operations.
type SellerServiceDeps struct {
	Sellers  repositories.SellerRepository
	Products repositories.ProductRepository
	Clock    func() time.Time
	Logger   func(context.Context, string, map[string]any)
}

type sellerService struct {
	sellers  repositories.SellerRepository
	products repositories.ProductRepository
	now      func() time.Time
	logger   func(context.Context, string, map[string]any)
}

var _ SellerService = (*sellerService)(nil)

// NewSellerService constructs a SellerService enforcing dependency validation.
func NewSellerService(deps SellerServiceDeps) (SellerService, error) {
	if deps.Sellers == nil {
		return nil, errors.New("seller service: seller repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("seller service: product repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &sellerService{
		sellers:  deps.Sellers,
		products: deps.Products,
		now:      func() time.Time { return clock().UTC() },
		logger:   logger,
	}, nil
}

// GetProfile loads the seller profile document.
func (s *sellerService) GetProfile(ctx context.Context, sellerID string) (SellerProfile, error) {
	if s == nil || s.sellers == nil {
		return SellerProfile{}, ErrSellerUnavailable
	}
	id := strings.TrimSpace(sellerID)
	if id == "" {
		return SellerProfile{}, fmt.Errorf("%w: seller id is required", ErrSellerInvalidInput)
	}

	profile, err := s.sellers.GetProfile(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return SellerProfile{}, fmt.Errorf("%w: %s", ErrSellerProfileNotFound, id)
		}
		return SellerProfile{}, fmt.Errorf("%w: %v", ErrSellerUnavailable, err)
	}
	return profile, nil
}

// UpdateProfile validates and writes the storefront identity.
func (s *sellerService) UpdateProfile(ctx context.Context, cmd UpdateSellerProfileCommand) (SellerProfile, error) {
	if s == nil || s.sellers == nil {
		return SellerProfile{}, ErrSellerUnavailable
	}
	id := strings.TrimSpace(cmd.SellerID)
	if id == "" {
		return SellerProfile{}, fmt.Errorf("%w: seller id is required", ErrSellerInvalidInput)
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return SellerProfile{}, fmt.Errorf("%w: name is required", ErrSellerInvalidInput)
	}

	saved, err := s.sellers.UpsertProfile(ctx, SellerProfile{
		SellerID:    id,
		Name:        name,
		ImageURL:    strings.TrimSpace(cmd.ImageURL),
		Description: strings.TrimSpace(cmd.Description),
		Contact:     strings.TrimSpace(cmd.Contact),
	})
	if err != nil {
		return SellerProfile{}, fmt.Errorf("%w: %v", ErrSellerUnavailable, err)
	}

	s.logger(ctx, "seller.profile.updated", map[string]any{
		"sellerId": id,
	})
	return saved, nil
}

// ListProducts returns the seller's own listings.
func (s *sellerService) ListProducts(ctx context.Context, sellerID string) ([]Product, error) {
	if s == nil || s.products == nil {
		return nil, ErrSellerUnavailable
	}
	id := strings.TrimSpace(sellerID)
	if id == "" {
		return nil, fmt.Errorf("%w: seller id is required", ErrSellerInvalidInput)
	}

	products, err := s.products.ListBySeller(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSellerUnavailable, err)
	}
	return products, nil
}

// CreateProduct validates and lists a new product under the seller.
func (s *sellerService) CreateProduct(ctx context.Context, cmd SellerProductCommand) (Product, error) {
	if s == nil || s.products == nil {
		return Product{}, ErrSellerUnavailable
	}
	product, err := s.productFromCommand(cmd, false)
	if err != nil {
		return Product{}, err
	}

	saved, err := s.products.Insert(ctx, product)
	if err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrSellerUnavailable, err)
	}

	s.logger(ctx, "seller.product.created", map[string]any{
		"sellerId":  saved.SellerID,
		"productId": saved.ID,
	})
	return saved, nil
}

// UpdateProduct validates and rewrites an existing listing. Only the owning
// seller may update it.
func (s *sellerService) UpdateProduct(ctx context.Context, cmd SellerProductCommand) (Product, error) {
	if s == nil || s.products == nil {
		return Product{}, ErrSellerUnavailable
	}
	product, err := s.productFromCommand(cmd, true)
	if err != nil {
		return Product{}, err
	}

	saved, err := s.products.Update(ctx, product)
	if err != nil {
		return Product{}, s.translateProductError(err, product.ID)
	}

	s.logger(ctx, "seller.product.updated", map[string]any{
		"sellerId":  saved.SellerID,
		"productId": saved.ID,
	})
	return saved, nil
}

// DeleteProduct removes a listing. Only the owning seller may delete it.
func (s *sellerService) DeleteProduct(ctx context.Context, sellerID string, productID string) error {
	if s == nil || s.products == nil {
		return ErrSellerUnavailable
	}
	seller := strings.TrimSpace(sellerID)
	id := strings.TrimSpace(productID)
	if seller == "" || id == "" {
		return fmt.Errorf("%w: seller id and product id are required", ErrSellerInvalidInput)
	}

	if err := s.products.Delete(ctx, seller, id); err != nil {
		return s.translateProductError(err, id)
	}

	s.logger(ctx, "seller.product.deleted", map[string]any{
		"sellerId":  seller,
		"productId": id,
	})
	return nil
}

func (s *sellerService) productFromCommand(cmd SellerProductCommand, requireID bool) (Product, error) {
	seller := strings.TrimSpace(cmd.SellerID)
	if seller == "" {
		return Product{}, fmt.Errorf("%w: seller id is required", ErrSellerInvalidInput)
	}
	id := strings.TrimSpace(cmd.ProductID)
	if requireID && id == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrSellerInvalidInput)
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" || len([]rune(name)) > maxProductNameLength {
		return Product{}, fmt.Errorf("%w: product name is required", ErrSellerInvalidInput)
	}
	if cmd.Price <= 0 {
		return Product{}, fmt.Errorf("%w: price must be positive", ErrSellerInvalidInput)
	}

	return Product{
		ID:              id,
		SellerID:        seller,
		Name:            name,
		Price:           cmd.Price,
		ImageURL:        strings.TrimSpace(cmd.ImageURL),
		Description:     strings.TrimSpace(cmd.Description),
		IsReservation:   cmd.IsReservation,
		ReservationNote: strings.TrimSpace(cmd.ReservationNote),
	}, nil
}

func (s *sellerService) translateProductError(err error, productID string) error {
	switch {
	case errors.Is(err, repositories.ErrProductNotOwned):
		return fmt.Errorf("%w: %s", ErrSellerProductNotOwned, productID)
	case repositories.IsNotFound(err):
		return fmt.Errorf("%w: %s", ErrSellerProductNotFound, productID)
	default:
		return fmt.Errorf("%w: %v", ErrSellerUnavailable, err)
	}
}
