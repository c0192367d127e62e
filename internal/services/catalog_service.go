package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/net-super/api/internal/repositories"
	"github.com/net-super/api/internal/shipping"
)

// ErrCatalogInvalidInput indicates the caller supplied invalid input.
var ErrCatalogInvalidInput = errors.New("catalog service: invalid input")

// ErrCatalogProductNotFound indicates the requested product does not exist.
var ErrCatalogProductNotFound = errors.New("catalog service: product not found")

// ErrCatalogUnknownPrefecture indicates the prefecture resolved to no shipping region.
var ErrCatalogUnknownPrefecture = errors.New("catalog service: unknown prefecture")

// ErrCatalogUnavailable indicates the catalogue store cannot fulfil the request.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// CatalogServiceDeps wires the product store for public storefront reads.
type CatalogServiceDeps struct {
	Products repositories.ProductRepository
	Logger   func(context.Context, string, map[string]any)
}

type catalogService struct {
	products repositories.ProductRepository
	logger   func(context.Context, string, map[string]any)
}

var _ CatalogService = (*catalogService)(nil)

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{
		products: deps.Products,
		logger:   logger,
	}, nil
}

// ListProducts returns the storefront catalogue, newest first.
func (s *catalogService) ListProducts(ctx context.Context) ([]Product, error) {
	if s == nil || s.products == nil {
		return nil, ErrCatalogUnavailable
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return products, nil
}

// GetProduct loads a single product by id.
func (s *catalogService) GetProduct(ctx context.Context, productID string) (Product, error) {
	if s == nil || s.products == nil {
		return Product{}, ErrCatalogUnavailable
	}
	id := strings.TrimSpace(productID)
	if id == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return Product{}, fmt.Errorf("%w: %s", ErrCatalogProductNotFound, id)
		}
		return Product{}, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return product, nil
}

// ShippingFee quotes the delivery fee for a destination prefecture.
func (s *catalogService) ShippingFee(ctx context.Context, prefecture string) (int64, error) {
	fee, ok := shipping.ResolveFee(prefecture)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrCatalogUnknownPrefecture, strings.TrimSpace(prefecture))
	}
	return fee, nil
}

// Prefectures returns the 47 prefecture names in shipping-table order for the
// signup pulldown.
func (s *catalogService) Prefectures(ctx context.Context) []string {
	return shipping.Prefectures()
}
