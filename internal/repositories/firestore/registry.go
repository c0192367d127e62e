package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/net-super/api/internal/platform/firestore"
	"github.com/net-super/api/internal/repositories"
)

// Registry bundles the Firestore-backed repositories behind a single handle so
// wiring code can build the full persistence layer in one call.
type Registry struct {
	provider *pfirestore.Provider

	products    *ProductRepository
	carts       *CartRepository
	users       *UserRepository
	sellers     *SellerRepository
	newsletters *NewsletterRepository
	health      repositories.HealthRepository
}

// RegistryOption customises registry construction.
type RegistryOption func(*Registry)

// WithHealthRepository installs the dependency health collector exposed via
// Health(). Wiring code supplies it because the checks reach beyond Firestore.
func WithHealthRepository(repo repositories.HealthRepository) RegistryOption {
	return func(r *Registry) {
		r.health = repo
	}
}

// NewRegistry constructs every Firestore repository against the shared provider.
func NewRegistry(provider *pfirestore.Provider, opts ...RegistryOption) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	products, err := NewProductRepository(provider)
	if err != nil {
		return nil, err
	}
	carts, err := NewCartRepository(provider)
	if err != nil {
		return nil, err
	}
	users, err := NewUserRepository(provider)
	if err != nil {
		return nil, err
	}
	sellers, err := NewSellerRepository(provider)
	if err != nil {
		return nil, err
	}
	newsletters, err := NewNewsletterRepository(provider)
	if err != nil {
		return nil, err
	}

	registry := &Registry{
		provider:    provider,
		products:    products,
		carts:       carts,
		users:       users,
		sellers:     sellers,
		newsletters: newsletters,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(registry)
		}
	}
	return registry, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

func (r *Registry) Products() repositories.ProductRepository { return r.products }

func (r *Registry) Carts() repositories.CartRepository { return r.carts }

func (r *Registry) Users() repositories.UserRepository { return r.users }

func (r *Registry) Sellers() repositories.SellerRepository { return r.sellers }

func (r *Registry) Newsletters() repositories.NewsletterRepository { return r.newsletters }

func (r *Registry) Health() repositories.HealthRepository { return r.health }

var _ repositories.Registry = (*Registry)(nil)
