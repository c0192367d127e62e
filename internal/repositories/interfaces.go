package repositories

import (
	"context"
	"errors"

	domain "github.com/net-super/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Carts() CartRepository
	Users() UserRepository
	Sellers() SellerRepository
	Newsletters() NewsletterRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether err categorises as a missing document.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsConflict reports whether err categorises as a conflicting write.
func IsConflict(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}

// IsUnavailable reports whether err categorises as a transient backend outage.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}

// ProductRepository persists the storefront catalogue.
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	// FindMany loads the requested products keyed by ID. Missing IDs are
	// simply absent from the result; callers decide whether that is an error.
	FindMany(ctx context.Context, productIDs []string) (map[string]domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error)
	Insert(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, sellerID, productID string) error
}

// CartRepository owns persisted customer carts, one document per account.
type CartRepository interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) (domain.Cart, error)
	// Update applies mutate to the stored cart and persists the result as a
	// single atomic read-modify-write. A missing document is handed to mutate
	// as an empty cart.
	Update(ctx context.Context, userID string, mutate func(domain.Cart) domain.Cart) (domain.Cart, error)
}

// UserRepository stores customer account profiles keyed by Firebase UID.
type UserRepository interface {
	Get(ctx context.Context, uid string) (domain.UserProfile, error)
	Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
}

// SellerRepository stores the storefront identity sellers manage in the console.
type SellerRepository interface {
	GetProfile(ctx context.Context, sellerID string) (domain.SellerProfile, error)
	UpsertProfile(ctx context.Context, profile domain.SellerProfile) (domain.SellerProfile, error)
}

// NewsletterRepository records seller mailings before dispatch.
type NewsletterRepository interface {
	Insert(ctx context.Context, newsletter domain.Newsletter) (domain.Newsletter, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Newsletter, error)
}

// HealthRepository aggregates dependency probes for readiness checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
