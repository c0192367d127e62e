package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/net-super/api/internal/domain"
	pfirestore "github.com/net-super/api/internal/platform/firestore"
	"github.com/net-super/api/internal/repositories"
)

const cartCollection = "carts"

// CartRepository persists one cart document per authenticated customer.
// Plain saves are last-write-wins: the storefront client holds the canonical
// in-session cart and the server snapshot trails it. The login merge goes
// through Update instead, which is transactional.
type CartRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[cartDocument]
}

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	return &CartRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[cartDocument](provider, cartCollection, nil, nil),
	}, nil
}

// Get loads the cart for the given account. A missing document surfaces as a
// not-found repository error; callers treat that as an empty cart.
func (r *CartRepository) Get(ctx context.Context, userID string) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Cart{}, errors.New("cart repository: user id is required")
	}

	doc, err := r.base.Get(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}
	return doc.Data.toCart(uid, doc.UpdateTime), nil
}

// Save overwrites the account's cart document with the provided snapshot.
func (r *CartRepository) Save(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	if r == nil || r.base == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	uid := strings.TrimSpace(cart.UserID)
	if uid == "" {
		return domain.Cart{}, errors.New("cart repository: user id is required")
	}

	now := time.Now().UTC()
	createdAt := cart.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}

	result, err := r.base.Set(ctx, uid, toCartDocument(cart.Lines, createdAt, now))
	if err != nil {
		return domain.Cart{}, err
	}

	saved := cart
	saved.UserID = uid
	saved.CreatedAt = createdAt
	saved.UpdatedAt = result.UpdateTime
	return saved, nil
}

// Update runs mutate against the stored cart inside a Firestore transaction
// and writes the result back, so a replace racing the login merge cannot drop
// either write. A missing document is handed to mutate as an empty cart.
func (r *CartRepository) Update(ctx context.Context, userID string, mutate func(domain.Cart) domain.Cart) (domain.Cart, error) {
	if r == nil || r.base == nil || r.provider == nil {
		return domain.Cart{}, errors.New("cart repository not initialised")
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Cart{}, errors.New("cart repository: user id is required")
	}
	if mutate == nil {
		return domain.Cart{}, errors.New("cart repository: mutate function is required")
	}

	ref, err := r.base.DocumentRef(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}

	var saved domain.Cart
	err = r.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		current := domain.Cart{UserID: uid, Lines: []domain.CartLine{}}

		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			// First write for this account.
		case err != nil:
			return err
		default:
			var doc cartDocument
			if err := snap.DataTo(&doc); err != nil {
				return err
			}
			current = doc.toCart(uid, snap.UpdateTime)
		}

		now := time.Now().UTC()
		createdAt := current.CreatedAt.UTC()
		if createdAt.IsZero() {
			createdAt = now
		}

		next := mutate(current)
		next.UserID = uid
		next.CreatedAt = createdAt
		next.UpdatedAt = now
		saved = next

		return tx.Set(ref, toCartDocument(next.Lines, createdAt, now))
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return saved, nil
}

type cartDocument struct {
	Lines     []cartLineDocument `firestore:"lines"`
	CreatedAt time.Time          `firestore:"createdAt"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

type cartLineDocument struct {
	ProductID string `firestore:"productId"`
	Quantity  int64  `firestore:"quantity"`
	Name      string `firestore:"name,omitempty"`
	ImageURL  string `firestore:"imageUrl,omitempty"`
	UnitPrice int64  `firestore:"unitPrice,omitempty"`
}

func toCartDocument(lines []domain.CartLine, createdAt, updatedAt time.Time) cartDocument {
	doc := cartDocument{
		Lines:     make([]cartLineDocument, 0, len(lines)),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	for _, line := range lines {
		doc.Lines = append(doc.Lines, cartLineDocument{
			ProductID: strings.TrimSpace(line.ProductID),
			Quantity:  line.Quantity,
			Name:      line.Name,
			ImageURL:  line.ImageURL,
			UnitPrice: line.UnitPrice,
		})
	}
	return doc
}

func (d cartDocument) toCart(uid string, updateTime time.Time) domain.Cart {
	cart := domain.Cart{
		UserID:    uid,
		Lines:     make([]domain.CartLine, 0, len(d.Lines)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: updateTime,
	}
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = d.UpdatedAt
	}
	for _, line := range d.Lines {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Name:      line.Name,
			ImageURL:  line.ImageURL,
			UnitPrice: line.UnitPrice,
		})
	}
	return cart
}

var _ repositories.CartRepository = (*CartRepository)(nil)
