package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"

	domain "github.com/net-super/api/internal/domain"
	pfirestore "github.com/net-super/api/internal/platform/firestore"
	"github.com/net-super/api/internal/repositories"
)

const productCollection = "products"

// ProductRepository persists the catalogue within Firestore.
type ProductRepository struct {
	base  *pfirestore.BaseRepository[productDocument]
	newID func() string
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		base:  pfirestore.NewBaseRepository[productDocument](provider, productCollection, nil, nil),
		newID: func() string { return ulid.Make().String() },
	}, nil
}

// FindByID loads a single product by document ID.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	id := strings.TrimSpace(productID)
	if id == "" {
		return domain.Product{}, errors.New("product repository: product id is required")
	}

	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return productFromDocument(doc.ID, doc.Data), nil
}

// FindMany loads the requested products keyed by ID. IDs that do not resolve
// to a document are omitted from the result.
func (r *ProductRepository) FindMany(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("product repository not initialised")
	}

	out := make(map[string]domain.Product, len(productIDs))
	for _, raw := range productIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, seen := out[id]; seen {
			continue
		}
		doc, err := r.base.Get(ctx, id)
		if err != nil {
			if repositories.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out[id] = productFromDocument(doc.ID, doc.Data)
	}
	return out, nil
}

// List returns the full catalogue ordered by creation time, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("product repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return productsFromDocuments(docs), nil
}

// ListBySeller returns the products owned by the given seller.
func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("product repository not initialised")
	}
	seller := strings.TrimSpace(sellerID)
	if seller == "" {
		return nil, errors.New("product repository: seller id is required")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("sellerId", "==", seller).OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return productsFromDocuments(docs), nil
}

// Insert stores a new product, minting an identifier when none is supplied.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	if strings.TrimSpace(product.SellerID) == "" {
		return domain.Product{}, errors.New("product repository: seller id is required")
	}

	id := strings.TrimSpace(product.ID)
	if id == "" {
		id = r.newID()
	}

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	result, err := r.base.Set(ctx, id, documentFromProduct(product))
	if err != nil {
		return domain.Product{}, err
	}

	product.ID = id
	product.UpdatedAt = result.UpdateTime
	return product, nil
}

// Update overwrites an existing product after verifying seller ownership.
func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	id := strings.TrimSpace(product.ID)
	if id == "" {
		return domain.Product{}, errors.New("product repository: product id is required")
	}

	existing, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(existing.Data.SellerID), strings.TrimSpace(product.SellerID)) {
		return domain.Product{}, repositories.ErrProductNotOwned
	}

	product.CreatedAt = existing.Data.CreatedAt
	product.UpdatedAt = time.Now().UTC()

	result, err := r.base.Set(ctx, id, documentFromProduct(product))
	if err != nil {
		return domain.Product{}, err
	}

	product.UpdatedAt = result.UpdateTime
	return product, nil
}

// Delete removes a product after verifying seller ownership.
func (r *ProductRepository) Delete(ctx context.Context, sellerID, productID string) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	id := strings.TrimSpace(productID)
	if id == "" {
		return errors.New("product repository: product id is required")
	}

	existing, err := r.base.Get(ctx, id)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(existing.Data.SellerID), strings.TrimSpace(sellerID)) {
		return repositories.ErrProductNotOwned
	}

	return r.base.Delete(ctx, id)
}

func productFromDocument(id string, doc productDocument) domain.Product {
	product := domain.Product{
		ID:              id,
		SellerID:        doc.SellerID,
		Name:            doc.Name,
		PriceMissing:    doc.Price == nil,
		ImageURL:        doc.ImageURL,
		Description:     doc.Description,
		IsReservation:   doc.IsReservation,
		ReservationNote: doc.ReservationNote,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if doc.Price != nil {
		product.Price = *doc.Price
	}
	return product
}

func productsFromDocuments(docs []pfirestore.Document[productDocument]) []domain.Product {
	out := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		out = append(out, productFromDocument(doc.ID, doc.Data))
	}
	return out
}

func documentFromProduct(product domain.Product) productDocument {
	doc := productDocument{
		SellerID:        strings.TrimSpace(product.SellerID),
		Name:            strings.TrimSpace(product.Name),
		ImageURL:        strings.TrimSpace(product.ImageURL),
		Description:     strings.TrimSpace(product.Description),
		IsReservation:   product.IsReservation,
		ReservationNote: strings.TrimSpace(product.ReservationNote),
		CreatedAt:       product.CreatedAt.UTC(),
		UpdatedAt:       product.UpdatedAt.UTC(),
	}
	if !product.PriceMissing {
		price := product.Price
		doc.Price = &price
	}
	return doc
}

// Price is a pointer so a document missing the field decodes as nil
// instead of collapsing into an explicit zero (a valid free-item price).
type productDocument struct {
	SellerID        string    `firestore:"sellerId"`
	Name            string    `firestore:"name"`
	Price           *int64    `firestore:"price,omitempty"`
	ImageURL        string    `firestore:"imageUrl,omitempty"`
	Description     string    `firestore:"description,omitempty"`
	IsReservation   bool      `firestore:"isReservation"`
	ReservationNote string    `firestore:"reservationNote,omitempty"`
	CreatedAt       time.Time `firestore:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)
