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

const newsletterCollection = "newsletters"

// NewsletterRepository records seller mailings before the dispatch worker picks them up.
type NewsletterRepository struct {
	base  *pfirestore.BaseRepository[newsletterDocument]
	newID func() string
}

// NewNewsletterRepository constructs a Firestore-backed newsletter repository.
func NewNewsletterRepository(provider *pfirestore.Provider) (*NewsletterRepository, error) {
	if provider == nil {
		return nil, errors.New("newsletter repository requires firestore provider")
	}
	return &NewsletterRepository{
		base:  pfirestore.NewBaseRepository[newsletterDocument](provider, newsletterCollection, nil, nil),
		newID: func() string { return ulid.Make().String() },
	}, nil
}

// Insert stores the mailing record, minting an identifier when none is supplied.
func (r *NewsletterRepository) Insert(ctx context.Context, newsletter domain.Newsletter) (domain.Newsletter, error) {
	if r == nil || r.base == nil {
		return domain.Newsletter{}, errors.New("newsletter repository not initialised")
	}
	if strings.TrimSpace(newsletter.SellerID) == "" {
		return domain.Newsletter{}, errors.New("newsletter repository: seller id is required")
	}

	id := strings.TrimSpace(newsletter.ID)
	if id == "" {
		id = r.newID()
	}

	sentAt := newsletter.SentAt.UTC()
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}

	doc := newsletterDocument{
		SellerID: strings.TrimSpace(newsletter.SellerID),
		Subject:  strings.TrimSpace(newsletter.Subject),
		Body:     newsletter.Body,
		ImageURL: strings.TrimSpace(newsletter.ImageURL),
		SentAt:   sentAt,
	}

	if _, err := r.base.Set(ctx, id, doc); err != nil {
		return domain.Newsletter{}, err
	}

	saved := newsletter
	saved.ID = id
	saved.SentAt = sentAt
	return saved, nil
}

// ListBySeller returns the seller's mailings, most recent first.
func (r *NewsletterRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Newsletter, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("newsletter repository not initialised")
	}
	seller := strings.TrimSpace(sellerID)
	if seller == "" {
		return nil, errors.New("newsletter repository: seller id is required")
	}

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("sellerId", "==", seller).OrderBy("sentAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Newsletter, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.Newsletter{
			ID:       doc.ID,
			SellerID: doc.Data.SellerID,
			Subject:  doc.Data.Subject,
			Body:     doc.Data.Body,
			ImageURL: doc.Data.ImageURL,
			SentAt:   doc.Data.SentAt,
		})
	}
	return out, nil
}

type newsletterDocument struct {
	SellerID string    `firestore:"sellerId"`
	Subject  string    `firestore:"subject"`
	Body     string    `firestore:"body"`
	ImageURL string    `firestore:"imageUrl,omitempty"`
	SentAt   time.Time `firestore:"sentAt"`
}

var _ repositories.NewsletterRepository = (*NewsletterRepository)(nil)
