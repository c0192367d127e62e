package services

import (
	"context"
	"time"

	domain "github.com/net-super/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Product            = domain.Product
	Cart               = domain.Cart
	CartLine           = domain.CartLine
	OrderTotal         = domain.OrderTotal
	PaymentIntent      = domain.PaymentIntent
	UserProfile        = domain.UserProfile
	SellerProfile      = domain.SellerProfile
	Newsletter         = domain.Newsletter
	SystemHealthReport = domain.SystemHealthReport
)

// CatalogService exposes the public storefront read surface.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	ShippingFee(ctx context.Context, prefecture string) (int64, error)
	Prefectures(ctx context.Context) []string
}

// CartService manages the persisted cart of an authenticated customer.
type CartService interface {
	GetCart(ctx context.Context, userID string) (Cart, error)
	ReplaceCart(ctx context.Context, cmd ReplaceCartCommand) (Cart, error)
	MergeGuestCart(ctx context.Context, cmd MergeGuestCartCommand) (Cart, error)
}

// ReplaceCartCommand overwrites the persisted cart with a full snapshot.
type ReplaceCartCommand struct {
	UserID string
	Lines  []CartLine
}

// MergeGuestCartCommand folds a pre-login guest cart into the account cart.
type MergeGuestCartCommand struct {
	UserID     string
	GuestLines []CartLine
}

// OrderCalculator computes the authoritative total for a cart and destination.
type OrderCalculator interface {
	ComputeTotal(ctx context.Context, lines []CartLine, prefecture string) (OrderTotal, error)
}

// CheckoutService validates carts and drives payment intents at the gateway.
type CheckoutService interface {
	CreatePaymentIntent(ctx context.Context, cmd CreatePaymentIntentCommand) (PaymentIntent, OrderTotal, error)
	UpdatePaymentIntent(ctx context.Context, cmd UpdatePaymentIntentCommand) (PaymentIntent, OrderTotal, error)
}

// CreatePaymentIntentCommand opens a payment intent for the given cart.
type CreatePaymentIntentCommand struct {
	UserID       string
	Lines        []CartLine
	Prefecture   string
	ReceiptEmail string
}

// UpdatePaymentIntentCommand re-prices an existing payment intent after the
// cart changed.
type UpdatePaymentIntentCommand struct {
	UserID     string
	IntentID   string
	Lines      []CartLine
	Prefecture string
}

// UserService manages the customer profile document.
type UserService interface {
	GetProfile(ctx context.Context, uid string) (UserProfile, error)
	UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error)
}

// UpdateProfileCommand carries the writable profile fields.
type UpdateProfileCommand struct {
	UID        string
	Email      string
	LastName   string
	FirstName  string
	PostalCode string
	Prefecture string
	City       string
}

// SellerService covers the seller console: profile and product management.
type SellerService interface {
	GetProfile(ctx context.Context, sellerID string) (SellerProfile, error)
	UpdateProfile(ctx context.Context, cmd UpdateSellerProfileCommand) (SellerProfile, error)
	ListProducts(ctx context.Context, sellerID string) ([]Product, error)
	CreateProduct(ctx context.Context, cmd SellerProductCommand) (Product, error)
	UpdateProduct(ctx context.Context, cmd SellerProductCommand) (Product, error)
	DeleteProduct(ctx context.Context, sellerID string, productID string) error
}

// UpdateSellerProfileCommand carries the writable seller profile fields.
type UpdateSellerProfileCommand struct {
	SellerID    string
	Name        string
	ImageURL    string
	Description string
	Contact     string
}

// SellerProductCommand carries a product create or update from the console.
type SellerProductCommand struct {
	SellerID        string
	ProductID       string
	Name            string
	Price           int64
	ImageURL        string
	Description     string
	IsReservation   bool
	ReservationNote string
}

// NewsletterService composes and dispatches seller mailings.
type NewsletterService interface {
	Send(ctx context.Context, cmd SendNewsletterCommand) (Newsletter, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Newsletter, error)
}

// SendNewsletterCommand carries a mailing composed in the seller console.
type SendNewsletterCommand struct {
	SellerID string
	Subject  string
	Body     string
	ImageURL string
}

// NewsletterJobMessage is the payload published for the delivery worker.
type NewsletterJobMessage struct {
	NewsletterID string    `json:"newsletterId"`
	SellerID     string    `json:"sellerId"`
	Subject      string    `json:"subject"`
	QueuedAt     time.Time `json:"queuedAt"`
}

// NewsletterJobPublisher enqueues newsletter dispatch jobs for asynchronous delivery.
type NewsletterJobPublisher interface {
	PublishNewsletterJob(ctx context.Context, message NewsletterJobMessage) (string, error)
}

// SystemService surfaces dependency health and build metadata.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}
