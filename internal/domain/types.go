package domain

import "time"

// Product is an item listed by a seller. Prices are whole yen; JPY has no
// sub-unit so no rounding happens anywhere downstream.
type Product struct {
	ID       string
	SellerID string
	Name     string
	Price    int64
	// PriceMissing marks documents written by older console revisions that
	// carry no numeric price field. An explicit 0 is a valid price.
	PriceMissing    bool
	ImageURL        string
	Description     string
	IsReservation   bool
	ReservationNote string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPrice reports whether the product document carried a numeric unit
// price. A zero price is a free item; only a missing field disqualifies.
func (p Product) HasPrice() bool {
	return !p.PriceMissing
}

// CartLine is one entry of a customer cart. Name, ImageURL and UnitPrice are
// denormalised for client rendering only; the server recomputes every amount
// from the product store and never trusts UnitPrice.
type CartLine struct {
	ProductID string
	Quantity  int64
	Name      string
	ImageURL  string
	UnitPrice int64
}

// Cart is the persisted cart of an authenticated customer, keyed by the
// owning account. Before sign-in a cart exists only as a client-side
// snapshot and has no owner.
type Cart struct {
	UserID    string
	Lines     []CartLine
	UpdatedAt time.Time
	CreatedAt time.Time
}

// OrderTotal is the server-computed amount for a cart and destination.
// It is transient: computed fresh per request and never persisted.
type OrderTotal struct {
	Subtotal    int64
	ShippingFee int64
	Total       int64
}

// PaymentIntent references a gateway payment intent for a checkout session.
// The client secret is returned once, on creation; amount updates reuse it.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
}

// UserProfile is the account document of a customer.
type UserProfile struct {
	UID        string
	Email      string
	LastName   string
	FirstName  string
	PostalCode string
	Prefecture string
	City       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SellerProfile is the storefront identity a seller manages in the console.
type SellerProfile struct {
	SellerID    string
	Name        string
	ImageURL    string
	Description string
	Contact     string
	UpdatedAt   time.Time
}

// Newsletter is a seller mailing. SentAt is set when the send job is
// dispatched; delivery fan-out happens in a worker outside this API.
type Newsletter struct {
	ID       string
	SellerID string
	Subject  string
	Body     string
	ImageURL string
	SentAt   time.Time
}
