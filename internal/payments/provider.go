package payments

import (
	"context"
	"errors"
	"time"
)

// Status enumerates the normalised payment intent states shared across providers.
type Status string

const (
	// StatusPending indicates the intent is awaiting customer action or PSP confirmation.
	StatusPending Status = "pending"
	// StatusSucceeded indicates the PSP reports the payment as successfully captured.
	StatusSucceeded Status = "succeeded"
	// StatusFailed indicates the PSP reports a terminal failure.
	StatusFailed Status = "failed"
)

// ErrIntentNotFound is returned when the PSP has no record of the intent.
var ErrIntentNotFound = errors.New("payments: payment intent not found")

// CreateIntentRequest captures the payload required to open a payment intent.
type CreateIntentRequest struct {
	Amount         int64
	Currency       string
	ReceiptEmail   string
	IdempotencyKey string
	Metadata       map[string]string
}

// UpdateIntentRequest re-prices an existing intent after the cart changed.
type UpdateIntentRequest struct {
	IntentID       string
	Amount         int64
	IdempotencyKey string
	Metadata       map[string]string
}

// IntentDetails normalises PSP specific intent fields for the checkout flow.
type IntentDetails struct {
	Provider     string
	IntentID     string
	ClientSecret string
	Status       Status
	Amount       int64
	Currency     string
	CreatedAt    time.Time
	Raw          map[string]any
}

// Provider defines the contract for PSP adapters to implement.
type Provider interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (IntentDetails, error)
	UpdateIntentAmount(ctx context.Context, req UpdateIntentRequest) (IntentDetails, error)
	GetIntent(ctx context.Context, intentID string) (IntentDetails, error)
}
