package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/net-super/api/internal/payments"
)

// ErrCheckoutInvalidInput indicates the caller supplied invalid input.
var ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")

// ErrCheckoutIntentNotFound indicates the gateway has no record of the intent.
// The client should discard its stored intent reference and create a new one.
var ErrCheckoutIntentNotFound = errors.New("checkout service: payment intent not found")

// ErrCheckoutGateway indicates the payment gateway rejected or failed the call.
var ErrCheckoutGateway = errors.New("checkout service: payment gateway error")

// PaymentGateway is the slice of the payments provider the checkout flow uses.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req payments.CreateIntentRequest) (payments.IntentDetails, error)
	UpdateIntentAmount(ctx context.Context, req payments.UpdateIntentRequest) (payments.IntentDetails, error)
}

// CheckoutServiceDeps wires the calculator and gateway for checkout operations.
type CheckoutServiceDeps struct {
	Calculator OrderCalculator
	Gateway    PaymentGateway
	Currency   string
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type checkoutService struct {
	calculator OrderCalculator
	gateway    PaymentGateway
	currency   string
	now        func() time.Time
	logger     func(context.Context, string, map[string]any)
}

var _ CheckoutService = (*checkoutService)(nil)

// NewCheckoutService constructs a CheckoutService enforcing dependency validation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Calculator == nil {
		return nil, errors.New("checkout service: calculator is required")
	}
	if deps.Gateway == nil {
		return nil, errors.New("checkout service: payment gateway is required")
	}

	currency := strings.ToLower(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = "jpy"
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		calculator: deps.Calculator,
		gateway:    deps.Gateway,
		currency:   currency,
		now:        func() time.Time { return clock().UTC() },
		logger:     logger,
	}, nil
}

// CreatePaymentIntent validates the cart, computes the authoritative total,
// and only then opens an intent at the gateway. Calculator failures never
// reach the gateway.
func (s *checkoutService) CreatePaymentIntent(ctx context.Context, cmd CreatePaymentIntentCommand) (PaymentIntent, OrderTotal, error) {
	if s == nil || s.gateway == nil {
		return PaymentIntent{}, OrderTotal{}, ErrCheckoutGateway
	}
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return PaymentIntent{}, OrderTotal{}, fmt.Errorf("%w: user id is required", ErrCheckoutInvalidInput)
	}

	total, err := s.calculator.ComputeTotal(ctx, cmd.Lines, cmd.Prefecture)
	if err != nil {
		return PaymentIntent{}, OrderTotal{}, err
	}

	details, err := s.gateway.CreateIntent(ctx, payments.CreateIntentRequest{
		Amount:       total.Total,
		Currency:     s.currency,
		ReceiptEmail: strings.TrimSpace(cmd.ReceiptEmail),
		Metadata: map[string]string{
			"userId": uid,
		},
	})
	if err != nil {
		s.logger(ctx, "checkout.intent.create_failed", map[string]any{
			"userId": uid,
			"amount": total.Total,
			"error":  err.Error(),
		})
		return PaymentIntent{}, OrderTotal{}, s.translateGatewayError(err)
	}

	s.logger(ctx, "checkout.intent.created", map[string]any{
		"userId":   uid,
		"intentId": details.IntentID,
		"amount":   details.Amount,
	})
	return intentFromDetails(details), total, nil
}

// UpdatePaymentIntent re-validates the cart and re-prices an existing intent.
// On gateway failure the client contract is to discard the intent reference
// and create a new one.
func (s *checkoutService) UpdatePaymentIntent(ctx context.Context, cmd UpdatePaymentIntentCommand) (PaymentIntent, OrderTotal, error) {
	if s == nil || s.gateway == nil {
		return PaymentIntent{}, OrderTotal{}, ErrCheckoutGateway
	}
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return PaymentIntent{}, OrderTotal{}, fmt.Errorf("%w: user id is required", ErrCheckoutInvalidInput)
	}
	intentID := strings.TrimSpace(cmd.IntentID)
	if intentID == "" {
		return PaymentIntent{}, OrderTotal{}, fmt.Errorf("%w: intent id is required", ErrCheckoutInvalidInput)
	}

	total, err := s.calculator.ComputeTotal(ctx, cmd.Lines, cmd.Prefecture)
	if err != nil {
		return PaymentIntent{}, OrderTotal{}, err
	}

	details, err := s.gateway.UpdateIntentAmount(ctx, payments.UpdateIntentRequest{
		IntentID: intentID,
		Amount:   total.Total,
		Metadata: map[string]string{
			"userId": uid,
		},
	})
	if err != nil {
		s.logger(ctx, "checkout.intent.update_failed", map[string]any{
			"userId":   uid,
			"intentId": intentID,
			"amount":   total.Total,
			"error":    err.Error(),
		})
		return PaymentIntent{}, OrderTotal{}, s.translateGatewayError(err)
	}

	s.logger(ctx, "checkout.intent.updated", map[string]any{
		"userId":   uid,
		"intentId": details.IntentID,
		"amount":   details.Amount,
	})
	return intentFromDetails(details), total, nil
}

func (s *checkoutService) translateGatewayError(err error) error {
	if errors.Is(err, payments.ErrIntentNotFound) {
		return fmt.Errorf("%w: %v", ErrCheckoutIntentNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrCheckoutGateway, err)
}

func intentFromDetails(details payments.IntentDetails) PaymentIntent {
	return PaymentIntent{
		ID:           details.IntentID,
		ClientSecret: details.ClientSecret,
		Amount:       details.Amount,
		Currency:     details.Currency,
		Status:       string(details.Status),
	}
}
