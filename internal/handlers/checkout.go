package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/net-super/api/internal/platform/auth"
	"github.com/net-super/api/internal/platform/httpx"
	"github.com/net-super/api/internal/services"
)

const maxCheckoutBodySize = 64 * 1024

// CheckoutHandlers exposes the payment intent endpoints.
type CheckoutHandlers struct {
	authn    *auth.Authenticator
	checkout services.CheckoutService
	limiter  rateLimiter
}

// CheckoutOption customises checkout handler construction.
type CheckoutOption func(*CheckoutHandlers)

// WithCheckoutRateLimit caps intent operations per user within the window.
func WithCheckoutRateLimit(limit int, window time.Duration) CheckoutOption {
	return func(h *CheckoutHandlers) {
		h.limiter = newFixedWindowLimiter(limit, window, nil)
	}
}

// NewCheckoutHandlers constructs handlers enforcing Firebase authentication
// before invoking the checkout service.
func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService, opts ...CheckoutOption) *CheckoutHandlers {
	h := &CheckoutHandlers{
		authn:    authn,
		checkout: checkout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Post("/payment-intent", h.createIntent)
	r.Post("/payment-intent/{intentId}", h.updateIntent)
}

func (h *CheckoutHandlers) createIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.Internal("checkout service is unavailable"))
		return
	}
	if h.limiter != nil && !h.limiter.Allow(identity.UID) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many checkout attempts; retry later", http.StatusTooManyRequests))
		return
	}

	var req checkoutRequest
	if err := decodeJSONBody(r, maxCheckoutBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	intent, total, err := h.checkout.CreatePaymentIntent(ctx, services.CreatePaymentIntentCommand{
		UserID:       identity.UID,
		Lines:        cartLinesFromRequest(req.Lines),
		Prefecture:   req.Prefecture,
		ReceiptEmail: req.ReceiptEmail,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildIntentResponse(intent, total, true))
}

func (h *CheckoutHandlers) updateIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.Internal("checkout service is unavailable"))
		return
	}
	if h.limiter != nil && !h.limiter.Allow(identity.UID) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many checkout attempts; retry later", http.StatusTooManyRequests))
		return
	}

	var req checkoutRequest
	if err := decodeJSONBody(r, maxCheckoutBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	intent, total, err := h.checkout.UpdatePaymentIntent(ctx, services.UpdatePaymentIntentCommand{
		UserID:     identity.UID,
		IntentID:   chi.URLParam(r, "intentId"),
		Lines:      cartLinesFromRequest(req.Lines),
		Prefecture: req.Prefecture,
	})
	if err != nil {
		writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildIntentResponse(intent, total, false))
}

func writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput),
		errors.Is(err, services.ErrOrderCartEmpty),
		errors.Is(err, services.ErrOrderInvalidLine),
		errors.Is(err, services.ErrOrderInvalidSubtotal),
		errors.Is(err, services.ErrOrderUnknownDestination):
		httpx.WriteError(ctx, w, httpx.InvalidArgument(err.Error()))
	case errors.Is(err, services.ErrOrderProductNotFound),
		errors.Is(err, services.ErrCheckoutIntentNotFound):
		httpx.WriteError(ctx, w, httpx.NotFound(err.Error()))
	case errors.Is(err, services.ErrCheckoutGateway):
		httpx.WriteError(ctx, w, httpx.GatewayError("payment gateway rejected the request"))
	default:
		// ErrOrderPriceUnavailable and backend outages land here.
		httpx.WriteError(ctx, w, httpx.Internal("checkout failed"))
	}
}

type checkoutRequest struct {
	Lines        []cartLineRequest `json:"lines"`
	Prefecture   string            `json:"prefecture"`
	ReceiptEmail string            `json:"receiptEmail"`
}

// The client secret is handed out once, on creation. Updates never echo it
// even though the gateway's update response carries it.
func buildIntentResponse(intent services.PaymentIntent, total services.OrderTotal, includeSecret bool) map[string]any {
	intentPayload := map[string]any{
		"id":       intent.ID,
		"amount":   intent.Amount,
		"currency": intent.Currency,
		"status":   intent.Status,
	}
	if includeSecret && intent.ClientSecret != "" {
		intentPayload["clientSecret"] = intent.ClientSecret
	}
	return map[string]any{
		"paymentIntent": intentPayload,
		"total": map[string]any{
			"subtotal":    total.Subtotal,
			"shippingFee": total.ShippingFee,
			"total":       total.Total,
		},
	}
}
