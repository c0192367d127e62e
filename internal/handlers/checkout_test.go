package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/net-super/api/internal/services"
)

type stubCheckoutService struct {
	createFunc func(ctx context.Context, cmd services.CreatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error)
	updateFunc func(ctx context.Context, cmd services.UpdatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error)
}

func (s *stubCheckoutService) CreatePaymentIntent(ctx context.Context, cmd services.CreatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, cmd)
	}
	return services.PaymentIntent{}, services.OrderTotal{}, services.ErrCheckoutGateway
}

func (s *stubCheckoutService) UpdatePaymentIntent(ctx context.Context, cmd services.UpdatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, cmd)
	}
	return services.PaymentIntent{}, services.OrderTotal{}, services.ErrCheckoutGateway
}

func newCheckoutRouter(service services.CheckoutService, opts ...CheckoutOption) chi.Router {
	handler := NewCheckoutHandlers(nil, service, opts...)
	router := chi.NewRouter()
	router.Route("/checkout", handler.Routes)
	return router
}

func TestCheckoutHandlersCreateIntentSuccess(t *testing.T) {
	var captured services.CreatePaymentIntentCommand
	service := &stubCheckoutService{
		createFunc: func(ctx context.Context, cmd services.CreatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error) {
			captured = cmd
			return services.PaymentIntent{
					ID:           "pi_123",
					ClientSecret: "pi_123_secret",
					Amount:       8600,
					Currency:     "jpy",
					Status:       "pending",
				}, services.OrderTotal{
					Subtotal:    8000,
					ShippingFee: 600,
					Total:       8600,
				}, nil
		},
	}

	body := `{"lines":[{"productId":"rice-2024","quantity":2}],"prefecture":"東京都","receiptEmail":"taro@example.com"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/checkout/payment-intent", strings.NewReader(body)), "user-9")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	newCheckoutRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
	if captured.UserID != "user-9" || captured.Prefecture != "東京都" || captured.ReceiptEmail != "taro@example.com" {
		t.Fatalf("unexpected command %#v", captured)
	}

	var resp struct {
		PaymentIntent struct {
			ID           string `json:"id"`
			ClientSecret string `json:"clientSecret"`
			Amount       int64  `json:"amount"`
		} `json:"paymentIntent"`
		Total struct {
			Subtotal    int64 `json:"subtotal"`
			ShippingFee int64 `json:"shippingFee"`
			Total       int64 `json:"total"`
		} `json:"total"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.PaymentIntent.ID != "pi_123" || resp.PaymentIntent.ClientSecret != "pi_123_secret" {
		t.Fatalf("unexpected intent payload %#v", resp.PaymentIntent)
	}
	if resp.Total.Total != 8600 || resp.Total.ShippingFee != 600 {
		t.Fatalf("unexpected total payload %#v", resp.Total)
	}
}

func TestCheckoutHandlersCreateIntentEmptyCart(t *testing.T) {
	service := &stubCheckoutService{
		createFunc: func(ctx context.Context, cmd services.CreatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error) {
			return services.PaymentIntent{}, services.OrderTotal{}, services.ErrOrderCartEmpty
		},
	}

	req := authenticated(httptest.NewRequest(http.MethodPost, "/checkout/payment-intent", strings.NewReader(`{"lines":[],"prefecture":"東京都"}`)), "user-9")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	newCheckoutRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body: %v", err)
	}
	if body["error"] != "invalid_argument" {
		t.Fatalf("expected invalid_argument, got %v", body["error"])
	}
}

func TestCheckoutHandlersCreateIntentProductMissing(t *testing.T) {
	service := &stubCheckoutService{
		createFunc: func(ctx context.Context, cmd services.CreatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error) {
			return services.PaymentIntent{}, services.OrderTotal{}, services.ErrOrderProductNotFound
		},
	}

	req := authenticated(httptest.NewRequest(http.MethodPost, "/checkout/payment-intent", strings.NewReader(`{"lines":[{"productId":"ghost","quantity":1}],"prefecture":"東京都"}`)), "user-9")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	newCheckoutRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestCheckoutHandlersCreateIntentGatewayFailure(t *testing.T) {
	service := &stubCheckoutService{
		createFunc: func(ctx context.Context, cmd services.CreatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error) {
			return services.PaymentIntent{}, services.OrderTotal{}, services.ErrCheckoutGateway
		},
	}

	req := authenticated(httptest.NewRequest(http.MethodPost, "/checkout/payment-intent", strings.NewReader(`{"lines":[{"productId":"rice-2024","quantity":1}],"prefecture":"東京都"}`)), "user-9")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	newCheckoutRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body: %v", err)
	}
	if body["error"] != "gateway_error" {
		t.Fatalf("expected gateway_error, got %v", body["error"])
	}
}

func TestCheckoutHandlersUpdateIntentReprices(t *testing.T) {
	var captured services.UpdatePaymentIntentCommand
	service := &stubCheckoutService{
		updateFunc: func(ctx context.Context, cmd services.UpdatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error) {
			captured = cmd
			// Stripe echoes the secret on updates; the handler must not.
			return services.PaymentIntent{ID: cmd.IntentID, ClientSecret: "pi_123_secret", Amount: 8000, Currency: "jpy", Status: "pending"},
				services.OrderTotal{Subtotal: 8000, ShippingFee: 0, Total: 8000}, nil
		},
	}

	body := `{"lines":[{"productId":"rice-2024","quantity":2}],"prefecture":"熊本県"}`
	req := authenticated(httptest.NewRequest(http.MethodPost, "/checkout/payment-intent/pi_123", strings.NewReader(body)), "user-9")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	newCheckoutRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if captured.IntentID != "pi_123" || captured.Prefecture != "熊本県" {
		t.Fatalf("unexpected command %#v", captured)
	}

	var resp struct {
		PaymentIntent struct {
			ClientSecret string `json:"clientSecret"`
			Amount       int64  `json:"amount"`
		} `json:"paymentIntent"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.PaymentIntent.Amount != 8000 {
		t.Fatalf("expected amount 8000, got %d", resp.PaymentIntent.Amount)
	}
	if resp.PaymentIntent.ClientSecret != "" {
		t.Fatalf("expected client secret omitted on update, got %q", resp.PaymentIntent.ClientSecret)
	}
}

func TestCheckoutHandlersUpdateIntentNotFound(t *testing.T) {
	service := &stubCheckoutService{
		updateFunc: func(ctx context.Context, cmd services.UpdatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error) {
			return services.PaymentIntent{}, services.OrderTotal{}, services.ErrCheckoutIntentNotFound
		},
	}

	req := authenticated(httptest.NewRequest(http.MethodPost, "/checkout/payment-intent/pi_gone", strings.NewReader(`{"lines":[{"productId":"rice-2024","quantity":1}],"prefecture":"東京都"}`)), "user-9")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	newCheckoutRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestCheckoutHandlersRateLimitExceeded(t *testing.T) {
	service := &stubCheckoutService{
		createFunc: func(ctx context.Context, cmd services.CreatePaymentIntentCommand) (services.PaymentIntent, services.OrderTotal, error) {
			return services.PaymentIntent{ID: "pi_ok", Amount: 100, Currency: "jpy", Status: "pending"}, services.OrderTotal{Subtotal: 100, Total: 100}, nil
		},
	}

	router := newCheckoutRouter(service, WithCheckoutRateLimit(2, time.Minute))

	send := func() int {
		req := authenticated(httptest.NewRequest(http.MethodPost, "/checkout/payment-intent", strings.NewReader(`{"lines":[{"productId":"rice-2024","quantity":1}],"prefecture":"東京都"}`)), "user-9")
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send(); code != http.StatusCreated {
		t.Fatalf("expected first request accepted, got %d", code)
	}
	if code := send(); code != http.StatusCreated {
		t.Fatalf("expected second request accepted, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected third request rate limited, got %d", code)
	}
}

func TestCheckoutHandlersCreateIntentUnauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/checkout/payment-intent", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	newCheckoutRouter(&stubCheckoutService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}
