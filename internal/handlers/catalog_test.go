package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/net-super/api/internal/services"
	"github.com/net-super/api/internal/shipping"
)

type stubCatalogService struct {
	listFunc func(ctx context.Context) ([]services.Product, error)
	getFunc  func(ctx context.Context, productID string) (services.Product, error)
	feeFunc  func(ctx context.Context, prefecture string) (int64, error)
}

func (s *stubCatalogService) ListProducts(ctx context.Context) ([]services.Product, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx)
	}
	return nil, services.ErrCatalogUnavailable
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (services.Product, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, productID)
	}
	return services.Product{}, services.ErrCatalogUnavailable
}

func (s *stubCatalogService) ShippingFee(ctx context.Context, prefecture string) (int64, error) {
	if s.feeFunc != nil {
		return s.feeFunc(ctx, prefecture)
	}
	return 0, services.ErrCatalogUnavailable
}

func (s *stubCatalogService) Prefectures(ctx context.Context) []string {
	return shipping.Prefectures()
}

func newCatalogRouter(service services.CatalogService) chi.Router {
	handler := NewCatalogHandlers(service)
	router := chi.NewRouter()
	router.Route("/", handler.Routes)
	return router
}

func TestCatalogHandlersListProducts(t *testing.T) {
	created := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	service := &stubCatalogService{
		listFunc: func(ctx context.Context) ([]services.Product, error) {
			return []services.Product{
				{ID: "rice-2024", SellerID: "seller-1", Name: "新米こしひかり 5kg", Price: 4000, CreatedAt: created},
				{ID: "miso-500", SellerID: "seller-1", Name: "合わせ味噌 500g", Price: 600},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rr := httptest.NewRecorder()
	newCatalogRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var body struct {
		Products []productPayload `json:"products"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(body.Products))
	}
	if body.Products[0].ID != "rice-2024" || body.Products[0].Price != 4000 {
		t.Fatalf("unexpected first product %#v", body.Products[0])
	}
	if body.Products[0].CreatedAt != "2024-04-01T08:00:00Z" {
		t.Fatalf("expected RFC3339 createdAt, got %q", body.Products[0].CreatedAt)
	}
}

func TestCatalogHandlersGetProductNotFound(t *testing.T) {
	service := &stubCatalogService{
		getFunc: func(ctx context.Context, productID string) (services.Product, error) {
			return services.Product{}, services.ErrCatalogProductNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/products/missing", nil)
	rr := httptest.NewRecorder()
	newCatalogRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body: %v", err)
	}
	if body["error"] != "not_found" {
		t.Fatalf("expected not_found error, got %v", body["error"])
	}
}

func TestCatalogHandlersShippingFee(t *testing.T) {
	service := &stubCatalogService{
		feeFunc: func(ctx context.Context, prefecture string) (int64, error) {
			if prefecture != "東京都" {
				t.Fatalf("unexpected prefecture %q", prefecture)
			}
			return 600, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/shipping/fee?prefecture=東京都", nil)
	rr := httptest.NewRecorder()
	newCatalogRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var body struct {
		Prefecture string `json:"prefecture"`
		Fee        int64  `json:"fee"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Prefecture != "東京都" || body.Fee != 600 {
		t.Fatalf("unexpected fee payload %#v", body)
	}
}

func TestCatalogHandlersShippingFeeUnknownPrefecture(t *testing.T) {
	service := &stubCatalogService{
		feeFunc: func(ctx context.Context, prefecture string) (int64, error) {
			return 0, services.ErrCatalogUnknownPrefecture
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/shipping/fee?prefecture=nowhere", nil)
	rr := httptest.NewRecorder()
	newCatalogRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCatalogHandlersPrefectures(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/prefectures", nil)
	rr := httptest.NewRecorder()
	newCatalogRouter(&stubCatalogService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var body struct {
		Prefectures []string `json:"prefectures"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Prefectures) != 47 {
		t.Fatalf("expected 47 prefectures, got %d", len(body.Prefectures))
	}
	if body.Prefectures[0] != "北海道" || body.Prefectures[46] != "沖縄県" {
		t.Fatalf("unexpected prefecture ordering: first %q last %q", body.Prefectures[0], body.Prefectures[46])
	}
}

func TestCatalogHandlersServiceUnavailable(t *testing.T) {
	handler := NewCatalogHandlers(nil)
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rr := httptest.NewRecorder()
	handler.listProducts(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}
