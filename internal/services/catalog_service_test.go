package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/net-super/api/internal/domain"
)

type notFoundProductRepository struct {
	stubProductRepository
}

func (r *notFoundProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if product, ok := r.products[productID]; ok {
		return product, nil
	}
	return domain.Product{}, stubNotFoundError{}
}

func newTestCatalogService(t *testing.T, repo *notFoundProductRepository) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{Products: repo})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func TestGetProductNotFound(t *testing.T) {
	svc := newTestCatalogService(t, &notFoundProductRepository{})

	_, err := svc.GetProduct(context.Background(), "ghost")
	if !errors.Is(err, ErrCatalogProductNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrCatalogProductNotFound)
	}
}

func TestGetProductReturnsDocument(t *testing.T) {
	repo := &notFoundProductRepository{stubProductRepository{products: map[string]domain.Product{
		"rice-2024": {ID: "rice-2024", Name: "新米コシヒカリ 5kg", Price: 4000, IsReservation: true, ReservationNote: "10月中旬発送予定"},
	}}}
	svc := newTestCatalogService(t, repo)

	product, err := svc.GetProduct(context.Background(), "rice-2024")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if !product.IsReservation || product.ReservationNote == "" {
		t.Fatalf("product = %+v", product)
	}
}

func TestShippingFeeResolvesRegion(t *testing.T) {
	svc := newTestCatalogService(t, &notFoundProductRepository{})

	fee, err := svc.ShippingFee(context.Background(), "北海道")
	if err != nil {
		t.Fatalf("ShippingFee: %v", err)
	}
	if fee != 1000 {
		t.Fatalf("fee = %d, want 1000", fee)
	}
}

func TestShippingFeeUnknownPrefecture(t *testing.T) {
	svc := newTestCatalogService(t, &notFoundProductRepository{})

	if _, err := svc.ShippingFee(context.Background(), "グアム"); !errors.Is(err, ErrCatalogUnknownPrefecture) {
		t.Fatalf("err = %v, want %v", err, ErrCatalogUnknownPrefecture)
	}
}

func TestPrefecturesReturnsAll47(t *testing.T) {
	svc := newTestCatalogService(t, &notFoundProductRepository{})

	prefectures := svc.Prefectures(context.Background())
	if len(prefectures) != 47 {
		t.Fatalf("len = %d, want 47", len(prefectures))
	}
	if prefectures[0] != "北海道" || prefectures[46] != "沖縄県" {
		t.Fatalf("order = first %q last %q", prefectures[0], prefectures[46])
	}
}
