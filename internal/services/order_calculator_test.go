package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/net-super/api/internal/domain"
)

type stubProductRepository struct {
	products map[string]domain.Product
	findErr  error

	findManyIDs []string
}

func (s *stubProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findErr != nil {
		return domain.Product{}, s.findErr
	}
	product, ok := s.products[productID]
	if !ok {
		return domain.Product{}, errors.New("not found")
	}
	return product, nil
}

func (s *stubProductRepository) FindMany(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	s.findManyIDs = append([]string(nil), productIDs...)
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make(map[string]domain.Product, len(productIDs))
	for _, id := range productIDs {
		if product, ok := s.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

func (s *stubProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		out = append(out, product)
	}
	return out, nil
}

func (s *stubProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	out := make([]domain.Product, 0)
	for _, product := range s.products {
		if product.SellerID == sellerID {
			out = append(out, product)
		}
	}
	return out, nil
}

func (s *stubProductRepository) Insert(ctx context.Context, product domain.Product) (domain.Product, error) {
	if s.products == nil {
		s.products = make(map[string]domain.Product)
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductRepository) Delete(ctx context.Context, sellerID, productID string) error {
	delete(s.products, productID)
	return nil
}

func newTestCalculator(t *testing.T, repo *stubProductRepository) OrderCalculator {
	t.Helper()
	calc, err := NewOrderCalculator(OrderCalculatorDeps{Products: repo})
	if err != nil {
		t.Fatalf("NewOrderCalculator: %v", err)
	}
	return calc
}

func riceRepository() *stubProductRepository {
	return &stubProductRepository{products: map[string]domain.Product{
		"rice-2024": {ID: "rice-2024", SellerID: "seller-1", Name: "新米コシヒカリ 5kg", Price: 4000},
		"miso-500":  {ID: "miso-500", SellerID: "seller-1", Name: "合わせ味噌 500g", Price: 600},
	}}
}

func TestComputeTotalFreeShippingRegion(t *testing.T) {
	calc := newTestCalculator(t, riceRepository())

	total, err := calc.ComputeTotal(context.Background(), []CartLine{
		{ProductID: "rice-2024", Quantity: 2},
	}, "熊本県")
	if err != nil {
		t.Fatalf("ComputeTotal: %v", err)
	}
	if total.Subtotal != 8000 || total.ShippingFee != 0 || total.Total != 8000 {
		t.Fatalf("total = %+v", total)
	}
}

func TestComputeTotalAddsRegionFee(t *testing.T) {
	calc := newTestCalculator(t, riceRepository())

	total, err := calc.ComputeTotal(context.Background(), []CartLine{
		{ProductID: "rice-2024", Quantity: 2},
	}, "東京都")
	if err != nil {
		t.Fatalf("ComputeTotal: %v", err)
	}
	if total.ShippingFee != 600 || total.Total != 8600 {
		t.Fatalf("total = %+v", total)
	}
}

func TestComputeTotalIgnoresClientPrices(t *testing.T) {
	calc := newTestCalculator(t, riceRepository())

	total, err := calc.ComputeTotal(context.Background(), []CartLine{
		{ProductID: "miso-500", Quantity: 1, UnitPrice: 1},
	}, "大阪府")
	if err != nil {
		t.Fatalf("ComputeTotal: %v", err)
	}
	if total.Subtotal != 600 {
		t.Fatalf("subtotal = %d, want repository price", total.Subtotal)
	}
}

func TestComputeTotalFailureOrder(t *testing.T) {
	cases := []struct {
		name       string
		repo       *stubProductRepository
		lines      []CartLine
		prefecture string
		want       error
	}{
		{
			name:       "empty cart",
			repo:       riceRepository(),
			lines:      nil,
			prefecture: "東京都",
			want:       ErrOrderCartEmpty,
		},
		{
			name:       "blank product id",
			repo:       riceRepository(),
			lines:      []CartLine{{ProductID: "  ", Quantity: 1}},
			prefecture: "東京都",
			want:       ErrOrderInvalidLine,
		},
		{
			name:       "non-positive quantity",
			repo:       riceRepository(),
			lines:      []CartLine{{ProductID: "rice-2024", Quantity: 0}},
			prefecture: "東京都",
			want:       ErrOrderInvalidLine,
		},
		{
			name:       "unknown product",
			repo:       riceRepository(),
			lines:      []CartLine{{ProductID: "ghost", Quantity: 1}},
			prefecture: "東京都",
			want:       ErrOrderProductNotFound,
		},
		{
			name: "price missing",
			repo: &stubProductRepository{products: map[string]domain.Product{
				"unpriced": {ID: "unpriced", Name: "値付け前の商品", PriceMissing: true},
			}},
			lines:      []CartLine{{ProductID: "unpriced", Quantity: 1}},
			prefecture: "東京都",
			want:       ErrOrderPriceUnavailable,
		},
		{
			name:       "blank destination",
			repo:       riceRepository(),
			lines:      []CartLine{{ProductID: "rice-2024", Quantity: 1}},
			prefecture: "",
			want:       ErrOrderUnknownDestination,
		},
		{
			name:       "destination is not a prefecture",
			repo:       riceRepository(),
			lines:      []CartLine{{ProductID: "rice-2024", Quantity: 1}},
			prefecture: "カリフォルニア州",
			want:       ErrOrderUnknownDestination,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calc := newTestCalculator(t, tc.repo)
			_, err := calc.ComputeTotal(context.Background(), tc.lines, tc.prefecture)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestComputeTotalZeroPriceProductContributesNothing(t *testing.T) {
	repo := &stubProductRepository{products: map[string]domain.Product{
		"rice-2024": {ID: "rice-2024", SellerID: "seller-1", Name: "新米コシヒカリ 5kg", Price: 4000},
		"leaflet":   {ID: "leaflet", SellerID: "seller-1", Name: "レシピ冊子", Price: 0},
	}}
	calc := newTestCalculator(t, repo)

	// An explicit zero price is a free item, not a pricing failure.
	total, err := calc.ComputeTotal(context.Background(), []CartLine{
		{ProductID: "rice-2024", Quantity: 1},
		{ProductID: "leaflet", Quantity: 1},
	}, "東京都")
	if err != nil {
		t.Fatalf("ComputeTotal: %v", err)
	}
	if total.Subtotal != 4000 || total.ShippingFee != 600 || total.Total != 4600 {
		t.Fatalf("total = %+v", total)
	}
}

func TestComputeTotalAllFreeCartRejected(t *testing.T) {
	repo := &stubProductRepository{products: map[string]domain.Product{
		"leaflet": {ID: "leaflet", SellerID: "seller-1", Name: "レシピ冊子", Price: 0},
	}}
	calc := newTestCalculator(t, repo)

	_, err := calc.ComputeTotal(context.Background(), []CartLine{
		{ProductID: "leaflet", Quantity: 2},
	}, "東京都")
	if !errors.Is(err, ErrOrderInvalidSubtotal) {
		t.Fatalf("err = %v, want %v", err, ErrOrderInvalidSubtotal)
	}
}

func TestComputeTotalLineErrorBeatsMissingProduct(t *testing.T) {
	calc := newTestCalculator(t, riceRepository())

	// The bad line is checked before any product lookup happens.
	_, err := calc.ComputeTotal(context.Background(), []CartLine{
		{ProductID: "ghost", Quantity: 1},
		{ProductID: "", Quantity: 1},
	}, "東京都")
	if !errors.Is(err, ErrOrderInvalidLine) {
		t.Fatalf("err = %v, want %v", err, ErrOrderInvalidLine)
	}
}

func TestComputeTotalRepositoryOutage(t *testing.T) {
	repo := riceRepository()
	repo.findErr = errors.New("firestore unavailable")
	calc := newTestCalculator(t, repo)

	_, err := calc.ComputeTotal(context.Background(), []CartLine{
		{ProductID: "rice-2024", Quantity: 1},
	}, "東京都")
	if !errors.Is(err, ErrOrderUnavailable) {
		t.Fatalf("err = %v, want %v", err, ErrOrderUnavailable)
	}
}
