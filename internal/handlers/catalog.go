package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/net-super/api/internal/platform/httpx"
	"github.com/net-super/api/internal/services"
)

// CatalogHandlers exposes the public storefront endpoints. No authentication:
// the catalogue, fee table, and prefecture list are world readable.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs the public storefront handlers.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the /public endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/{productId}", h.getProduct)
	r.Get("/shipping/fee", h.shippingFee)
	r.Get("/prefectures", h.prefectures)
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.Internal("catalog service is unavailable"))
		return
	}

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": payload})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.Internal("catalog service is unavailable"))
		return
	}

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product": buildProductPayload(product)})
}

func (h *CatalogHandlers) shippingFee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.Internal("catalog service is unavailable"))
		return
	}

	prefecture := r.URL.Query().Get("prefecture")
	fee, err := h.catalog.ShippingFee(ctx, prefecture)
	if err != nil {
		writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"prefecture": strings.TrimSpace(prefecture),
		"fee":        fee,
	})
}

func (h *CatalogHandlers) prefectures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.Internal("catalog service is unavailable"))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"prefectures": h.catalog.Prefectures(ctx),
	})
}

func writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput), errors.Is(err, services.ErrCatalogUnknownPrefecture):
		httpx.WriteError(ctx, w, httpx.InvalidArgument(err.Error()))
	case errors.Is(err, services.ErrCatalogProductNotFound):
		httpx.WriteError(ctx, w, httpx.NotFound("product not found"))
	default:
		httpx.WriteError(ctx, w, httpx.Internal("catalog lookup failed"))
	}
}

type productPayload struct {
	ID              string `json:"id"`
	SellerID        string `json:"sellerId,omitempty"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	ImageURL        string `json:"imageUrl,omitempty"`
	Description     string `json:"description,omitempty"`
	IsReservation   bool   `json:"isReservation,omitempty"`
	ReservationNote string `json:"reservationNote,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
}

func buildProductPayload(product services.Product) productPayload {
	payload := productPayload{
		ID:              product.ID,
		SellerID:        product.SellerID,
		Name:            product.Name,
		Price:           product.Price,
		ImageURL:        product.ImageURL,
		Description:     product.Description,
		IsReservation:   product.IsReservation,
		ReservationNote: product.ReservationNote,
	}
	if !product.CreatedAt.IsZero() {
		payload.CreatedAt = product.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !product.UpdatedAt.IsZero() {
		payload.UpdatedAt = product.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return payload
}
