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

const (
	maxSellerBodySize     = 64 * 1024
	maxNewsletterBodySize = 256 * 1024
)

// SellerHandlers exposes the seller console: storefront profile, product
// listings, and newsletter dispatch. Every route requires the seller role.
type SellerHandlers struct {
	authn       *auth.Authenticator
	sellers     services.SellerService
	newsletters services.NewsletterService
}

// NewSellerHandlers constructs the seller console handlers.
func NewSellerHandlers(authn *auth.Authenticator, sellers services.SellerService, newsletters services.NewsletterService) *SellerHandlers {
	return &SellerHandlers{
		authn:       authn,
		sellers:     sellers,
		newsletters: newsletters,
	}
}

// Routes wires the /seller endpoints onto the provided router.
func (h *SellerHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleSeller))
	}
	r.Get("/profile", h.getProfile)
	r.Put("/profile", h.putProfile)
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/{productId}", h.updateProduct)
	r.Delete("/products/{productId}", h.deleteProduct)
	r.Get("/newsletters", h.listNewsletters)
	r.Post("/newsletters", h.sendNewsletter)
}

func (h *SellerHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.sellers == nil {
		httpx.WriteError(ctx, w, httpx.Internal("seller service is unavailable"))
		return
	}

	profile, err := h.sellers.GetProfile(ctx, identity.UID)
	if err != nil {
		writeSellerError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"profile": buildSellerProfilePayload(profile)})
}

func (h *SellerHandlers) putProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.sellers == nil {
		httpx.WriteError(ctx, w, httpx.Internal("seller service is unavailable"))
		return
	}

	var req sellerProfileRequest
	if err := decodeJSONBody(r, maxSellerBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	profile, err := h.sellers.UpdateProfile(ctx, services.UpdateSellerProfileCommand{
		SellerID:    identity.UID,
		Name:        req.Name,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Contact:     req.Contact,
	})
	if err != nil {
		writeSellerError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"profile": buildSellerProfilePayload(profile)})
}

func (h *SellerHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.sellers == nil {
		httpx.WriteError(ctx, w, httpx.Internal("seller service is unavailable"))
		return
	}

	products, err := h.sellers.ListProducts(ctx, identity.UID)
	if err != nil {
		writeSellerError(ctx, w, err)
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, buildProductPayload(product))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"products": payload})
}

func (h *SellerHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.sellers == nil {
		httpx.WriteError(ctx, w, httpx.Internal("seller service is unavailable"))
		return
	}

	var req sellerProductRequest
	if err := decodeJSONBody(r, maxSellerBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	product, err := h.sellers.CreateProduct(ctx, req.toCommand(identity.UID, ""))
	if err != nil {
		writeSellerError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"product": buildProductPayload(product)})
}

func (h *SellerHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.sellers == nil {
		httpx.WriteError(ctx, w, httpx.Internal("seller service is unavailable"))
		return
	}

	var req sellerProductRequest
	if err := decodeJSONBody(r, maxSellerBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	product, err := h.sellers.UpdateProduct(ctx, req.toCommand(identity.UID, chi.URLParam(r, "productId")))
	if err != nil {
		writeSellerError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product": buildProductPayload(product)})
}

func (h *SellerHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.sellers == nil {
		httpx.WriteError(ctx, w, httpx.Internal("seller service is unavailable"))
		return
	}

	if err := h.sellers.DeleteProduct(ctx, identity.UID, chi.URLParam(r, "productId")); err != nil {
		writeSellerError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SellerHandlers) listNewsletters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.newsletters == nil {
		httpx.WriteError(ctx, w, httpx.Internal("newsletter service is unavailable"))
		return
	}

	newsletters, err := h.newsletters.ListBySeller(ctx, identity.UID)
	if err != nil {
		writeNewsletterError(ctx, w, err)
		return
	}

	payload := make([]newsletterPayload, 0, len(newsletters))
	for _, newsletter := range newsletters {
		payload = append(payload, buildNewsletterPayload(newsletter))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"newsletters": payload})
}

func (h *SellerHandlers) sendNewsletter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.newsletters == nil {
		httpx.WriteError(ctx, w, httpx.Internal("newsletter service is unavailable"))
		return
	}

	var req newsletterRequest
	if err := decodeJSONBody(r, maxNewsletterBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	newsletter, err := h.newsletters.Send(ctx, services.SendNewsletterCommand{
		SellerID: identity.UID,
		Subject:  req.Subject,
		Body:     req.Body,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeNewsletterError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"newsletter": buildNewsletterPayload(newsletter)})
}

func writeSellerError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSellerInvalidInput):
		httpx.WriteError(ctx, w, httpx.InvalidArgument(err.Error()))
	case errors.Is(err, services.ErrSellerProfileNotFound):
		httpx.WriteError(ctx, w, httpx.NotFound("seller profile not found"))
	case errors.Is(err, services.ErrSellerProductNotFound):
		httpx.WriteError(ctx, w, httpx.NotFound("product not found"))
	case errors.Is(err, services.ErrSellerProductNotOwned):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeForbidden, "product belongs to another seller", http.StatusForbidden))
	default:
		httpx.WriteError(ctx, w, httpx.Internal("seller operation failed"))
	}
}

func writeNewsletterError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNewsletterInvalidInput):
		httpx.WriteError(ctx, w, httpx.InvalidArgument(err.Error()))
	case errors.Is(err, services.ErrNewsletterDispatchFailed):
		httpx.WriteError(ctx, w, httpx.GatewayError("newsletter recorded but dispatch failed"))
	default:
		httpx.WriteError(ctx, w, httpx.Internal("newsletter operation failed"))
	}
}

type sellerProfileRequest struct {
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
}

type sellerProfilePayload struct {
	SellerID    string `json:"sellerId"`
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Description string `json:"description,omitempty"`
	Contact     string `json:"contact,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func buildSellerProfilePayload(profile services.SellerProfile) sellerProfilePayload {
	payload := sellerProfilePayload{
		SellerID:    profile.SellerID,
		Name:        profile.Name,
		ImageURL:    profile.ImageURL,
		Description: profile.Description,
		Contact:     profile.Contact,
	}
	if !profile.UpdatedAt.IsZero() {
		payload.UpdatedAt = profile.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return payload
}

type sellerProductRequest struct {
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	ImageURL        string `json:"imageUrl"`
	Description     string `json:"description"`
	IsReservation   bool   `json:"isReservation"`
	ReservationNote string `json:"reservationNote"`
}

func (req sellerProductRequest) toCommand(sellerID, productID string) services.SellerProductCommand {
	return services.SellerProductCommand{
		SellerID:        sellerID,
		ProductID:       productID,
		Name:            req.Name,
		Price:           req.Price,
		ImageURL:        req.ImageURL,
		Description:     req.Description,
		IsReservation:   req.IsReservation,
		ReservationNote: req.ReservationNote,
	}
}

type newsletterRequest struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	ImageURL string `json:"imageUrl"`
}

type newsletterPayload struct {
	ID       string `json:"id"`
	SellerID string `json:"sellerId"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	ImageURL string `json:"imageUrl,omitempty"`
	SentAt   string `json:"sentAt,omitempty"`
}

func buildNewsletterPayload(newsletter services.Newsletter) newsletterPayload {
	payload := newsletterPayload{
		ID:       newsletter.ID,
		SellerID: newsletter.SellerID,
		Subject:  newsletter.Subject,
		Body:     newsletter.Body,
		ImageURL: newsletter.ImageURL,
	}
	if !newsletter.SentAt.IsZero() {
		payload.SentAt = newsletter.SentAt.UTC().Format(time.RFC3339)
	}
	return payload
}
