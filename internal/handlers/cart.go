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

const maxCartBodySize = 64 * 1024

// CartHandlers exposes the authenticated cart endpoints for the current user.
type CartHandlers struct {
	authn *auth.Authenticator
	carts services.CartService
}

// NewCartHandlers constructs handlers enforcing Firebase authentication before
// invoking the cart service.
func NewCartHandlers(authn *auth.Authenticator, carts services.CartService) *CartHandlers {
	return &CartHandlers{
		authn: authn,
		carts: carts,
	}
}

// Routes wires the /me/cart endpoints onto the provided router. Mounted under
// the /me group so it shares that group's authentication middleware when the
// handler's own authenticator is nil.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/cart", h.getCart)
	r.Put("/cart", h.putCart)
	r.Post("/cart:merge", h.mergeCart)
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.Internal("cart service is unavailable"))
		return
	}

	cart, err := h.carts.GetCart(ctx, identity.UID)
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": buildCartPayload(cart)})
}

func (h *CartHandlers) putCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.Internal("cart service is unavailable"))
		return
	}

	var req cartRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	cart, err := h.carts.ReplaceCart(ctx, services.ReplaceCartCommand{
		UserID: identity.UID,
		Lines:  cartLinesFromRequest(req.Lines),
	})
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": buildCartPayload(cart)})
}

func (h *CartHandlers) mergeCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.Internal("cart service is unavailable"))
		return
	}

	var req cartRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	cart, err := h.carts.MergeGuestCart(ctx, services.MergeGuestCartCommand{
		UserID:     identity.UID,
		GuestLines: cartLinesFromRequest(req.Lines),
	})
	if err != nil {
		writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"cart": buildCartPayload(cart)})
}

func writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.InvalidArgument(err.Error()))
	default:
		httpx.WriteError(ctx, w, httpx.Internal("cart operation failed"))
	}
}

type cartRequest struct {
	Lines []cartLineRequest `json:"lines"`
}

type cartLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
	UnitPrice int64  `json:"unitPrice"`
}

func cartLinesFromRequest(lines []cartLineRequest) []services.CartLine {
	out := make([]services.CartLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, services.CartLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Name:      line.Name,
			ImageURL:  line.ImageURL,
			UnitPrice: line.UnitPrice,
		})
	}
	return out
}

type cartPayload struct {
	UserID    string            `json:"userId"`
	Lines     []cartLinePayload `json:"lines"`
	UpdatedAt string            `json:"updatedAt,omitempty"`
}

type cartLinePayload struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Name      string `json:"name,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	UnitPrice int64  `json:"unitPrice,omitempty"`
}

func buildCartPayload(cart services.Cart) cartPayload {
	payload := cartPayload{
		UserID: cart.UserID,
		Lines:  make([]cartLinePayload, 0, len(cart.Lines)),
	}
	for _, line := range cart.Lines {
		payload.Lines = append(payload.Lines, cartLinePayload{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Name:      line.Name,
			ImageURL:  line.ImageURL,
			UnitPrice: line.UnitPrice,
		})
	}
	if !cart.UpdatedAt.IsZero() {
		payload.UpdatedAt = cart.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return payload
}
