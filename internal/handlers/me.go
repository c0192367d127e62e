package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/net-super/api/internal/platform/auth"
	"github.com/net-super/api/internal/platform/httpx"
	"github.com/net-super/api/internal/services"
)

const maxProfileBodySize = 16 * 1024

// MeHandlers exposes the authenticated customer profile endpoints.
type MeHandlers struct {
	authn *auth.Authenticator
	users services.UserService
}

// NewMeHandlers constructs handlers enforcing Firebase authentication before
// invoking the user service.
func NewMeHandlers(authn *auth.Authenticator, users services.UserService) *MeHandlers {
	return &MeHandlers{
		authn: authn,
		users: users,
	}
}

// Routes wires the /me endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.getProfile)
	r.Put("/", h.putProfile)
}

func (h *MeHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.Internal("user service is unavailable"))
		return
	}

	profile, err := h.users.GetProfile(ctx, identity.UID)
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"profile": buildProfilePayload(profile)})
}

func (h *MeHandlers) putProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}
	if h.users == nil {
		httpx.WriteError(ctx, w, httpx.Internal("user service is unavailable"))
		return
	}

	var req profileRequest
	if err := decodeJSONBody(r, maxProfileBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	profile, err := h.users.UpdateProfile(ctx, services.UpdateProfileCommand{
		UID:        identity.UID,
		Email:      req.Email,
		LastName:   req.LastName,
		FirstName:  req.FirstName,
		PostalCode: req.PostalCode,
		Prefecture: req.Prefecture,
		City:       req.City,
	})
	if err != nil {
		writeProfileError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"profile": buildProfilePayload(profile)})
}

func requireIdentity(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeUnauthenticated, "authentication required", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidArgument, "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		return
	}
	httpx.WriteError(ctx, w, httpx.InvalidArgument(err.Error()))
}

func writeProfileError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserInvalidInput):
		httpx.WriteError(ctx, w, httpx.InvalidArgument(err.Error()))
	case errors.Is(err, services.ErrUserProfileNotFound):
		httpx.WriteError(ctx, w, httpx.NotFound("profile not found"))
	default:
		httpx.WriteError(ctx, w, httpx.Internal("profile operation failed"))
	}
}

type profileRequest struct {
	Email      string `json:"email"`
	LastName   string `json:"lastName"`
	FirstName  string `json:"firstName"`
	PostalCode string `json:"postalCode"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
}

type profilePayload struct {
	UID        string `json:"uid"`
	Email      string `json:"email"`
	LastName   string `json:"lastName"`
	FirstName  string `json:"firstName"`
	PostalCode string `json:"postalCode,omitempty"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

func buildProfilePayload(profile services.UserProfile) profilePayload {
	payload := profilePayload{
		UID:        profile.UID,
		Email:      profile.Email,
		LastName:   profile.LastName,
		FirstName:  profile.FirstName,
		PostalCode: profile.PostalCode,
		Prefecture: profile.Prefecture,
		City:       profile.City,
	}
	if !profile.UpdatedAt.IsZero() {
		payload.UpdatedAt = profile.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return payload
}
