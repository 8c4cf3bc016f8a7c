package referral

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/middleware"
	"github.com/earnzy/earnzy-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Settle pays out one referral. Triggered by the backoffice once the
// invited user shows real activity.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid referral id")
		return
	}

	ref, err := h.svc.Settle(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "referral not found")
		case errors.Is(err, ErrAlreadySettled):
			response.Conflict(w, "referral already settled")
		case errors.Is(err, account.ErrAccountNotFound):
			response.NotFound(w, "referrer account not found")
		default:
			log.Error().Err(err).Str("referral_id", id.String()).Msg("referral settlement failed")
			response.InternalError(w)
		}
		return
	}
	response.OK(w, ref)
}

// ListMine returns the caller's referrals, newest first.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	refs, err := h.svc.ListByReferrer(r.Context(), userID, limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list referrals")
		response.InternalError(w)
		return
	}
	response.OK(w, refs)
}

// SettleRoutes is mounted under the settlements tree with the admin guard.
func (h *Handler) SettleRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{id}", h.Settle)
	return r
}

// Routes exposes the user-facing referral views.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.ListMine)
	return r
}
