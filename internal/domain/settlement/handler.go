package settlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/earnzy/earnzy-api/internal/domain/account"
	"github.com/earnzy/earnzy-api/internal/domain/catalog"
	"github.com/earnzy/earnzy-api/internal/domain/quota"
	"github.com/earnzy/earnzy-api/internal/middleware"
	"github.com/earnzy/earnzy-api/internal/pkg/response"
	"github.com/earnzy/earnzy-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) SettleActivity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	res, err := h.svc.SettleActivity(r.Context(), userID, Kind(req.Kind), req.itemID())
	if err != nil {
		switch {
		case errors.Is(err, quota.ErrQuotaExceeded):
			response.TooManyRequests(w, err.Error())
		case errors.Is(err, account.ErrDuplicateReference):
			// Raced double check-in lost against the ledger's unique key.
			response.TooManyRequests(w, "already checked in today")
		case errors.Is(err, catalog.ErrTaskNotFound), errors.Is(err, catalog.ErrAdNotFound), errors.Is(err, catalog.ErrInactive):
			response.NotFound(w, "catalog item not found")
		case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrMissingItemID):
			response.BadRequest(w, err.Error())
		case errors.Is(err, account.ErrAccountNotFound):
			response.NotFound(w, "account not found")
		case errors.Is(err, account.ErrConcurrencyConflict):
			response.Conflict(w, "account is busy, retry the request")
		default:
			log.Error().Err(err).Str("account_id", userID.String()).Str("kind", req.Kind).Msg("activity settlement failed")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, res)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/activity", h.SettleActivity)
	return r
}
