package withdrawal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/earnzy/earnzy-api/internal/domain/account"
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	wd, err := h.svc.Create(r.Context(), userID, req.Amount, req.Method, req.Detail)
	if err != nil {
		switch {
		case errors.Is(err, ErrAmountTooSmall):
			response.BadRequest(w, err.Error())
		case errors.Is(err, account.ErrInsufficientBalance):
			response.BadRequest(w, "insufficient balance")
		case errors.Is(err, account.ErrAccountNotFound):
			response.NotFound(w, "account not found")
		default:
			log.Error().Err(err).Str("account_id", userID.String()).Msg("withdrawal creation failed")
			response.InternalError(w)
		}
		return
	}
	response.Created(w, wd)
}

// Complete is invoked by the payout backoffice once money actually moved.
// Redelivery is answered with the idempotent success shape.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid withdrawal id")
		return
	}

	wd, err := h.svc.Complete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(w, "withdrawal not found")
		case errors.Is(err, ErrAlreadyProcessed):
			response.OK(w, map[string]string{"status": "already processed"})
		case errors.Is(err, ErrInvalidTransition):
			response.Conflict(w, err.Error())
		case errors.Is(err, account.ErrInsufficientBalance):
			response.Conflict(w, "insufficient balance at completion")
		default:
			log.Error().Err(err).Str("withdrawal_id", id.String()).Msg("withdrawal completion failed")
			response.InternalError(w)
		}
		return
	}
	response.OK(w, wd)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ws, err := h.svc.ListByAccount(r.Context(), userID, limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list withdrawals")
		response.InternalError(w)
		return
	}
	response.OK(w, ws)
}
