package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/earnzy/earnzy-api/internal/middleware"
	"github.com/earnzy/earnzy-api/internal/pkg/response"
	"github.com/earnzy/earnzy-api/internal/pkg/validator"
)

// ReferralRecorder records a signup that arrived through a referral code.
// Implemented by the referral service; failures must not fail the signup.
type ReferralRecorder interface {
	RecordSignup(ctx context.Context, code string, referredID uuid.UUID, referredName string) error
}

type Handler struct {
	svc       *Service
	referrals ReferralRecorder
}

func NewHandler(svc *Service, referrals ReferralRecorder) *Handler {
	return &Handler{svc: svc, referrals: referrals}
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

	acc, err := h.svc.Create(r.Context(), userID, req.Mobile, req.DeviceID)
	if err != nil {
		if errors.Is(err, ErrAccountExists) {
			response.Conflict(w, "account already exists")
			return
		}
		response.InternalError(w)
		return
	}

	if req.ReferralCode != "" && h.referrals != nil {
		// Best effort: a bad code never fails the signup.
		_ = h.referrals.RecordSignup(r.Context(), req.ReferralCode, userID, req.Mobile)
	}

	response.Created(w, NewSummary(acc))
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.GetSummary(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, "account not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, summary)
}

func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	acc, err := h.svc.RegisterDevice(r.Context(), id, req.DeviceID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, "account not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"device_ids": acc.DeviceIDs})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	txns, total, err := h.svc.ListTransactions(r.Context(), id, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := offset/limit + 1
	pages := (total + limit - 1) / limit
	response.WithMeta(w, txns, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: offset+limit < total,
		HasPrev: offset > 0,
	})
}

// accountID resolves the target account from the path and checks it against
// the authenticated subject. Users only ever act on their own ledger.
func (h *Handler) accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return uuid.Nil, false
	}

	raw := chi.URLParam(r, "id")
	if raw == "" || raw == "me" {
		return userID, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "invalid account id")
		return uuid.Nil, false
	}
	if id != userID {
		response.Forbidden(w, "cannot access another account")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/{id}/summary", h.Summary)
	r.Get("/{id}/transactions", h.ListTransactions)
	r.Post("/{id}/devices", h.RegisterDevice)
	return r
}
