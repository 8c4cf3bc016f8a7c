package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/earnzy/earnzy-api/internal/middleware"
	"github.com/earnzy/earnzy-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// webhookEvent is the Razorpay-style envelope delivered on payment capture.
// Amounts arrive in paise.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string `json:"id"`
				Amount int64  `json:"amount"`
				Notes  struct {
					UserID string `json:"userId"`
					PlanID string `json:"planId"`
				} `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	// TODO: verify X-Razorpay-Signature once the gateway webhook secret is provisioned.
	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		response.BadRequest(w, "invalid webhook payload")
		return
	}

	if event.Event != "payment.captured" {
		// Not ours; acknowledge so the gateway stops retrying.
		response.OK(w, map[string]string{"status": "ignored"})
		return
	}

	entity := event.Payload.Payment.Entity
	accountID, err := uuid.Parse(entity.Notes.UserID)
	if err != nil {
		response.BadRequest(w, "invalid userId in payment notes")
		return
	}

	amount := decimal.NewFromInt(entity.Amount).Div(decimal.NewFromInt(100))
	err = h.svc.SettlePayment(r.Context(), accountID, PlanID(entity.Notes.PlanID), entity.ID, amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrPlanNotFound), errors.Is(err, ErrPlanNotPayable):
			response.BadRequest(w, "unknown or non-payable plan")
		default:
			log.Error().Err(err).Str("payment_ref", entity.ID).Msg("payment settlement failed")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"status": "processed"})
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	response.OK(w, Plans())
}

// ListMine serves the caller's purchase history.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	recs, err := h.svc.History(r.Context(), userID, 20)
	if err != nil {
		log.Error().Err(err).Str("account_id", userID.String()).Msg("failed to list subscription history")
		response.InternalError(w)
		return
	}
	response.OK(w, recs)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/plans", h.ListPlans)
	r.With(authMiddleware).Get("/history", h.ListMine)
	return r
}

func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/payments", h.PaymentWebhook)
	return r
}
