package fraud

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/earnzy/earnzy-api/internal/pkg/response"
)

// LogReader reads flag audit rows. Satisfied by Repository.
type LogReader interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]LogEntry, error)
}

type Handler struct {
	store LogReader
}

func NewHandler(store LogReader) *Handler {
	return &Handler{store: store}
}

// ListByAccount serves the flag history for one account, newest first.
func (h *Handler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		response.BadRequest(w, "invalid account id")
		return
	}

	entries, err := h.store.ListByAccount(r.Context(), accountID, 50)
	if err != nil {
		log.Error().Err(err).Str("account_id", accountID.String()).Msg("failed to list fraud logs")
		response.InternalError(w)
		return
	}
	response.OK(w, entries)
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{accountID}", h.ListByAccount)
	return r
}
