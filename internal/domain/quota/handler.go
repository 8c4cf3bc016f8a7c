package quota

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/earnzy/earnzy-api/internal/pkg/response"
)

type Handler struct {
	resetter *Resetter
}

func NewHandler(resetter *Resetter) *Handler {
	return &Handler{resetter: resetter}
}

// RunDailyReset triggers the counter reset on demand. The scheduled run
// lives in the reset worker; this endpoint exists for operations.
func (h *Handler) RunDailyReset(w http.ResponseWriter, r *http.Request) {
	res, err := h.resetter.ResetDaily(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("manual daily reset failed")
		response.InternalError(w)
		return
	}
	response.OK(w, res)
}

// AdminRoutes is mounted behind the admin key.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/daily-reset", h.RunDailyReset)
	return r
}
