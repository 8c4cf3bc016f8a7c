package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/earnzy/earnzy-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListActiveTasks(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list tasks")
		response.InternalError(w)
		return
	}
	response.OK(w, tasks)
}

func (h *Handler) ListAds(w http.ResponseWriter, r *http.Request) {
	ads, err := h.svc.ListActiveAds(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list ads")
		response.InternalError(w)
		return
	}
	response.OK(w, ads)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetActiveTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrInactive):
			response.NotFound(w, "task not found")
		default:
			log.Error().Err(err).Msg("failed to load task")
			response.InternalError(w)
		}
		return
	}
	response.OK(w, t)
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Get("/ads", h.ListAds)
	return r
}
