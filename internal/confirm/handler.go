package confirm

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timesheet-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Manager *Manager
}

func NewHandler(base *transport.BaseHandler, m *Manager) *Handler {
	return &Handler{BaseHandler: base, Manager: m}
}

// Commit handles POST /confirmations/{token}
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	result, err := h.Manager.Commit(r.Context(), actor, chi.URLParam(r, "token"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "Confirmed", result)
}
