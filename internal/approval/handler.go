package approval

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/transport"
)

type ServiceAPI interface {
	Decide(ctx context.Context, actor domain.Actor, id int64, dto StatusDTO) (*domain.TimesheetEntry, error)
	StatsFor(ctx context.Context, actor domain.Actor, managerID int64) (*ManagerStats, error)
	PendingFor(ctx context.Context, actor domain.Actor) ([]domain.TimesheetEntry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

// UpdateStatus handles PUT /approvals/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto StatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	entry, err := h.Service.Decide(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "Timesheet entry "+string(entry.ApprovalStatus), entry)
}

// ListPending handles GET /approvals/pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.PendingFor(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", entries)
}

// ManagerStats handles GET /managers/{id}/stats
func (h *Handler) ManagerStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	managerID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.Service.StatsFor(r.Context(), actor, managerID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", stats)
}
