package timesheet

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor domain.Actor, dto EntryDTO) (*domain.TimesheetEntry, error)
	Update(ctx context.Context, actor domain.Actor, id int64, patch PatchDTO) (*domain.TimesheetEntry, error)
	Delete(ctx context.Context, actor domain.Actor, id int64) error
	Get(ctx context.Context, actor domain.Actor, id int64) (*domain.TimesheetEntry, error)
	ListForCurrentUser(ctx context.Context, actor domain.Actor) ([]domain.TimesheetEntry, error)
	ListForDate(ctx context.Context, actor domain.Actor, day domain.Date) ([]domain.TimesheetEntry, error)
	ListForDepartment(ctx context.Context, actor domain.Actor, departmentID int64) ([]domain.TimesheetEntry, error)
	StatsFor(ctx context.Context, actor domain.Actor) (*Stats, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

// ListMine handles GET /timesheets, narrowed to one day by ?date=YYYY-MM-DD.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var (
		entries []domain.TimesheetEntry
		err     error
	)
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, parseErr := domain.ParseDate(raw)
		if parseErr != nil {
			h.HandleServiceError(w, r, internal.NewValidationFieldError("date", "date must be formatted as YYYY-MM-DD", internal.ErrCodeInvalidDate))
			return
		}
		entries, err = h.Service.ListForDate(r.Context(), actor, day)
	} else {
		entries, err = h.Service.ListForCurrentUser(r.Context(), actor)
	}
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", entries)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	entry, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", entry)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var dto EntryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	entry, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusCreated, "Timesheet entry created", entry)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var patch PatchDTO
	if err := h.DecodeJSON(r, &patch); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	entry, err := h.Service.Update(r.Context(), actor, id, patch)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "Timesheet entry updated", entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "Timesheet entry deleted", nil)
}

// MyStats handles GET /timesheets/me/stats
func (h *Handler) MyStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.StatsFor(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", stats)
}

// ListDepartment handles GET /departments/{id}/timesheets
func (h *Handler) ListDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	departmentID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.Service.ListForDepartment(r.Context(), actor, departmentID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", entries)
}
