package department

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal/confirm"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.Department, error)
	Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Department, error)
	Create(ctx context.Context, actor domain.Actor, dto CreateDepartmentDTO) (*domain.Department, error)
	Update(ctx context.Context, actor domain.Actor, id int64, dto UpdateDepartmentDTO) (*domain.Department, error)
	ProposeManagerChange(ctx context.Context, actor domain.Actor, id int64, dto ManagerChangeDTO) (*confirm.Token, error)
	ProposeDelete(ctx context.Context, actor domain.Actor, id int64) (*confirm.Token, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	departments, err := h.Service.List(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", departments)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", d)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var dto CreateDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	d, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusCreated, "Department created", d)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	d, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "Department updated", d)
}

// ProposeManagerChange handles POST /departments/{id}/manager-proposals
func (h *Handler) ProposeManagerChange(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto ManagerChangeDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	token, err := h.Service.ProposeManagerChange(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusAccepted, token.Action.Summary, token)
}

// ProposeDelete handles POST /departments/{id}/delete-proposals
func (h *Handler) ProposeDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	token, err := h.Service.ProposeDelete(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusAccepted, token.Action.Summary, token)
}
