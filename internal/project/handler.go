package project

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal/confirm"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/transport"
)

type ServiceAPI interface {
	ListVisible(ctx context.Context, actor domain.Actor) ([]domain.Project, error)
	Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Project, error)
	Create(ctx context.Context, actor domain.Actor, dto CreateProjectDTO) (*domain.Project, error)
	Update(ctx context.Context, actor domain.Actor, id int64, dto UpdateProjectDTO) (*domain.Project, error)
	ProposeDelete(ctx context.Context, actor domain.Actor, id int64) (*confirm.Token, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	projects, err := h.Service.ListVisible(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", projects)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", p)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var dto CreateProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusCreated, "Project created", p)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	p, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "Project updated", p)
}

// DeleteProject handles DELETE /projects/{id}. Nothing is removed until the
// returned token is committed.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
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
