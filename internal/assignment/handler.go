package assignment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/transport"
)

type ServiceAPI interface {
	Assign(ctx context.Context, actor domain.Actor, projectID int64, dto AssignDTO) (*domain.ProjectAssignment, error)
	UpdateRole(ctx context.Context, actor domain.Actor, projectID, userID int64, dto UpdateRoleDTO) (*domain.ProjectAssignment, error)
	Unassign(ctx context.Context, actor domain.Actor, projectID, userID int64) error
	AssignMany(ctx context.Context, actor domain.Actor, projectID int64, dto BatchAssignDTO) ([]Result, error)
	AssignedProjectsFor(ctx context.Context, actor domain.Actor, userID int64) ([]domain.Project, error)
	ListForUser(ctx context.Context, actor domain.Actor, userID int64) ([]domain.ProjectAssignment, error)
	ListForProject(ctx context.Context, actor domain.Actor, projectID int64) ([]AssignedUser, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

// ListProjectAssignments handles GET /projects/{id}/assignments
func (h *Handler) ListProjectAssignments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	projectID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	users, err := h.Service.ListForProject(r.Context(), actor, projectID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", users)
}

// GetAssignment handles GET /projects/{id}/assignments/{userId}
func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	projectID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.PathID(w, r, "userId")
	if !ok {
		return
	}

	users, err := h.Service.ListForProject(r.Context(), actor, projectID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	for _, u := range users {
		if u.UserID == userID {
			h.WriteData(w, http.StatusOK, "", u)
			return
		}
	}
	h.WriteError(w, http.StatusNotFound, "Assignment not found")
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	projectID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto AssignDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	a, err := h.Service.Assign(r.Context(), actor, projectID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusCreated, "User assigned", a)
}

// AssignBatch handles POST /projects/{id}/assignments/batch. The response is
// 200 even when some items failed; each result carries its own error.
func (h *Handler) AssignBatch(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	projectID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto BatchAssignDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	results, err := h.Service.AssignMany(r.Context(), actor, projectID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", results)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	projectID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.PathID(w, r, "userId")
	if !ok {
		return
	}

	var dto UpdateRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	a, err := h.Service.UpdateRole(r.Context(), actor, projectID, userID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "Role updated", a)
}

func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	projectID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.PathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.Service.Unassign(r.Context(), actor, projectID, userID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "User unassigned", nil)
}

// ListUserAssignments handles GET /users/{id}/assignments
func (h *Handler) ListUserAssignments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	userID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	assignments, err := h.Service.ListForUser(r.Context(), actor, userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", assignments)
}

// ListUserProjects handles GET /users/{id}/projects
func (h *Handler) ListUserProjects(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}
	userID, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	projects, err := h.Service.AssignedProjectsFor(r.Context(), actor, userID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteData(w, http.StatusOK, "", projects)
}
