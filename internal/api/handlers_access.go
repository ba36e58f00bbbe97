package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mailcraft/internal/access"
	"github.com/starford/mailcraft/internal/models"
)

// GetAccess handles GET /api/access.
//
//	@Summary		Get roles, users and current access levels
//	@Tags			access
//	@Produce		json
//	@Success		200	{object}	models.AccessState
//	@Security		BearerAuth
//	@Router			/access [get]
func (h *Handler) GetAccess(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.access.State())
}

// SetAdminMode handles PUT /api/access/admin-mode.
func (h *Handler) SetAdminMode(w http.ResponseWriter, r *http.Request) {
	var req AdminModeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.access.SetAdminMode(r.Context(), req.Enabled)
	writeJSON(w, http.StatusOK, h.access.State())
}

// SetAreaAccess handles PUT /api/access/areas/{area}.
func (h *Handler) SetAreaAccess(w http.ResponseWriter, r *http.Request) {
	var req AccessLevelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	area := models.Area(chi.URLParam(r, "area"))
	if err := h.access.SetAccess(r.Context(), area, req.Level); err != nil {
		writeError(w, "set access", err)
		return
	}
	writeJSON(w, http.StatusOK, h.access.State())
}

// AddRole handles POST /api/access/roles.
//
//	@Summary		Create a role
//	@Tags			access
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RoleRequest	true	"Role"
//	@Success		201		{object}	models.UserRole
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/access/roles [post]
func (h *Handler) AddRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role, err := h.access.AddRole(r.Context(), req.Name, req.Description, req.Permissions)
	if err != nil {
		writeError(w, "add role", err)
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

// UpdateRole handles PATCH /api/access/roles/{id}.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req RolePatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role, err := h.access.UpdateRole(r.Context(), chi.URLParam(r, "id"), access.RolePatch{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		writeError(w, "update role", err)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

// DeleteRole handles DELETE /api/access/roles/{id}. The admin role is
// refused with 409.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.access.DeleteRole(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyRole handles POST /api/access/roles/{id}/apply.
func (h *Handler) ApplyRole(w http.ResponseWriter, r *http.Request) {
	if err := h.access.ApplyRole(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "apply role", err)
		return
	}
	writeJSON(w, http.StatusOK, h.access.State())
}

// SetActiveRole handles PUT /api/access/active-role.
func (h *Handler) SetActiveRole(w http.ResponseWriter, r *http.Request) {
	var req ActiveRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.access.SetActiveRole(r.Context(), req.RoleID); err != nil {
		writeError(w, "set active role", err)
		return
	}
	writeJSON(w, http.StatusOK, h.access.State())
}

// AddUser handles POST /api/access/users.
//
//	@Summary		Create a user
//	@Tags			access
//	@Accept			json
//	@Produce		json
//	@Param			body	body		UserRequest	true	"User"
//	@Success		201		{object}	models.User
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/access/users [post]
func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.access.AddUser(r.Context(), req.Name, req.Email, req.RoleID)
	if err != nil {
		writeError(w, "add user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PATCH /api/access/users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UserPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.access.UpdateUser(r.Context(), chi.URLParam(r, "id"), access.UserPatch{
		Name:   req.Name,
		Email:  req.Email,
		RoleID: req.RoleID,
	})
	if err != nil {
		writeError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AssignRole handles PUT /api/access/users/{id}/role.
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req ActiveRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.access.AssignRole(r.Context(), chi.URLParam(r, "id"), req.RoleID); err != nil {
		writeError(w, "assign role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/access/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.access.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckPermission handles GET /api/access/users/{id}/permissions/{area}.
func (h *Handler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	area := models.Area(chi.URLParam(r, "area"))
	writeJSON(w, http.StatusOK, PermissionResponse{
		UserID:  id,
		Area:    area,
		Allowed: h.access.HasPermission(id, area),
	})
}
