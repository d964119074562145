package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"
)

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserName       string `json:"user_name" validate:"required"`
		Email          string `json:"email" validate:"omitempty,email"`
		PhoneNumber    string `json:"phone_number"`
		Role           string `json:"role"`
		Password       string `json:"password" validate:"required"`
		RetypePassword string `json:"retype_password" validate:"required"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	user := core.User{
		UserName:    req.UserName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
	}
	id, err := h.users.Create(r.Context(), user, req.Password, req.RetypePassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{
		"message": "user created",
		"userId":  id,
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid user id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid user id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var user core.User
	if !decodeJSON(w, r, &user) {
		return
	}
	if err := h.users.Update(r.Context(), id, user); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "user updated"})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid user id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "user deleted"})
}

// saveUserRoles handles POST /save-user-roles: user type ensure plus per-menu
// grant upserts, one transaction.
func (h *Handler) saveUserRoles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserType    string                         `json:"user_type" validate:"required"`
		Permissions map[string]core.MenuPermission `json:"permissions" validate:"required,min=1"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.users.SaveRolePermissions(r.Context(), req.UserType, req.Permissions); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "user roles saved"})
}

func (h *Handler) listUserTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.users.ListUserTypes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, types)
}

func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	userTypeID, ok := urlParamInt(r, "user_type_id")
	if !ok {
		writeError(w, r, "invalid user type id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	permissions, err := h.users.GetPermissions(r.Context(), userTypeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"permissions": permissions})
}
