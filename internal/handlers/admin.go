package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tenderhub/models"
)

// ListUsersHandler возвращает всех пользователей (только Admin)
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleAdmin, user.Role); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	users, err := h.Store.GetUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateUserHandler меняет роль пользователя (только Admin).
// Собственную учетную запись администратор менять не может.
func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleAdmin, user.Role); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	userID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid userId")
		return
	}
	if userID == user.UserID {
		writeError(w, http.StatusForbidden, "Cannot modify your own account")
		return
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	defer r.Body.Close()

	if !models.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Invalid role value")
		return
	}

	if err := h.Store.UpdateUserRole(r.Context(), userID, req.Role); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
}

// DeleteUserHandler удаляет пользователя (только Admin).
// Удалить самого себя нельзя.
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleAdmin, user.Role); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	userID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid userId")
		return
	}
	if userID == user.UserID {
		writeError(w, http.StatusForbidden, "Cannot delete your own account")
		return
	}

	if err := h.Store.DeleteUser(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
