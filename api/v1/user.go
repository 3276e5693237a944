package v1

import (
	"net/http"

	"github.com/clinic-thoughts/dto"
	"github.com/gin-gonic/gin"
)

// ListUsers returns the members of the caller's clinic
func (h *Handler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	users, err := h.users.List(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve users")
		return
	}
	success(c, http.StatusOK, "", users)
}

// UpdateUser edits a user profile
func (h *Handler) UpdateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.respondError(c, err, "Failed to update user")
		return
	}
	success(c, http.StatusOK, "User updated successfully", user)
}

// DeleteUser removes a user; their thoughts are kept
func (h *Handler) DeleteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err, "Failed to delete user")
		return
	}
	success(c, http.StatusOK, "User deleted successfully", nil)
}
