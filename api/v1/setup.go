package v1

import (
	"net/http"

	"github.com/clinic-thoughts/dto"
	"github.com/gin-gonic/gin"
)

// SetupStatus reports whether first-time setup is still pending
func (h *Handler) SetupStatus(c *gin.Context) {
	needsSetup, err := h.setup.NeedsSetup(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to check setup status")
		return
	}
	success(c, http.StatusOK, "", gin.H{"needsSetup": needsSetup})
}

// SetupFirstAdmin creates the first clinic and its administrator
func (h *Handler) SetupFirstAdmin(c *gin.Context) {
	var req dto.SetupFirstAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	result, err := h.setup.Setup(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Setup failed")
		return
	}

	success(c, http.StatusCreated, "Setup completed successfully", result)
}
