package v1

import (
	"net/http"

	"github.com/clinic-thoughts/dto"
	"github.com/gin-gonic/gin"
)

// ListClinics lists every clinic for the registration form
func (h *Handler) ListClinics(c *gin.Context) {
	clinics, err := h.clinics.ListPublic(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to retrieve clinics")
		return
	}
	success(c, http.StatusOK, "", clinics)
}

// GetClinic returns the caller's clinic
func (h *Handler) GetClinic(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	clinic, err := h.clinics.Get(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve clinic")
		return
	}
	success(c, http.StatusOK, "", clinic)
}

// UpdateClinic edits the caller's clinic
func (h *Handler) UpdateClinic(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.ClinicUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	clinic, err := h.clinics.Update(c.Request.Context(), actor, req)
	if err != nil {
		h.respondError(c, err, "Failed to update clinic")
		return
	}
	success(c, http.StatusOK, "Clinic updated successfully", clinic)
}
