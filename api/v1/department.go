package v1

import (
	"net/http"

	"github.com/clinic-thoughts/dto"
	"github.com/gin-gonic/gin"
)

// ListDepartments returns the caller's clinic departments in order
func (h *Handler) ListDepartments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	departments, err := h.clinics.Departments(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve departments")
		return
	}
	success(c, http.StatusOK, "", departments)
}

// AddDepartment appends a department to the clinic
func (h *Handler) AddDepartment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	departments, err := h.clinics.AddDepartment(c.Request.Context(), actor, req.Name)
	if err != nil {
		h.respondError(c, err, "Failed to add department")
		return
	}
	success(c, http.StatusCreated, "Department added successfully", departments)
}

// RenameDepartment renames a department and moves its thoughts along
func (h *Handler) RenameDepartment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.RenameDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	departments, err := h.clinics.RenameDepartment(c.Request.Context(), actor, req.OldName, req.NewName)
	if err != nil {
		h.respondError(c, err, "Failed to rename department")
		return
	}
	success(c, http.StatusOK, "Department renamed successfully", departments)
}

// RemoveDepartment drops a department; its thoughts move to the first one left
func (h *Handler) RemoveDepartment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	departments, err := h.clinics.RemoveDepartment(c.Request.Context(), actor, c.Param("name"))
	if err != nil {
		h.respondError(c, err, "Failed to remove department")
		return
	}
	success(c, http.StatusOK, "Department removed successfully", departments)
}
