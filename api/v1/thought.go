package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/clinic-thoughts/dto"
	"github.com/gin-gonic/gin"
)

// dateLayout is the calendar-day format of the startDate/endDate filters
const dateLayout = "2006-01-02"

// parseThoughtFilters reads the listing filters from the query string.
// Dates are calendar days in the server's local time zone.
func parseThoughtFilters(c *gin.Context) (dto.ThoughtFilters, bool, error) {
	var filters dto.ThoughtFilters

	if raw := c.Query("startDate"); raw != "" {
		start, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return filters, false, fmt.Errorf("startDate: %w", err)
		}
		filters.StartDate = &start
	}
	if raw := c.Query("endDate"); raw != "" {
		end, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return filters, false, fmt.Errorf("endDate: %w", err)
		}
		filters.EndDate = &end
	}
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filters, false, fmt.Errorf("userId: %w", err)
		}
		userID := uint(id)
		filters.UserID = &userID
	}
	if raw := c.Query("department"); raw != "" {
		filters.Department = &raw
	}
	if raw := c.Query("includeRead"); raw != "" {
		includeRead, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, false, fmt.Errorf("includeRead: %w", err)
		}
		filters.IncludeRead = &includeRead
	}

	includeDeleted := false
	if raw := c.Query("includeDeleted"); raw != "" {
		var err error
		includeDeleted, err = strconv.ParseBool(raw)
		if err != nil {
			return filters, false, fmt.Errorf("includeDeleted: %w", err)
		}
	}
	return filters, includeDeleted, nil
}

// ListThoughts returns the caller's view of the clinic's thoughts
func (h *Handler) ListThoughts(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	filters, includeDeleted, err := parseThoughtFilters(c)
	if err != nil {
		badRequest(c, "Invalid filter", err)
		return
	}

	response, err := h.thoughts.List(c.Request.Context(), actor, includeDeleted, filters)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve thoughts")
		return
	}
	success(c, http.StatusOK, "", response)
}

// CreateThought submits a new thought
func (h *Handler) CreateThought(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.CreateThoughtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	thought, err := h.thoughts.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.respondError(c, err, "Failed to create thought")
		return
	}
	success(c, http.StatusCreated, "Thought submitted successfully", thought)
}

// GetThought returns a single thought
func (h *Handler) GetThought(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	thought, err := h.thoughts.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve thought")
		return
	}
	success(c, http.StatusOK, "", thought)
}

// UpdateThought edits a thought
func (h *Handler) UpdateThought(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.ThoughtUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	thought, err := h.thoughts.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.respondError(c, err, "Failed to update thought")
		return
	}
	success(c, http.StatusOK, "Thought updated successfully", thought)
}

// DeleteThought soft-deletes a thought
func (h *Handler) DeleteThought(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.thoughts.Delete(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err, "Failed to delete thought")
		return
	}
	success(c, http.StatusOK, "Thought deleted successfully", nil)
}

// MarkThoughtRead flags a thought as read
func (h *Handler) MarkThoughtRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.thoughts.MarkRead(c.Request.Context(), actor, id); err != nil {
		h.respondError(c, err, "Failed to mark thought as read")
		return
	}
	success(c, http.StatusOK, "Thought marked as read", nil)
}

// GetThoughtHistory returns a thought's change log, newest first
func (h *Handler) GetThoughtHistory(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	history, err := h.thoughts.History(c.Request.Context(), actor, id)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve thought history")
		return
	}
	success(c, http.StatusOK, "", history)
}

// UnreadCount returns the number of unread thoughts in the caller's clinic
func (h *Handler) UnreadCount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	count, err := h.thoughts.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		h.respondError(c, err, "Failed to count unread thoughts")
		return
	}
	success(c, http.StatusOK, "", gin.H{"unreadCount": count})
}
