package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/clinic-thoughts/middleware"
	"github.com/clinic-thoughts/services"
	"github.com/clinic-thoughts/storage"
	"github.com/gin-gonic/gin"
)

// statusFor maps service and storage errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, services.ErrClinicNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrDuplicate),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, storage.ErrSetupComplete):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Internal errors are logged and
// their details withheld from the client.
func (h *Handler) respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	body := gin.H{
		"status":  "error",
		"message": message,
	}
	if status == http.StatusInternalServerError {
		h.log.Error(message, "error", err, "path", c.Request.URL.Path)
	} else {
		body["error"] = err.Error()
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string, err error) {
	body := gin.H{
		"status":  "error",
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func success(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// currentActor returns the caller set by AuthMiddleware, answering 401
// when it is missing
func currentActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "User not authenticated",
		})
	}
	return actor, ok
}

// pathID parses the :id route parameter, answering 400 when malformed
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid id", nil)
		return 0, false
	}
	return uint(id), true
}
