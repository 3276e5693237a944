package v1

import (
	"net/http"

	"github.com/clinic-thoughts/dto"
	"github.com/clinic-thoughts/middleware"
	"github.com/gin-gonic/gin"
)

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Registration failed")
		return
	}

	success(c, http.StatusCreated, "User registered successfully", user)
}

// Login handles user authentication
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	authResponse, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Authentication failed")
		return
	}

	// Token also goes out as an HttpOnly cookie for browser clients
	c.SetCookie(
		middleware.TokenCookie,
		authResponse.Token,
		86400,
		"/",
		"",
		true,
		true,
	)

	success(c, http.StatusOK, "", authResponse)
}

// Logout clears the session cookie
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", true, true)
	success(c, http.StatusOK, "Logged out successfully", nil)
}

// GetCurrentUser returns the currently authenticated user's profile
func (h *Handler) GetCurrentUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), actor.UserID)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve user profile")
		return
	}

	success(c, http.StatusOK, "", user)
}
