package v1

import (
	"github.com/clinic-thoughts/logger"
	"github.com/clinic-thoughts/middleware"
	"github.com/clinic-thoughts/services"
	"github.com/clinic-thoughts/storage"
	"github.com/gin-gonic/gin"
)

// Handler serves the v1 API on top of a Storage backend
type Handler struct {
	auth     *services.AuthService
	setup    *services.SetupService
	thoughts *services.ThoughtService
	clinics  *services.ClinicService
	users    *services.UserService
	accounts middleware.UserLookup
	log      *logger.Logger
}

// NewHandler wires the services for store
func NewHandler(store storage.Storage, jwtSecret string, log *logger.Logger) *Handler {
	log = log.With("component", "api")
	return &Handler{
		auth:     services.NewAuthService(store, jwtSecret, log),
		setup:    services.NewSetupService(store, log),
		thoughts: services.NewThoughtService(store, log),
		clinics:  services.NewClinicService(store, log),
		users:    services.NewUserService(store, log),
		accounts: store,
		log:      log,
	}
}

// RegisterRoutes registers all v1 API routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.auth, h.accounts)
	requireAdmin := middleware.AdminMiddleware()

	router.GET("/health", h.HealthCheck)

	// Public endpoints
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", requireAuth, h.GetCurrentUser)
	}

	setupGroup := router.Group("/setup")
	{
		setupGroup.GET("/status", h.SetupStatus)
		setupGroup.POST("", h.SetupFirstAdmin)
	}

	router.GET("/clinics", h.ListClinics)

	// Everything below requires a session
	authed := router.Group("")
	authed.Use(requireAuth)

	thoughtGroup := authed.Group("/thoughts")
	{
		thoughtGroup.GET("", h.ListThoughts)
		thoughtGroup.POST("", h.CreateThought)
		thoughtGroup.GET("/:id", h.GetThought)
		thoughtGroup.PUT("/:id", requireAdmin, h.UpdateThought)
		thoughtGroup.DELETE("/:id", requireAdmin, h.DeleteThought)
		thoughtGroup.POST("/:id/read", requireAdmin, h.MarkThoughtRead)
		thoughtGroup.GET("/:id/history", requireAdmin, h.GetThoughtHistory)
	}

	departmentGroup := authed.Group("/departments")
	{
		departmentGroup.GET("", h.ListDepartments)
		departmentGroup.POST("", requireAdmin, h.AddDepartment)
		departmentGroup.PUT("", requireAdmin, h.RenameDepartment)
		departmentGroup.DELETE("/:name", requireAdmin, h.RemoveDepartment)
	}

	clinicGroup := authed.Group("/clinic")
	{
		clinicGroup.GET("", h.GetClinic)
		clinicGroup.PUT("", requireAdmin, h.UpdateClinic)
		clinicGroup.GET("/unread-count", requireAdmin, h.UnreadCount)
	}

	userGroup := authed.Group("/users")
	{
		userGroup.GET("", requireAdmin, h.ListUsers)
		userGroup.PUT("/:id", h.UpdateUser)
		userGroup.DELETE("/:id", requireAdmin, h.DeleteUser)
	}
}
