package rest

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"asset-backend/app/config"
	"asset-backend/app/port"
	"asset-backend/app/rest/handlers"
	custommw "asset-backend/app/rest/middleware"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Logger         *slog.Logger
	Config         *config.Config
	SessionUsecase port.SessionUsecase
	UserUsecase    port.UserUsecase
	URLCodec       port.TokenCodec
	DatabaseCheck  handlers.HealthChecker
	EnableDebug    bool
}

// NewRouter creates and configures the Echo router
func NewRouter(rc RouterConfig) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.Debug = rc.EnableDebug

	// Create handlers
	authHandler := handlers.NewAuthHandler(rc.SessionUsecase, rc.URLCodec, rc.Config, rc.Logger)
	userHandler := handlers.NewUserHandler(rc.UserUsecase, rc.Logger)
	locationHandler := handlers.NewLocationHandler(rc.UserUsecase, rc.Logger)
	healthHandler := handlers.NewHealthHandler(rc.DatabaseCheck, rc.Logger)

	// Create middleware
	authMiddleware := custommw.NewAuthMiddleware(rc.SessionUsecase, rc.Config.SessionCookieName, rc.Config.CookieDomain, rc.Logger)
	rateLimiter := custommw.NewRateLimiter(rc.Config.RateLimitRPS, rc.Config.RateLimitBurst)

	// Global middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(custommw.CORSWithOrigins(rc.Config.RedirectBaseURL))
	e.Use(custommw.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())

	api := e.Group("/api")

	// Health endpoints (no auth required)
	api.GET("/health", healthHandler.HealthCheck)
	api.GET("/health/ready", healthHandler.ReadinessCheck)
	api.GET("/health/live", healthHandler.LivenessCheck)

	// Authentication endpoints. Verify is cookie-driven and performs its
	// own session handling, so none of these sit behind RequireSession.
	auth := api.Group("/auth")
	auth.POST("/verify", authHandler.Verify)
	auth.GET("/login", authHandler.Login)
	auth.GET("/logout", authHandler.Logout)
	auth.POST("/decrypt", authHandler.Decrypt)

	// User endpoints. Profile lookup and auto-registration are reachable
	// without a session: the client falls back to them when verification
	// fails, which is exactly when no usable cookie exists.
	users := api.Group("/users")
	users.GET("/by-email/:email", userHandler.GetUserByEmail)
	users.POST("/register-request", userHandler.RegisterRequest)

	// Administration requires a session; mutations require admin.
	usersProtected := users.Group("")
	usersProtected.Use(authMiddleware.RequireSession())
	usersProtected.GET("", userHandler.ListUsers)
	usersProtected.GET("/deleted", userHandler.ListDeletedUsers)
	usersProtected.GET("/:id", userHandler.GetUserByID)
	usersProtected.POST("", userHandler.CreateUser, authMiddleware.RequireAdmin())
	usersProtected.PUT("/:id", userHandler.UpdateUser, authMiddleware.RequireAdmin())
	usersProtected.DELETE("/:id", userHandler.DeleteUser, authMiddleware.RequireAdmin())
	usersProtected.POST("/:id/restore", userHandler.RestoreUser, authMiddleware.RequireAdmin())

	// Location reference data
	locations := api.Group("/locations")
	locations.Use(authMiddleware.RequireSession())
	locations.GET("", locationHandler.ListLocations)

	return e
}
