package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bankelig/internal/auth"
	"bankelig/internal/config"
	"bankelig/internal/handler"
	"bankelig/internal/middleware"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	gate *middleware.SessionGate,
	limiter *auth.FixedWindowLimiter,
	authHandler *handler.AuthHandler,
	bankHandler *handler.BankHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(middleware.RateLimit(limiter))
	e.Use(gate.Authenticate())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public auth routes
	e.GET("/login", authHandler.LoginPage)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.GET("/auth/verify-email", authHandler.VerifyEmail)

	// Browser pages: unauthenticated requests redirect to /login with a
	// returnUrl back to the requested path.
	pages := e.Group("", gate.RequirePage())
	pages.GET("/dashboard", userHandler.Dashboard)

	// API routes: unauthenticated requests get 401 JSON, no sliding expiry.
	api := e.Group("/api", gate.RequireAPI())

	api.GET("/me", userHandler.Me)
	api.PUT("/profile", userHandler.UpdateProfile)
	api.POST("/profile/password", userHandler.ChangePassword)

	api.GET("/banks", bankHandler.List)
	api.POST("/banks", bankHandler.Create)
	api.GET("/banks/:id", bankHandler.Get)
	api.PUT("/banks/:id", bankHandler.Update)
	api.DELETE("/banks/:id", bankHandler.Delete)
	api.POST("/banks/:id/restore", bankHandler.Restore)
	api.GET("/banks/:id/history", bankHandler.History)

	// Admin routes
	admin := api.Group("", gate.RequireAdmin())
	admin.GET("/users", userHandler.List)
	admin.POST("/users/:id/deactivate", userHandler.Deactivate)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
