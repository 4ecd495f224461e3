package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bankelig/internal/errors"
	"bankelig/internal/middleware"
	"bankelig/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	sessions    service.SessionManager
	gate        *middleware.SessionGate
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, sessions service.SessionManager, gate *middleware.SessionGate) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		gate:        gate,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Fingerprint string `json:"fingerprint,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email           string  `json:"email" validate:"required,email"`
	Username        string  `json:"username" validate:"required,min=3,max=20,alphanum"`
	Password        string  `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string  `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       *string `json:"first_name,omitempty" validate:"omitempty,min=2,max=50"`
	LastName        *string `json:"last_name,omitempty" validate:"omitempty,min=2,max=50"`
}

// ForgotPasswordRequest represents a password reset request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents a password reset confirmation.
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Message   string      `json:"message"`
	User      interface{} `json:"user"`
	ReturnURL string      `json:"return_url"`
}

// Login godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	// Already authenticated callers just get sent on.
	if user := middleware.UserFromContext(c); user != nil {
		return c.JSON(http.StatusOK, LoginResponse{
			Message:   "already logged in",
			User:      user,
			ReturnURL: "/dashboard",
		})
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, req.Fingerprint, c.RealIP())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	h.gate.SetCookie(c, token)

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = "/dashboard"
	}
	return c.JSON(http.StatusOK, LoginResponse{
		Message:   "login successful",
		User:      user,
		ReturnURL: returnURL,
	})
}

// Logout godoc
// @Summary Log out the current session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := middleware.TokenFromContext(c); token != "" {
		h.sessions.Delete(c.Request().Context(), token)
	}
	h.gate.ClearCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "user registered successfully",
		"user":    user,
	})
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Always reports success so the endpoint cannot be used to enumerate
	// accounts.
	_ = h.authService.ForgotPassword(c.Request().Context(), req.Email)
	return c.JSON(http.StatusOK, map[string]string{
		"message": "if that email exists, a reset link has been sent",
	})
}

// ResetPassword godoc
// @Summary Set a new password from a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password has been reset"})
}

// VerifyEmail godoc
// @Summary Verify an email address
// @Tags auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	if err := h.authService.VerifyEmail(c.Request().Context(), token); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "email verified"})
}

// LoginPage godoc
// @Summary Login page endpoint; echoes the returnUrl for the client form
// @Tags auth
// @Produce json
// @Param returnUrl query string false "Where to go after login"
// @Success 200 {object} map[string]string
// @Router /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	returnURL := c.QueryParam("returnUrl")
	if returnURL == "" {
		returnURL = "/dashboard"
	}

	// Already logged in: skip the form.
	if middleware.UserFromContext(c) != nil {
		return c.Redirect(http.StatusFound, returnURL)
	}
	return c.JSON(http.StatusOK, map[string]string{"return_url": returnURL})
}
