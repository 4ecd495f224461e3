package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"bankelig/internal/auth"
	"bankelig/internal/errors"
	"bankelig/internal/model"
	"bankelig/internal/service"
)

const (
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "session"
	// FingerprintHeader optionally carries the client fingerprint bound into
	// the token at login.
	FingerprintHeader = "X-Client-Fingerprint"

	userContextKey  = "auth.user"
	tokenContextKey = "auth.token"
)

// SessionGate is the request-side of the session lifecycle: it extracts the
// cookie, validates it against the Session Manager and populates the request
// context. Guards built on top of it redirect pages or 401 API calls.
type SessionGate struct {
	sessions     service.SessionManager
	log          zerolog.Logger
	secureCookie bool
}

// NewSessionGate creates the gate middleware.
func NewSessionGate(sessions service.SessionManager, secureCookie bool, log zerolog.Logger) *SessionGate {
	return &SessionGate{
		sessions:     sessions,
		log:          log.With().Str("component", "gate").Logger(),
		secureCookie: secureCookie,
	}
}

// Authenticate resolves the session cookie on every request. Valid sessions
// put the user into the echo context; browsing (non-/api/) requests also get
// their session window extended. Invalid cookies are cleared so the browser
// stops sending them.
func (g *SessionGate) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			token := cookie.Value
			fingerprint := c.Request().Header.Get(FingerprintHeader)

			user, outcome := g.sessions.Validate(c.Request().Context(), token, fingerprint)
			if outcome != service.ValidateOK {
				g.log.Debug().Str("outcome", outcome.String()).Str("path", c.Path()).Msg("session rejected")
				g.ClearCookie(c)
				return next(c)
			}

			c.Set(userContextKey, user)
			c.Set(tokenContextKey, token)

			// Sliding expiration for browsing sessions; API callers keep the
			// fixed window from issuance.
			if !strings.HasPrefix(c.Request().URL.Path, "/api/") {
				g.sessions.Extend(c.Request().Context(), token)
			}

			return next(c)
		}
	}
}

// RequirePage guards browser-facing routes: unauthenticated requests are
// redirected to the login page with the original path as returnUrl.
func (g *SessionGate) RequirePage() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if UserFromContext(c) == nil {
				req := c.Request()
				returnURL := req.URL.Path
				if req.URL.RawQuery != "" {
					returnURL += "?" + req.URL.RawQuery
				}
				return c.Redirect(http.StatusFound, "/login?returnUrl="+url.QueryEscape(returnURL))
			}
			return next(c)
		}
	}
}

// RequireAPI guards API routes: unauthenticated requests get 401 JSON.
func (g *SessionGate) RequireAPI() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if UserFromContext(c) == nil {
				return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "authentication required",
					Code:  "UNAUTHENTICATED",
				})
			}
			return next(c)
		}
	}
}

// RequireAdmin guards admin-only routes. It assumes an authentication guard
// already ran.
func (g *SessionGate) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFromContext(c)
			if user == nil || !user.IsAdmin() {
				return c.JSON(http.StatusForbidden, errors.ErrorResponse{
					Error: "admin access required",
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// SetCookie issues the session cookie.
func (g *SessionGate) SetCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   g.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie removes the session cookie.
func (g *SessionGate) ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

// TokenFromContext returns the raw session token of the authenticated
// request, or "".
func TokenFromContext(c echo.Context) string {
	token, _ := c.Get(tokenContextKey).(string)
	return token
}
