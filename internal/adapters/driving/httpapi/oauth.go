package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// handleLogin issues a state and redirects the browser to the ERP.
func (s *Server) handleLogin(c echo.Context) error {
	sess, err := ensureSession(c)
	if err != nil {
		return writeError(c, err)
	}

	authURL, err := s.ports.Auth.BeginLogin(c.Request().Context(), sess, domain.AccountType(c.QueryParam("accountType")))
	if err != nil {
		return writeError(c, err)
	}
	return c.Redirect(http.StatusFound, authURL)
}

// handleCallback completes the handshake and redirects back to the app.
func (s *Server) handleCallback(c echo.Context) error {
	if denied := c.QueryParam("error"); denied != "" {
		logger.Warn("Authorization denied: %s %s", denied, c.QueryParam("error_description"))
		return c.Redirect(http.StatusFound, s.appRedirect("error", denied))
	}

	sess, err := ensureSession(c)
	if err != nil {
		return writeError(c, err)
	}

	err = s.ports.Auth.CompleteCallback(c.Request().Context(), sess, c.QueryParam("code"), c.QueryParam("state"))
	if err != nil {
		logger.Warn("OAuth callback failed: %v", err)
		return c.Redirect(http.StatusFound, s.appRedirect("error", errorCode(err)))
	}
	return c.Redirect(http.StatusFound, s.appRedirect("success", ""))
}

// appRedirect builds erp.app_url with the auth outcome appended.
func (s *Server) appRedirect(outcome, code string) string {
	target := "/"
	if settings, err := s.ports.Settings.Get(); err == nil && settings.ERP.AppURL != "" {
		target = settings.ERP.AppURL
	}

	u, err := url.Parse(target)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("auth", outcome)
	if code != "" {
		q.Set("code", code)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// handleRefresh forces a refresh grant for the session.
func (s *Server) handleRefresh(c echo.Context) error {
	sess := currentSession(c)
	if sess == "" {
		return writeError(c, domain.ErrAuthRequired)
	}
	result, err := s.ports.Auth.Refresh(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// handleStatus reports whether the session holds a usable credential.
func (s *Server) handleStatus(c echo.Context) error {
	sess := currentSession(c)
	if sess == "" {
		return c.JSON(http.StatusOK, &domain.AuthStatus{})
	}
	status, err := s.ports.Auth.Status(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// handleLogout clears the session's credential.
func (s *Server) handleLogout(c echo.Context) error {
	sess := currentSession(c)
	if sess != "" {
		if err := s.ports.Auth.Logout(c.Request().Context(), sess); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return writeError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"loggedOut": true})
}
