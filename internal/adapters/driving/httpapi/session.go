package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

const (
	sessionName = "paybridge"
	sessionKey  = "sid"
	// sessionMaxAge keeps the cookie for 30 days.
	sessionMaxAge = 30 * 24 * 60 * 60
)

func cookieOptions() *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// currentSession returns the session id stored in the cookie, or "" if the
// browser has none yet.
func currentSession(c echo.Context) domain.SessionID {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[sessionKey].(string)
	return domain.SessionID(id)
}

// ensureSession returns the cookie's session id, issuing a new one if needed.
func ensureSession(c echo.Context) (domain.SessionID, error) {
	if id := currentSession(c); id != "" {
		return id, nil
	}

	// A cookie that fails verification is replaced.
	sess, err := session.Get(sessionName, c)
	if sess == nil {
		return "", err
	}
	sess.Options = cookieOptions()
	id := uuid.NewString()
	sess.Values = map[any]any{sessionKey: id}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", err
	}
	return domain.SessionID(id), nil
}
