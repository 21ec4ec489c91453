// Package httpapi exposes the OAuth, push and bank file endpoints over HTTP with echo.
// Every request is bound to a session id carried in a signed cookie.
package httpapi

import (
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	slogecho "github.com/samber/slog-echo"

	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// ErrMissingPorts is returned when a required driving port is not provided.
var ErrMissingPorts = errors.New("httpapi: auth, batch, salary, bank file and settings ports are required")

// Ports aggregates the driving ports the HTTP server calls.
type Ports struct {
	Auth     driving.AuthorizationFlow
	Batch    driving.BatchSync
	Salary   driving.SalaryService
	BankFile driving.BankFileService
	Settings driving.SettingsService
}

// Validate ensures all ports are set.
func (p *Ports) Validate() error {
	if p.Auth == nil || p.Batch == nil || p.Salary == nil || p.BankFile == nil || p.Settings == nil {
		return ErrMissingPorts
	}
	return nil
}

// Server routes HTTP requests to the driving ports.
type Server struct {
	ports *Ports
	echo  *echo.Echo
}

// NewServer builds the echo router. An empty sessionSecret generates a
// random key, so sessions do not survive a restart.
func NewServer(ports *Ports, sessionSecret string, log *slog.Logger) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	key := []byte(sessionSecret)
	if len(key) == 0 {
		logger.Warn("http.session_secret is not set; sessions end when the server restarts")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	store := sessions.NewCookieStore(key)
	store.Options = cookieOptions()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(slogecho.New(log))
	e.Use(session.Middleware(store))

	s := &Server{ports: ports, echo: e}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() {
	s.echo.GET("/healthz", health)

	oauth := s.echo.Group("/oauth")
	oauth.GET("/login", s.handleLogin)
	oauth.GET("/callback", s.handleCallback)
	oauth.POST("/refresh", s.handleRefresh)
	oauth.GET("/status", s.handleStatus)
	oauth.POST("/logout", s.handleLogout)

	erp := s.echo.Group("/erp")
	erp.POST("/:kind/:id/push", s.handlePushOne)
	erp.POST("/:kind/push-batch", s.handlePushBatch)

	orgs := s.echo.Group("/orgs")
	orgs.GET("/:org/salaries", s.handleSalaries)
	orgs.GET("/:org/bankfile", s.handleBankFile)
}

func health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
