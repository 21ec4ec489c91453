// Package oauth provides the loopback callback server used by CLI login.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// CompleteFunc finishes the handshake for a received code and state.
type CompleteFunc func(ctx context.Context, code, state string) error

// CallbackServer receives the ERP redirect on the loopback interface
// and hands the code and state to the authorization flow.
type CallbackServer struct {
	mu       sync.Mutex
	host     string
	port     string
	path     string
	complete CompleteFunc
	done     chan error
	server   *http.Server
	listener net.Listener
}

// NewCallbackServer creates a callback server for a loopback redirect URI
// such as http://localhost:8380/oauth/callback.
func NewCallbackServer(redirectURI string, complete CompleteFunc) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("%w: redirect uri: %v", domain.ErrInvalidInput, err)
	}
	host := u.Hostname()
	if host != "localhost" && host != "127.0.0.1" && host != "::1" {
		return nil, fmt.Errorf("%w: redirect uri %q is not a loopback address", domain.ErrInvalidInput, redirectURI)
	}
	port := u.Port()
	if port == "" {
		port = "80"
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return &CallbackServer{
		host:     host,
		port:     port,
		path:     path,
		complete: complete,
		done:     make(chan error, 1),
	}, nil
}

// Start starts listening. Port 0 picks a free port.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleCallback)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	addr := net.JoinHostPort(s.host, s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = fmt.Sprint(tcpAddr.Port)
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.finish(err)
		}
	}()

	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if errParam := q.Get("error"); errParam != "" {
		err := fmt.Errorf("%w: %s %s", domain.ErrTokenExchangeFailed, errParam, q.Get("error_description"))
		s.finish(err)
		_, _ = fmt.Fprint(w, resultHTML("Authorization failed", q.Get("error_description")))
		return
	}

	if err := s.complete(r.Context(), q.Get("code"), q.Get("state")); err != nil {
		s.finish(err)
		_, _ = fmt.Fprint(w, resultHTML("Authorization failed", err.Error()))
		return
	}

	s.finish(nil)
	_, _ = fmt.Fprint(w, resultHTML("Authorization successful", "You can close this window and return to the terminal."))
}

// finish records the first outcome only.
func (s *CallbackServer) finish(err error) {
	select {
	case s.done <- err:
	default:
	}
}

// Wait blocks until a callback completed or ctx ends.
func (s *CallbackServer) Wait(ctx context.Context) error {
	select {
	case err := <-s.done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Stop shuts down the callback server.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// URL returns the callback address the server listens on.
func (s *CallbackServer) URL() string {
	return "http://" + net.JoinHostPort(s.host, s.port) + s.path
}

func resultHTML(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>paybridge</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; display: flex;
               justify-content: center; align-items: center; height: 100vh; margin: 0; background: #FAFAFA; }
        .box { text-align: center; background: white; padding: 48px 64px; border-radius: 16px;
               border: 1px solid #C7C8CC; }
        h1 { color: #333F50; margin: 0 0 8px 0; font-size: 24px; }
        p { color: #7B8088; margin: 0; }
    </style>
</head>
<body>
    <div class="box">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(strings.TrimSpace(message)))
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
