package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paybridge/internal/adapters/driving/oauth"
	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/logger"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize paybridge against the ERP",
	Long: `Manage the ERP credential of the current session.

The credential is stored per session (see --session). Scheduled pushes and
MCP tools use the "cli" session unless configured otherwise.

Examples:
  paybridge auth login
  paybridge auth login --account-type service
  paybridge auth status
  paybridge auth refresh
  paybridge auth logout`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize through the browser",
	Long: `Opens the ERP authorization page and waits for the redirect on the
loopback address configured as erp.redirect_uri.`,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the session holds a usable credential",
	RunE:  runAuthStatus,
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a token refresh",
	RunE:  runAuthRefresh,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the session's credential",
	RunE:  runAuthLogout,
}

// Flags for auth login.
var (
	loginAccountType string
	loginNoBrowser   bool
	loginTimeout     time.Duration
)

func init() {
	authLoginCmd.Flags().StringVar(
		&loginAccountType, "account-type", "", "account type to request (empty or \"service\")")
	authLoginCmd.Flags().BoolVar(
		&loginNoBrowser, "no-browser", false, "print the authorization URL instead of opening a browser")
	authLoginCmd.Flags().DurationVar(
		&loginTimeout, "timeout", 5*time.Minute, "how long to wait for the authorization redirect")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)
	authCmd.AddCommand(authLogoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authFlow == nil || settingsService == nil {
		return errors.New("authorization flow not configured")
	}
	if err := settingsService.ValidateOAuth(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	sess := session()
	server, err := oauth.NewCallbackServer(settings.ERP.RedirectURI, func(ctx context.Context, code, state string) error {
		return authFlow.CompleteCallback(ctx, sess, code, state)
	})
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting callback server: %w", err)
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logger.Warn("stopping callback server: %v", err)
		}
	}()

	ctx := cmd.Context()
	authURL, err := authFlow.BeginLogin(ctx, session(), domain.AccountType(loginAccountType))
	if err != nil {
		return fmt.Errorf("starting login: %w", err)
	}

	logger.Debug("waiting for callback on %s", server.URL())
	if loginNoBrowser {
		cmd.Printf("Open this URL to authorize:\n  %s\n", authURL)
	} else {
		cmd.Println("Opening browser for authorization...")
		if err := oauth.OpenBrowser(authURL); err != nil {
			cmd.Printf("Could not open a browser. Open this URL instead:\n  %s\n", authURL)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	if err := server.Wait(waitCtx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Session %q authorized.\n", sess)
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authFlow == nil {
		return errors.New("authorization flow not configured")
	}
	status, err := authFlow.Status(cmd.Context(), session())
	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	if !status.Authorized {
		cmd.Printf("Session %q is not authorized. Run 'paybridge auth login'.\n", session())
		return nil
	}
	cmd.Printf("Session %q is authorized.\n", session())
	cmd.Printf("  Expires: %s (in %s)\n",
		status.Expiry().Local().Format(time.RFC3339),
		(time.Duration(status.ExpiresInMs) * time.Millisecond).Round(time.Second))
	return nil
}

func runAuthRefresh(cmd *cobra.Command, _ []string) error {
	if authFlow == nil {
		return errors.New("authorization flow not configured")
	}
	result, err := authFlow.Refresh(cmd.Context(), session())
	if err != nil {
		if errors.Is(err, domain.ErrAuthRequired) {
			return fmt.Errorf("refresh failed: %w (run 'paybridge auth login')", err)
		}
		return fmt.Errorf("refresh failed: %w", err)
	}
	cmd.Printf("Token refreshed. Expires %s.\n", result.Expiry().Local().Format(time.RFC3339))
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if authFlow == nil {
		return errors.New("authorization flow not configured")
	}
	if err := authFlow.Logout(cmd.Context(), session()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	cmd.Printf("Session %q logged out.\n", session())
	return nil
}
