// Package cli provides the cobra command tree of the paybridge binary.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
	"github.com/custodia-labs/paybridge/internal/logger"
)

var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

// Options are the global flags shared by every command.
type Options struct {
	DataDir string
	Session domain.SessionID
	Verbose bool
	// Memory keeps records, credentials and states in process memory.
	Memory bool
}

// Services holds the driving ports the commands call.
type Services struct {
	Settings driving.SettingsService
	Auth     driving.AuthorizationFlow
	Batch    driving.BatchSync
	Salary   driving.SalaryService
	BankFile driving.BankFileService
	Org      driving.OrgService
	Serve    *ServeConfig
	// Close releases stores and connections after the command ran.
	Close func() error
}

// BootstrapFunc builds the services for the parsed global options.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	globalOpts    Options
	sessionFlag   string
	bootstrap     BootstrapFunc
	closeServices func() error
)

var (
	settingsService driving.SettingsService
	authFlow        driving.AuthorizationFlow
	batchSync       driving.BatchSync
	salaryService   driving.SalaryService
	bankFileService driving.BankFileService
	orgService      driving.OrgService
	serveConfig     *ServeConfig
)

var rootCmd = &cobra.Command{
	Use:   "paybridge",
	Short: "Payroll export pipeline for the ERP",
	Long: `paybridge pushes personnel and compensation records to the ERP,
computes unpaid salaries and exports them as ISO 20022 payment files.

Authorize once with 'paybridge auth login', then push records with
'paybridge push' or run 'paybridge serve' for the HTTP endpoints.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "print debug output")
	rootCmd.PersistentFlags().StringVar(
		&sessionFlag, "session", string(domain.DefaultPushSession), "session that owns the ERP credential")
	rootCmd.PersistentFlags().StringVar(&globalOpts.DataDir, "data-dir", "", "data directory (default ~/.paybridge)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.Memory, "memory", false, "use ephemeral in-memory stores")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs the driving ports used by the commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	settingsService = s.Settings
	authFlow = s.Auth
	batchSync = s.Batch
	salaryService = s.Salary
	bankFileService = s.BankFile
	orgService = s.Org
	serveConfig = s.Serve
	closeServices = s.Close
}

// Execute runs the root command and releases the services it used.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := closeAll(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOpts.Verbose)
	globalOpts.Session = domain.SessionID(sessionFlag)
	if globalOpts.Session == "" {
		return errors.New("--session must not be empty")
	}

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}
	services, err := bootstrap(cmd.Context(), globalOpts)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	return nil
}

func closeAll() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// session returns the session id selected with --session.
func session() domain.SessionID {
	if globalOpts.Session == "" {
		return domain.DefaultPushSession
	}
	return globalOpts.Session
}
