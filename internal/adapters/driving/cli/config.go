package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings",
	Long: `View and change the settings stored in the configuration file.

Every key can be overridden by an environment variable named after it,
for example PAYBRIDGE_ERP_CLIENT_ID for erp.client_id.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored settings (secrets masked)",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a setting",
	Example: `  paybridge config set erp.api_base_url https://api.erp.example.com/v1
  paybridge config set push.orgs acme,globex`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Remove a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configSetSecretCmd = &cobra.Command{
	Use:   "set-secret [key]",
	Short: "Store a secret read from the terminal without echo",
	Example: `  paybridge config set-secret erp.client_secret
  echo "$SECRET" | paybridge config set-secret http.session_secret`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetSecret,
}

var configJSON bool

// secretInput is where set-secret reads from.
var secretInput io.Reader = os.Stdin

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "output settings as JSON")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configSetSecretCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	entries := settingsService.Entries()
	if configJSON {
		return outputJSON(cmd, entries)
	}

	cmd.Println(titleStyle.Render("Settings") + " " + mutedStyle.Render(settingsService.Path()))
	if len(entries) == 0 {
		cmd.Println("No settings stored. Use 'paybridge config set'.")
	}
	for _, e := range entries {
		cmd.Printf("  %-28s %s\n", e.Key, e.Value)
	}

	cmd.Println()
	reportMissing(cmd, "OAuth login", settingsService.ValidateOAuth())
	reportMissing(cmd, "Record push", settingsService.ValidatePush())
	return nil
}

func reportMissing(cmd *cobra.Command, what string, err error) {
	if err == nil {
		cmd.Printf("%s %s ready\n", successStyle.Render("✓"), what)
		return
	}
	cmd.Printf("%s %s: %v\n", warningStyle.Render("!"), what, err)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key, value := strings.TrimSpace(args[0]), args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key := strings.TrimSpace(args[0])
	if err := settingsService.Set(key, nil); err != nil {
		return fmt.Errorf("removing setting: %w", err)
	}
	cmd.Printf("Removed %s\n", key)
	return nil
}

func runConfigSetSecret(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key := strings.TrimSpace(args[0])

	cmd.Printf("Enter value for %s: ", key)
	secret, err := readSecret(secretInput)
	cmd.Println()
	if err != nil {
		return fmt.Errorf("reading secret: %w", err)
	}
	if secret == "" {
		return errors.New("empty value, nothing stored")
	}

	if err := settingsService.Set(key, secret); err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

// readSecret reads without echo from a terminal, or one line otherwise.
func readSecret(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
