package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
}

var orgProvisionCmd = &cobra.Command{
	Use:   "provision [org-id]",
	Short: "Create the personnel and compensation tables of an organization",
	Long: `Creates the per-organization record tables if they do not exist yet.
Organization ids may contain lower-case letters, digits and underscores.`,
	Args: cobra.ExactArgs(1),
	RunE: runOrgProvision,
}

func init() {
	orgCmd.AddCommand(orgProvisionCmd)
	rootCmd.AddCommand(orgCmd)
}

func runOrgProvision(cmd *cobra.Command, args []string) error {
	if orgService == nil {
		return errors.New("org service not configured")
	}
	if err := orgService.Provision(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("provisioning failed: %w", err)
	}
	cmd.Printf("Organization %s provisioned.\n", args[0])
	return nil
}
