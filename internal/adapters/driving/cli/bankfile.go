package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

var bankfileCmd = &cobra.Command{
	Use:   "bankfile",
	Short: "Salary payment files",
}

var bankfileExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export unpaid salaries as a pain.001 payment file",
	Long: `Computes the organization's unpaid salaries and writes them as an
ISO 20022 pain.001.001.03 credit transfer file. Employees without a
positive net pay are left out.

The execution date defaults to the next pay day (the 25th).

Examples:
  paybridge bankfile export --org acme
  paybridge bankfile export --org acme --date 2024-06-25 --out ./files`,
	RunE: runBankfileExport,
}

var (
	bankfileOrg  string
	bankfileDate string
	bankfileOut  string
)

func init() {
	bankfileExportCmd.Flags().StringVar(&bankfileOrg, "org", "", "organization id")
	bankfileExportCmd.Flags().StringVar(&bankfileDate, "date", "", "execution date YYYY-MM-DD (default next pay day)")
	bankfileExportCmd.Flags().StringVarP(&bankfileOut, "out", "o", ".", "output directory, or - for stdout")
	bankfileCmd.AddCommand(bankfileExportCmd)
	rootCmd.AddCommand(bankfileCmd)
}

func runBankfileExport(cmd *cobra.Command, _ []string) error {
	if bankFileService == nil {
		return errors.New("bank file service not configured")
	}
	if bankfileOrg == "" {
		return errors.New("--org is required")
	}

	var date time.Time
	if bankfileDate != "" {
		d, err := time.ParseInLocation(time.DateOnly, bankfileDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", bankfileDate)
		}
		date = d
	}

	file, err := bankFileService.Export(cmd.Context(), bankfileOrg, date)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if bankfileOut == "-" {
		_, err := cmd.OutOrStdout().Write(file.Content)
		return err
	}

	if err := os.MkdirAll(bankfileOut, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(bankfileOut, file.Filename)
	if err := os.WriteFile(path, file.Content, 0o600); err != nil {
		return fmt.Errorf("writing payment file: %w", err)
	}

	cmd.Printf("Wrote %s\n", path)
	cmd.Printf("  %d payment(s), total %s %s, execution date %s\n",
		file.Included, formatMinor(file.ControlSumCents), domain.SettlementCurrency, file.ExecutionDate.Format(time.DateOnly))
	if file.Excluded > 0 {
		cmd.Printf("  %s %d employee(s) without positive net pay left out\n", warningStyle.Render("note:"), file.Excluded)
	}
	return nil
}

func formatMinor(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
