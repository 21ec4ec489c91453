package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

var salaryCmd = &cobra.Command{
	Use:   "salary",
	Short: "Inspect computed salaries",
}

var salaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List unpaid salaries of an organization",
	Long: `Computes salaries from the organization's unpushed compensation records.
Gross base, holiday pay, employer social fee, income tax and net pay are
shown per employee.`,
	RunE: runSalaryList,
}

var (
	salaryOrg  string
	salaryJSON bool
)

func init() {
	salaryListCmd.Flags().StringVar(&salaryOrg, "org", "", "organization id")
	salaryListCmd.Flags().BoolVar(&salaryJSON, "json", false, "output salaries as JSON")
	salaryCmd.AddCommand(salaryListCmd)
	rootCmd.AddCommand(salaryCmd)
}

func runSalaryList(cmd *cobra.Command, _ []string) error {
	if salaryService == nil {
		return errors.New("salary service not configured")
	}
	if salaryOrg == "" {
		return errors.New("--org is required")
	}

	people, err := salaryService.ComputeUnpaidSalaries(cmd.Context(), salaryOrg)
	if err != nil {
		return fmt.Errorf("computing salaries: %w", err)
	}

	if salaryJSON {
		return outputJSON(cmd, people)
	}
	if len(people) == 0 {
		cmd.Println("No unpaid salaries.")
		return nil
	}
	cmd.Println(renderSalaryTable(people))
	return nil
}

func renderSalaryTable(people []domain.SalaryPerson) string {
	var totalNet float64
	rows := make([][]string, 0, len(people)+1)
	for i := range people {
		p := &people[i]
		name := p.Name
		if !p.HasPersonnel {
			name += " *"
		}
		rows = append(rows, []string{
			p.EmployeeID,
			name,
			strings.Join(p.Periods, ","),
			money(p.GrossBase),
			money(p.HolidayPay),
			money(p.EmployerSocialFee),
			money(p.IncomeTax),
			money(p.NetPay),
		})
		totalNet += p.NetPay
	}
	rows = append(rows, []string{"", "Total", "", "", "", "", "", money(totalNet)})

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colourBorder)).
		Headers("Employee", "Name", "Periods", "Gross", "Holiday", "Social fee", "Tax", "Net").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 3:
				return numberStyle
			default:
				return cellStyle
			}
		})

	return t.String()
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
