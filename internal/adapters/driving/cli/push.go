package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push records to the ERP",
	Long: `Pushes personnel or compensation records of an organization to the ERP.

Records already flagged as pushed are never submitted again. Without --id
the oldest unflagged records are pushed, up to --limit (default 100, max 1000).

Examples:
  paybridge push personnel --org acme
  paybridge push compensation --org acme --limit 50 --dry-run
  paybridge push personnel --org acme --id 42`,
}

var pushPersonnelCmd = &cobra.Command{
	Use:   "personnel",
	Short: "Push personnel records as ERP employees",
	RunE:  runPush(domain.KindPersonnel),
}

var pushCompensationCmd = &cobra.Command{
	Use:   "compensation",
	Short: "Push compensation records as ERP salary transactions",
	RunE:  runPush(domain.KindCompensation),
}

// Flags for push.
var (
	pushOrg    string
	pushID     int64
	pushLimit  int
	pushDryRun bool
	pushJSON   bool
)

func init() {
	pushCmd.PersistentFlags().StringVar(&pushOrg, "org", "", "organization id")
	pushCmd.PersistentFlags().Int64Var(&pushID, "id", 0, "push a single record by id")
	pushCmd.PersistentFlags().IntVarP(&pushLimit, "limit", "n", 0, "maximum number of records in a batch")
	pushCmd.PersistentFlags().BoolVar(&pushDryRun, "dry-run", false, "map and validate without calling the ERP")
	pushCmd.PersistentFlags().BoolVar(&pushJSON, "json", false, "output the result as JSON")

	pushCmd.AddCommand(pushPersonnelCmd)
	pushCmd.AddCommand(pushCompensationCmd)
	rootCmd.AddCommand(pushCmd)
}

func runPush(kind domain.RecordKind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if batchSync == nil {
			return errors.New("batch sync not configured")
		}
		if pushOrg == "" {
			return errors.New("--org is required")
		}
		if pushID != 0 {
			if pushLimit != 0 || pushDryRun {
				return errors.New("--id cannot be combined with --limit or --dry-run")
			}
			return pushSingle(cmd, kind)
		}
		return pushBatch(cmd, kind)
	}
}

func pushSingle(cmd *cobra.Command, kind domain.RecordKind) error {
	var (
		result *domain.SingleResult
		err    error
	)
	switch kind {
	case domain.KindPersonnel:
		result, err = batchSync.PushPersonnel(cmd.Context(), session(), pushOrg, pushID)
	default:
		result, err = batchSync.PushCompensation(cmd.Context(), session(), pushOrg, pushID)
	}
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	if pushJSON {
		return outputJSON(cmd, result)
	}
	if result.Created == nil {
		cmd.Printf("%s %s %d: %s\n", errorStyle.Render("failed"), kind, pushID, result.Error)
		return nil
	}
	cmd.Printf("%s %s %d as %s\n", successStyle.Render("pushed"), kind, pushID, result.Created.ExternalID)
	if result.Created.FlagError != "" {
		cmd.Printf("%s pushed flag not written: %s\n", warningStyle.Render("drift"), result.Created.FlagError)
	}
	return nil
}

func pushBatch(cmd *cobra.Command, kind domain.RecordKind) error {
	req := driving.BatchRequest{
		Session: session(),
		OrgID:   pushOrg,
		Limit:   pushLimit,
		DryRun:  pushDryRun,
	}

	var (
		result *domain.BatchResult
		err    error
	)
	switch kind {
	case domain.KindPersonnel:
		result, err = batchSync.PushPersonnelBatch(cmd.Context(), req)
	default:
		result, err = batchSync.PushCompensationBatch(cmd.Context(), req)
	}
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	if pushJSON {
		return outputJSON(cmd, result)
	}
	printBatch(cmd, pushOrg, result)
	return nil
}

func printBatch(cmd *cobra.Command, org string, result *domain.BatchResult) {
	title := fmt.Sprintf("Pushed %s records of %s", result.Kind, org)
	if result.DryRun {
		title = fmt.Sprintf("Dry run of %s records of %s", result.Kind, org)
	}
	cmd.Println(titleStyle.Render(title))

	if result.Processed == 0 {
		cmd.Println(mutedStyle.Render("No unpushed records."))
		return
	}

	for _, item := range result.Items {
		var status string
		switch item.Status {
		case domain.ItemSuccess:
			status = successStyle.Render(string(item.Status))
		case domain.ItemFailure:
			status = errorStyle.Render(string(item.Status))
		default:
			status = mutedStyle.Render(string(item.Status))
		}
		detail := item.ExternalID
		if item.Reason != "" {
			detail = item.Reason
		}
		cmd.Printf("  #%-6d %s %s\n", item.RecordID, status, detail)
		if item.FlagError != "" {
			cmd.Printf("          %s %s\n", warningStyle.Render("drift:"), item.FlagError)
		}
	}

	cmd.Printf("%d processed, %d succeeded, %d failed\n", result.Processed, result.Successes, result.Failures)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
