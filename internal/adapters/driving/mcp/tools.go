package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

// ComputeSalariesInput is the input schema for the compute_salaries tool.
type ComputeSalariesInput struct {
	Org string `json:"org" jsonschema:"the organization id whose unpaid salaries are computed"`
}

// ComputeSalariesOutput is the output schema for the compute_salaries tool.
type ComputeSalariesOutput struct {
	Salaries []SalaryOutput `json:"salaries"`
	Count    int            `json:"count"`
	TotalNet float64        `json:"total_net"`
}

// SalaryOutput is one computed salary.
type SalaryOutput struct {
	EmployeeID        string   `json:"employee_id"`
	Name              string   `json:"name"`
	GrossBase         float64  `json:"gross_base"`
	HolidayPay        float64  `json:"holiday_pay"`
	EmployerSocialFee float64  `json:"employer_social_fee"`
	IncomeTax         float64  `json:"income_tax"`
	NetPay            float64  `json:"net_pay"`
	Periods           []string `json:"periods,omitempty"`
	HasBankDetails    bool     `json:"has_bank_details"`
}

// PushBatchInput is the input schema for the push_batch tool.
type PushBatchInput struct {
	Kind   string `json:"kind" jsonschema:"record kind to push: personnel or compensation"`
	Org    string `json:"org" jsonschema:"the organization id"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of records (default 100, max 1000)"`
	DryRun bool   `json:"dry_run,omitempty" jsonschema:"map and validate without calling the ERP"`
}

// PushBatchOutput is the output schema for the push_batch tool.
type PushBatchOutput struct {
	Processed int                `json:"processed"`
	Successes int                `json:"successes"`
	Failures  int                `json:"failures"`
	DryRun    bool               `json:"dry_run"`
	Items     []domain.BatchItem `json:"items"`
}

// AuthStatusInput is the input schema for the auth_status tool.
type AuthStatusInput struct{}

// AuthStatusOutput is the output schema for the auth_status tool.
type AuthStatusOutput struct {
	Authorized  bool   `json:"authorized"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	ExpiresInMs int64  `json:"expires_in_ms"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compute_salaries",
		Description: "Compute unpaid salaries of an organization from its unpushed compensation records",
	}, s.handleComputeSalaries)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "push_batch",
		Description: "Push unflagged personnel or compensation records of an organization to the ERP",
	}, s.handlePushBatch)

	if s.ports.Auth != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "auth_status",
			Description: "Report whether the ERP credential of this server's session is usable",
		}, s.handleAuthStatus)
	}
}

// handleComputeSalaries handles the compute_salaries tool invocation.
func (s *Server) handleComputeSalaries(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ComputeSalariesInput,
) (*mcp.CallToolResult, ComputeSalariesOutput, error) {
	people, err := s.ports.Salary.ComputeUnpaidSalaries(ctx, input.Org)
	if err != nil {
		return nil, ComputeSalariesOutput{}, err
	}

	output := ComputeSalariesOutput{
		Salaries: make([]SalaryOutput, len(people)),
		Count:    len(people),
	}
	for i := range people {
		p := &people[i]
		output.Salaries[i] = SalaryOutput{
			EmployeeID:        p.EmployeeID,
			Name:              p.Name,
			GrossBase:         p.GrossBase,
			HolidayPay:        p.HolidayPay,
			EmployerSocialFee: p.EmployerSocialFee,
			IncomeTax:         p.IncomeTax,
			NetPay:            p.NetPay,
			Periods:           p.Periods,
			HasBankDetails:    !p.Bank.IsEmpty(),
		}
		output.TotalNet += p.NetPay
	}

	return nil, output, nil
}

// handlePushBatch handles the push_batch tool invocation.
func (s *Server) handlePushBatch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PushBatchInput,
) (*mcp.CallToolResult, PushBatchOutput, error) {
	req := driving.BatchRequest{
		Session: s.ports.Session,
		OrgID:   input.Org,
		Limit:   input.Limit,
		DryRun:  input.DryRun,
	}

	var (
		result *domain.BatchResult
		err    error
	)
	switch domain.RecordKind(input.Kind) {
	case domain.KindPersonnel:
		result, err = s.ports.Batch.PushPersonnelBatch(ctx, req)
	case domain.KindCompensation:
		result, err = s.ports.Batch.PushCompensationBatch(ctx, req)
	default:
		return nil, PushBatchOutput{}, errors.New("kind must be personnel or compensation")
	}
	if err != nil {
		return nil, PushBatchOutput{}, err
	}

	return nil, PushBatchOutput{
		Processed: result.Processed,
		Successes: result.Successes,
		Failures:  result.Failures,
		DryRun:    result.DryRun,
		Items:     result.Items,
	}, nil
}

// handleAuthStatus handles the auth_status tool invocation.
func (s *Server) handleAuthStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ AuthStatusInput,
) (*mcp.CallToolResult, AuthStatusOutput, error) {
	status, err := s.ports.Auth.Status(ctx, s.ports.Session)
	if err != nil {
		return nil, AuthStatusOutput{}, err
	}

	output := AuthStatusOutput{
		Authorized:  status.Authorized,
		ExpiresInMs: status.ExpiresInMs,
	}
	if status.ExpiresAt != 0 {
		output.ExpiresAt = status.Expiry().UTC().Format("2006-01-02T15:04:05Z")
	}
	return nil, output, nil
}
