package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for paybridge resources.
	uriScheme = "paybridge://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "orgs/{org}/salaries",
		Name:        "org-salaries",
		Description: "Unpaid salaries computed for an organization",
		MIMEType:    "application/json",
	}, s.handleSalariesResource)

	if s.ports.BankFile != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "orgs/{org}/bankfile",
			Name:        "org-bankfile",
			Description: "Salary payment file for the next pay day (pain.001)",
			MIMEType:    "application/xml",
		}, s.handleBankFileResource)
	}
}

// handleSalariesResource returns the computed salaries of one organization.
func (s *Server) handleSalariesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	org := extractOrgID(req.Params.URI, "/salaries")
	if org == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	people, err := s.ports.Salary.ComputeUnpaidSalaries(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("computing salaries: %w", err)
	}

	data, err := json.MarshalIndent(people, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling salaries: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleBankFileResource returns the payment file of one organization.
func (s *Server) handleBankFileResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	org := extractOrgID(req.Params.URI, "/bankfile")
	if org == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	file, err := s.ports.BankFile.Export(ctx, org, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("exporting bank file: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/xml",
			Text:     string(file.Content),
		}},
	}, nil
}

// extractOrgID extracts the org id from a URI like paybridge://orgs/{org}/salaries.
func extractOrgID(uri, suffix string) string {
	const prefix = uriScheme + "orgs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	org := strings.TrimSuffix(uri, suffix)
	if strings.Contains(org, "/") {
		return ""
	}
	return org
}
