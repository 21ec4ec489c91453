package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

// Ensure OrgService implements the interface.
var _ driving.OrgService = (*OrgService)(nil)

// OrgService provisions per-organization tables through the store's procedure call.
type OrgService struct {
	procedures driven.ProcedureCaller
}

// NewOrgService creates an org service.
func NewOrgService(procedures driven.ProcedureCaller) *OrgService {
	return &OrgService{procedures: procedures}
}

// Provision creates the organization's record tables if missing.
func (s *OrgService) Provision(ctx context.Context, orgID string) error {
	if err := domain.ValidateOrgID(orgID); err != nil {
		return err
	}
	sctx, cancel := withStoreTimeout(ctx)
	defer cancel()
	if err := s.procedures.Call(sctx, driven.ProcedureProvisionOrgTables, map[string]any{"org_id": orgID}); err != nil {
		return fmt.Errorf("provision %s: %w", orgID, err)
	}
	return nil
}
