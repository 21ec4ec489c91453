package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// Ensure BankFileService implements the interface.
var _ driving.BankFileService = (*BankFileService)(nil)

// BankFileService turns computed salaries into a payment file.
type BankFileService struct {
	salaries driving.SalaryService
	encoder  driven.PaymentFileEncoder
	settings driving.SettingsService
	now      func() time.Time
}

// NewBankFileService creates a bank file service.
func NewBankFileService(
	salaries driving.SalaryService,
	encoder driven.PaymentFileEncoder,
	settings driving.SettingsService,
) *BankFileService {
	return &BankFileService{
		salaries: salaries,
		encoder:  encoder,
		settings: settings,
		now:      time.Now,
	}
}

// Export encodes the organization's unpaid salaries.
func (s *BankFileService) Export(ctx context.Context, orgID string, executionDate time.Time) (*domain.PaymentFile, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Org.Validate(); err != nil {
		return nil, err
	}

	salaries, err := s.salaries.ComputeUnpaidSalaries(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if executionDate.IsZero() {
		executionDate = domain.NextPayDate(s.now())
	}
	file, err := s.encoder.Encode(salaries, settings.Org, executionDate)
	if err != nil {
		return nil, fmt.Errorf("encode payment file: %w", err)
	}
	logger.Info("Encoded %s: %d payment(s), %d excluded", file.Filename, file.Included, file.Excluded)
	return file, nil
}
