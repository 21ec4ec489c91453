package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

func samplePaymentFile() *domain.PaymentFile {
	return &domain.PaymentFile{
		Filename:        "swedbank_salary_payment_20240625.xml",
		Content:         []byte("<Document></Document>"),
		ExecutionDate:   time.Date(2024, 6, 25, 0, 0, 0, 0, time.Local),
		Included:        2,
		Excluded:        1,
		ControlSumCents: 133475,
	}
}

func TestBankfileExport(t *testing.T) {
	t.Run("writes file to output directory", func(t *testing.T) {
		bank := &mockBankFileService{file: samplePaymentFile()}
		cleanup := setupServices(&Services{BankFile: bank})
		defer cleanup()
		dir := filepath.Join(t.TempDir(), "files")

		out, err := runRoot(t, "bankfile", "export", "--org", "acme", "--date", "2024-06-25", "--out", dir)

		require.NoError(t, err)
		assert.Equal(t, "acme", bank.lastOrg)
		assert.Equal(t, "2024-06-25", bank.lastDate.Format(time.DateOnly))

		path := filepath.Join(dir, "swedbank_salary_payment_20240625.xml")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "<Document></Document>", string(data))
		assert.Contains(t, out, "Wrote "+path)
		assert.Contains(t, out, "2 payment(s), total 1334.75 SEK")
		assert.Contains(t, out, "1 employee(s) without positive net pay left out")
	})

	t.Run("stdout with default date", func(t *testing.T) {
		bank := &mockBankFileService{file: samplePaymentFile()}
		cleanup := setupServices(&Services{BankFile: bank})
		defer cleanup()

		out, err := runRoot(t, "bankfile", "export", "--org", "acme", "--out", "-")

		require.NoError(t, err)
		assert.True(t, bank.lastDate.IsZero())
		assert.Equal(t, "<Document></Document>", out)
	})

	t.Run("invalid date", func(t *testing.T) {
		cleanup := setupServices(&Services{BankFile: &mockBankFileService{}})
		defer cleanup()

		_, err := runRoot(t, "bankfile", "export", "--org", "acme", "--date", "25/06/2024")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected YYYY-MM-DD")
	})

	t.Run("export error", func(t *testing.T) {
		cleanup := setupServices(&Services{BankFile: &mockBankFileService{err: domain.ErrConfigurationMissing}})
		defer cleanup()

		_, err := runRoot(t, "bankfile", "export", "--org", "acme", "--out", "-")

		require.ErrorIs(t, err, domain.ErrConfigurationMissing)
	})
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "0.00", formatMinor(0))
	assert.Equal(t, "1334.75", formatMinor(133475))
	assert.Equal(t, "0.05", formatMinor(5))
	assert.Equal(t, "-1.50", formatMinor(-150))
}
