package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

func TestMapPersonnel(t *testing.T) {
	defaults := domain.ContractDefaults{
		EmploymentForm: "TV",
		SalaryForm:     "MAN",
		PersonelType:   "TJM",
		ScheduleID:     "HEL",
		JobTitle:       "Consultant",
	}

	t.Run("source fields win over defaults", func(t *testing.T) {
		rec := domain.PersonnelRecord{
			ID:             7,
			Name:           "Ada Lovelace",
			Email:          "ada@example.com",
			EmploymentForm: "PRO",
			JobTitle:       "Engineer",
		}

		payload, err := MapPersonnel(rec, defaults)

		require.NoError(t, err)
		assert.Equal(t, domain.Some("7"), payload.EmployeeID)
		assert.Equal(t, domain.Some("PRO"), payload.EmploymentForm)
		assert.Equal(t, domain.Some("Engineer"), payload.JobTitle)
		assert.Equal(t, domain.Some("MAN"), payload.SalaryForm)
		assert.Equal(t, domain.Some("TJM"), payload.PersonelType)
	})

	t.Run("blank fields are omitted from the body", func(t *testing.T) {
		rec := domain.PersonnelRecord{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com", CostCenter: "  "}

		payload, err := MapPersonnel(rec, domain.ContractDefaults{})
		require.NoError(t, err)

		body, err := json.Marshal(payload)
		require.NoError(t, err)
		var fields map[string]any
		require.NoError(t, json.Unmarshal(body, &fields))
		assert.NotContains(t, fields, "CostCenter")
		assert.NotContains(t, fields, "TaxTable")
		assert.NotContains(t, fields, "EmploymentForm")
		assert.Equal(t, "Ada", fields["FirstName"])
	})

	t.Run("external id is the employee id", func(t *testing.T) {
		rec := domain.PersonnelRecord{ID: 1, ExternalEmployeeID: "E-9", Name: "A B", Email: "a@b.c"}

		payload, err := MapPersonnel(rec, defaults)

		require.NoError(t, err)
		assert.Equal(t, domain.Some("E-9"), payload.EmployeeID)
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, err := MapPersonnel(domain.PersonnelRecord{ID: 1}, defaults)

		require.ErrorIs(t, err, domain.ErrValidationFailed)
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, []string{"Email", "FirstName", "LastName"}, ve.Missing)
	})
}

func TestMapCompensation(t *testing.T) {
	base := domain.CompensationRecord{
		EmployeeID:   "E1",
		ActivityCode: "11",
		Amount:       1000,
		Quantity:     2,
		Period:       "2024-04",
		Comment:      "April",
	}

	t.Run("maps fields and expands month periods", func(t *testing.T) {
		payload, err := MapCompensation(base)

		require.NoError(t, err)
		assert.Equal(t, domain.Some("E1"), payload.EmployeeID)
		assert.Equal(t, domain.Some("11"), payload.SalaryCode)
		assert.Equal(t, domain.Some("2024-04-01"), payload.Date)
		assert.Equal(t, domain.Some(2.0), payload.Number)
		assert.Equal(t, domain.Some(1000.0), payload.Amount)
		assert.Equal(t, domain.Some("April"), payload.TextRow)
		assert.False(t, payload.CostCenter.IsPresent())
	})

	t.Run("full dates pass through", func(t *testing.T) {
		rec := base
		rec.Period = "2024-04-15"

		payload, err := MapCompensation(rec)

		require.NoError(t, err)
		assert.Equal(t, domain.Some("2024-04-15"), payload.Date)
	})

	t.Run("unparseable period", func(t *testing.T) {
		rec := base
		rec.Period = "April 2024"

		_, err := MapCompensation(rec)

		assert.ErrorIs(t, err, domain.ErrValidationFailed)
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, err := MapCompensation(domain.CompensationRecord{Amount: 10, Quantity: 1})

		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, []string{"EmployeeId", "Date", "SalaryCode"}, ve.Missing)
	})
}
