package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// handleSalaries returns the organization's computed unpaid salaries.
func (s *Server) handleSalaries(c echo.Context) error {
	people, err := s.ports.Salary.ComputeUnpaidSalaries(c.Request().Context(), c.Param("org"))
	if err != nil {
		return writeError(c, err)
	}
	if people == nil {
		people = []domain.SalaryPerson{}
	}
	return c.JSON(http.StatusOK, people)
}

// handleBankFile streams the payment file as an attachment.
func (s *Server) handleBankFile(c echo.Context) error {
	var date time.Time
	if v := c.QueryParam("date"); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, time.Local)
		if err != nil {
			return writeError(c, fmt.Errorf("%w: date %q, expected YYYY-MM-DD", domain.ErrInvalidInput, v))
		}
		date = d
	}

	file, err := s.ports.BankFile.Export(c.Request().Context(), c.Param("org"), date)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Response().Header().Set("X-Included-Payments", fmt.Sprint(file.Included))
	c.Response().Header().Set("X-Excluded-Payments", fmt.Sprint(file.Excluded))
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", file.Content)
}
