package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
)

// pushTarget reads the record kind, organization and session of a push request.
func pushTarget(c echo.Context) (domain.RecordKind, string, domain.SessionID, error) {
	kind := domain.RecordKind(c.Param("kind"))
	if kind != domain.KindPersonnel && kind != domain.KindCompensation {
		return "", "", "", fmt.Errorf("%w: unknown record kind %q", domain.ErrNotFound, kind)
	}
	org := c.QueryParam("org")
	if org == "" {
		return "", "", "", fmt.Errorf("%w: org is required", domain.ErrInvalidInput)
	}
	return kind, org, currentSession(c), nil
}

// handlePushOne pushes one record by id.
func (s *Server) handlePushOne(c echo.Context) error {
	kind, org, sess, err := pushTarget(c)
	if err != nil {
		return writeError(c, err)
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return writeError(c, fmt.Errorf("%w: record id %q", domain.ErrInvalidInput, c.Param("id")))
	}
	if sess == "" {
		return writeError(c, domain.ErrAuthRequired)
	}

	var result *domain.SingleResult
	switch kind {
	case domain.KindPersonnel:
		result, err = s.ports.Batch.PushPersonnel(c.Request().Context(), sess, org, id)
	default:
		result, err = s.ports.Batch.PushCompensation(c.Request().Context(), sess, org, id)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// handlePushBatch pushes unflagged records of one kind.
func (s *Server) handlePushBatch(c echo.Context) error {
	kind, org, sess, err := pushTarget(c)
	if err != nil {
		return writeError(c, err)
	}

	req := driving.BatchRequest{Session: sess, OrgID: org}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return writeError(c, fmt.Errorf("%w: limit %q", domain.ErrInvalidInput, v))
		}
		req.Limit = limit
	}
	if v := c.QueryParam("dryRun"); v != "" {
		dryRun, err := strconv.ParseBool(v)
		if err != nil {
			return writeError(c, fmt.Errorf("%w: dryRun %q", domain.ErrInvalidInput, v))
		}
		req.DryRun = dryRun
	}
	if sess == "" && !req.DryRun {
		return writeError(c, domain.ErrAuthRequired)
	}

	var result *domain.BatchResult
	switch kind {
	case domain.KindPersonnel:
		result, err = s.ports.Batch.PushPersonnelBatch(c.Request().Context(), req)
	default:
		result, err = s.ports.Batch.PushCompensationBatch(c.Request().Context(), req)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
