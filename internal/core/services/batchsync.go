package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// Ensure BatchSyncEngine implements the interface.
var _ driving.BatchSync = (*BatchSyncEngine)(nil)

// BatchSyncEngine pushes unflagged records to the ERP one at a time and flags
// each accepted record so later runs skip it.
type BatchSyncEngine struct {
	records  driven.RecordStore
	erp      driven.ERPClient
	vault    driving.TokenVault
	settings driving.SettingsService
	events   driven.EventPublisher
}

// NewBatchSyncEngine creates a batch sync engine.
// events may be nil, in which case nothing is published.
func NewBatchSyncEngine(
	records driven.RecordStore,
	erp driven.ERPClient,
	vault driving.TokenVault,
	settings driving.SettingsService,
	events driven.EventPublisher,
) *BatchSyncEngine {
	return &BatchSyncEngine{
		records:  records,
		erp:      erp,
		vault:    vault,
		settings: settings,
		events:   events,
	}
}

// pushRun carries what every item of one run shares.
type pushRun struct {
	kind     domain.RecordKind
	table    string
	token    string
	dryRun   bool
	defaults domain.ContractDefaults
}

// PushPersonnelBatch pushes unflagged personnel records in primary key order.
func (e *BatchSyncEngine) PushPersonnelBatch(ctx context.Context, req driving.BatchRequest) (*domain.BatchResult, error) {
	return e.pushBatch(ctx, domain.KindPersonnel, req)
}

// PushCompensationBatch pushes unflagged compensation records in primary key order.
func (e *BatchSyncEngine) PushCompensationBatch(
	ctx context.Context, req driving.BatchRequest,
) (*domain.BatchResult, error) {
	return e.pushBatch(ctx, domain.KindCompensation, req)
}

// PushPersonnel pushes one personnel record by id.
func (e *BatchSyncEngine) PushPersonnel(
	ctx context.Context, session domain.SessionID, orgID string, id int64,
) (*domain.SingleResult, error) {
	return e.pushOne(ctx, domain.KindPersonnel, session, orgID, id)
}

// PushCompensation pushes one compensation record by id.
func (e *BatchSyncEngine) PushCompensation(
	ctx context.Context, session domain.SessionID, orgID string, id int64,
) (*domain.SingleResult, error) {
	return e.pushOne(ctx, domain.KindCompensation, session, orgID, id)
}

//nolint:gocognit // Orchestration function with necessary sequential steps
func (e *BatchSyncEngine) pushBatch(
	ctx context.Context, kind domain.RecordKind, req driving.BatchRequest,
) (*domain.BatchResult, error) {
	run, err := e.prepare(ctx, kind, req.Session, req.OrgID, req.DryRun)
	if err != nil {
		return nil, err
	}

	// 1. Select unflagged rows, oldest first
	limit := domain.ClampLimit(req.Limit)
	sctx, cancel := withStoreTimeout(ctx)
	rows, err := e.records.Filter(sctx, run.table, driven.Query{
		Where:   []driven.Condition{{Column: domain.ColPushed, Op: driven.OpNotTrue}},
		OrderBy: domain.ColID,
		Limit:   limit,
	})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", kind, err)
	}

	logger.Section(fmt.Sprintf("Pushing %d %s record(s)", len(rows), kind))

	// 2. Push each row; a started item always runs to completion
	result := &domain.BatchResult{Kind: kind, DryRun: req.DryRun, Items: make([]domain.BatchItem, 0, len(rows))}
	itemCtx := context.WithoutCancel(ctx)
	for _, row := range rows {
		if ctx.Err() != nil {
			logger.Warn("Batch of %s interrupted after %d of %d record(s)", kind, result.Processed, len(rows))
			break
		}
		item := e.pushRow(itemCtx, run, row)
		result.Add(item)
		logger.Debug("%s %d: %s %s", kind, item.RecordID, item.Status, item.Reason)
	}

	// 3. Report
	logger.Info("Batch %s complete: %d processed, %d succeeded, %d failed",
		kind, result.Processed, result.Successes, result.Failures)
	e.publish(itemCtx, driven.Event{
		Type: driven.EventBatchCompleted,
		Payload: map[string]any{
			"kind":      kind,
			"org":       req.OrgID,
			"processed": result.Processed,
			"successes": result.Successes,
			"failures":  result.Failures,
			"dryRun":    result.DryRun,
		},
	})
	return result, nil
}

func (e *BatchSyncEngine) pushOne(
	ctx context.Context, kind domain.RecordKind, session domain.SessionID, orgID string, id int64,
) (*domain.SingleResult, error) {
	run, err := e.prepare(ctx, kind, session, orgID, false)
	if err != nil {
		return nil, err
	}

	row, err := e.fetch(ctx, run.table, id)
	if err != nil {
		return nil, err
	}

	item := e.pushRow(context.WithoutCancel(ctx), run, row)
	result := &domain.SingleResult{Mapped: item.Mapped}
	if item.Status == domain.ItemSuccess {
		result.Created = &item
	} else {
		result.Error = item.Reason
	}
	return result, nil
}

// prepare resolves the table and, unless dryRun, the settings and access token a run needs.
func (e *BatchSyncEngine) prepare(
	ctx context.Context, kind domain.RecordKind, session domain.SessionID, orgID string, dryRun bool,
) (*pushRun, error) {
	schema, err := domain.SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	table, err := schema.TableFor(orgID)
	if err != nil {
		return nil, err
	}
	settings, err := e.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	run := &pushRun{kind: kind, table: table, dryRun: dryRun, defaults: settings.Defaults}
	if dryRun {
		return run, nil
	}

	if err := e.settings.ValidatePush(); err != nil {
		return nil, err
	}
	token, err := e.vault.GetValidAccessToken(ctx, session)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, domain.ErrAuthRequired
	}
	run.token = token
	return run, nil
}

// pushRow maps, submits and flags one record. It never returns an error:
// every outcome is reported on the item.
func (e *BatchSyncEngine) pushRow(ctx context.Context, run *pushRun, row domain.Row) domain.BatchItem {
	id := domain.RowID(row)
	item := domain.BatchItem{RecordID: id}

	// A concurrent run may have flagged the row since it was listed.
	if !run.dryRun {
		current, err := e.fetch(ctx, run.table, id)
		if err != nil {
			item.Status = domain.ItemFailure
			item.Reason = err.Error()
			return item
		}
		row = current
	}
	if domain.FlagFromValue(row[domain.ColPushed]).IsPushed() {
		item.Status = domain.ItemSkipped
		item.Reason = domain.SkipReasonAlreadyAdded
		return item
	}

	var (
		resp *domain.ERPResponse
		err  error
	)
	switch run.kind {
	case domain.KindPersonnel:
		var payload domain.EmployeePayload
		payload, err = MapPersonnel(domain.PersonnelFromRow(row), run.defaults)
		item.Mapped = payload
		if err == nil && !run.dryRun {
			resp, err = e.erp.CreateEmployee(ctx, run.token, payload)
		}
	case domain.KindCompensation:
		var payload domain.SalaryTransactionPayload
		payload, err = MapCompensation(domain.CompensationFromRow(row))
		item.Mapped = payload
		if err == nil && !run.dryRun {
			resp, err = e.erp.CreateSalaryTransaction(ctx, run.token, payload)
		}
	}
	if err != nil {
		item.Status = domain.ItemFailure
		item.Reason = err.Error()
		return item
	}
	if run.dryRun {
		item.Status = domain.ItemDryRun
		return item
	}

	item.HTTPStatus = resp.StatusCode
	if !resp.IsSuccess() {
		upstream := &domain.UpstreamError{
			Kind:       domain.ErrUpstreamPushFailed,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
		item.Status = domain.ItemFailure
		item.Reason = upstream.Error()
		item.Body = upstream.Body
		return item
	}

	// The ERP accepted the record; from here on the item is a success.
	item.Status = domain.ItemSuccess
	item.ExternalID = resp.ExternalID
	if err := e.markPushed(ctx, run, row, resp.ExternalID); err != nil {
		item.FlagError = err.Error()
		logger.Warn("DRIFT: %s record %d accepted by ERP (external id %q) but not flagged in %s: %v",
			run.kind, id, resp.ExternalID, run.table, err)
		e.publish(ctx, driven.Event{
			Type: driven.EventFlagDrift,
			Payload: map[string]any{
				"kind":       run.kind,
				"table":      run.table,
				"recordId":   id,
				"externalId": resp.ExternalID,
				"error":      err.Error(),
			},
		})
	}
	return item
}

// markPushed sets the pushed flag and keeps the external id the ERP assigned.
func (e *BatchSyncEngine) markPushed(ctx context.Context, run *pushRun, row domain.Row, externalID string) error {
	patch := domain.Row{domain.ColPushed: true}
	if externalID != "" {
		switch run.kind {
		case domain.KindPersonnel:
			if domain.PersonnelFromRow(row).ExternalEmployeeID == "" {
				patch["external_employee_id"] = externalID
			}
		case domain.KindCompensation:
			patch["external_id"] = externalID
		}
	}

	sctx, cancel := withStoreTimeout(ctx)
	defer cancel()
	if err := e.records.UpdateByID(sctx, run.table, domain.RowID(row), patch); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFlagPersistenceFailed, err)
	}
	return nil
}

// fetch reads one row by primary key.
func (e *BatchSyncEngine) fetch(ctx context.Context, table string, id int64) (domain.Row, error) {
	sctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	rows, err := e.records.Filter(sctx, table, driven.Query{
		Where: []driven.Condition{{Column: domain.ColID, Op: driven.OpEq, Value: id}},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("record %d: %w", id, domain.ErrNotFound)
	}
	return rows[0], nil
}

func (e *BatchSyncEngine) publish(ctx context.Context, event driven.Event) {
	if e.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := e.events.Publish(pctx, event); err != nil {
		logger.Warn("Failed to publish %s event: %v", event.Type, err)
	}
}
