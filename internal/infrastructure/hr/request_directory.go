// Package hr implements the engine's external-collaborator interfaces on
// top of the surrounding application's HR tables. The engine itself never
// reaches past these adapters.
package hr

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
	"github.com/bamin2/dgc-hr-sub004/pkg/database"
)

// RequestDirectory implements port.RequestDirectory over the per-type
// request tables
type RequestDirectory struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRequestDirectory creates a new request directory
func NewRequestDirectory(db *database.DB, logger *zap.Logger) port.RequestDirectory {
	return &RequestDirectory{
		db:     db,
		logger: logger,
	}
}

// GetSummary returns the minimal projection of a request, or nil when absent
func (d *RequestDirectory) GetSummary(ctx context.Context, requestID int64, requestType entity.RequestType) (*entity.RequestSummary, error) {
	exec := d.db.Executor(ctx)
	summary := &entity.RequestSummary{
		RequestID:   requestID,
		RequestType: requestType,
	}

	var err error
	switch requestType {
	case entity.RequestTypeTimeOff:
		var start, end sql.NullTime
		err = exec.QueryRowContext(ctx, `
			SELECT employee_id, leave_type_id, days, start_date, end_date, status
			FROM time_off_requests WHERE id = ?`, requestID).
			Scan(&summary.EmployeeID, &summary.LeaveTypeID, &summary.Days, &start, &end, &summary.Status)
		if err == nil {
			summary.Title = fmt.Sprintf("Time off (%.1f days)", summary.Days)
			if start.Valid {
				t := start.Time
				summary.StartDate = &t
			}
			if end.Valid {
				t := end.Time
				summary.EndDate = &t
			}
		}

	case entity.RequestTypeBusinessTrip:
		var destination string
		var start, end sql.NullTime
		err = exec.QueryRowContext(ctx, `
			SELECT employee_id, destination, start_date, end_date, status
			FROM business_trips WHERE id = ?`, requestID).
			Scan(&summary.EmployeeID, &destination, &start, &end, &summary.Status)
		if err == nil {
			summary.Title = fmt.Sprintf("Business trip to %s", destination)
			if start.Valid {
				t := start.Time
				summary.StartDate = &t
			}
			if end.Valid {
				t := end.Time
				summary.EndDate = &t
			}
		}

	case entity.RequestTypeLoan:
		err = exec.QueryRowContext(ctx, `
			SELECT employee_id, amount_cents, status
			FROM loans WHERE id = ?`, requestID).
			Scan(&summary.EmployeeID, &summary.AmountCents, &summary.Status)
		if err == nil {
			summary.Title = fmt.Sprintf("Loan of %.2f", float64(summary.AmountCents)/100)
		}

	default:
		return nil, fmt.Errorf("unknown request type %q", requestType)
	}

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		d.logger.Error("Failed to get request summary",
			zap.Int64("request_id", requestID),
			zap.String("request_type", string(requestType)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get request summary: %w", err)
	}
	return summary, nil
}

// SetStatus propagates a terminal chain outcome to the request record
func (d *RequestDirectory) SetStatus(ctx context.Context, requestID int64, requestType entity.RequestType, status string) error {
	table, err := tableFor(requestType)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET status = ? WHERE id = ?", table)
	result, err := d.db.Executor(ctx).ExecContext(ctx, query, status, requestID)
	if err != nil {
		d.logger.Error("Failed to set request status",
			zap.Int64("request_id", requestID),
			zap.String("request_type", string(requestType)),
			zap.Error(err))
		return fmt.Errorf("failed to set request status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %d (%s) not found", requestID, requestType)
	}
	return nil
}

// ListByEmployee returns summaries of every request the employee submitted
func (d *RequestDirectory) ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.RequestSummary, error) {
	exec := d.db.Executor(ctx)

	// UNION across the three request tables, newest first
	query := `
		SELECT id, 'time_off' AS request_type, created_at FROM time_off_requests WHERE employee_id = ?
		UNION ALL
		SELECT id, 'business_trip', created_at FROM business_trips WHERE employee_id = ?
		UNION ALL
		SELECT id, 'loan', created_at FROM loans WHERE employee_id = ?
		ORDER BY created_at DESC
	`

	rows, err := exec.QueryContext(ctx, query, employeeID, employeeID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	type ref struct {
		id  int64
		typ entity.RequestType
	}
	var refs []ref
	for rows.Next() {
		var r ref
		var typ string
		var createdAt sql.NullTime
		if err := rows.Scan(&r.id, &typ, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan request ref: %w", err)
		}
		r.typ = entity.RequestType(typ)
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]*entity.RequestSummary, 0, len(refs))
	for _, r := range refs {
		summary, err := d.GetSummary(ctx, r.id, r.typ)
		if err != nil {
			return nil, err
		}
		if summary != nil {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func tableFor(requestType entity.RequestType) (string, error) {
	switch requestType {
	case entity.RequestTypeTimeOff:
		return "time_off_requests", nil
	case entity.RequestTypeBusinessTrip:
		return "business_trips", nil
	case entity.RequestTypeLoan:
		return "loans", nil
	}
	return "", fmt.Errorf("unknown request type %q", requestType)
}

// Verify interface compliance
var _ port.RequestDirectory = (*RequestDirectory)(nil)
