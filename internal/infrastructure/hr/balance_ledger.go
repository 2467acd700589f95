package hr

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bamin2/dgc-hr-sub004/internal/application/port"
	"github.com/bamin2/dgc-hr-sub004/pkg/database"
)

// BalanceLedger implements port.BalanceLedger over the leave_balances
// table. Every adjustment is a single UPDATE with the arithmetic in SQL,
// never read-modify-write, so an overlapping rejection and a fresh submission
// cannot lose an update racing on the same balance row.
type BalanceLedger struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBalanceLedger creates a new balance ledger
func NewBalanceLedger(db *database.DB, logger *zap.Logger) port.BalanceLedger {
	return &BalanceLedger{
		db:     db,
		logger: logger,
	}
}

// ReleasePending returns reserved days to the available balance
func (l *BalanceLedger) ReleasePending(ctx context.Context, employeeID, leaveTypeID int64, days float64) error {
	query := `
		UPDATE leave_balances
		SET pending_days = pending_days - ?,
			available_days = available_days + ?
		WHERE employee_id = ? AND leave_type_id = ?
	`
	return l.adjust(ctx, query, "release pending", employeeID, leaveTypeID, days)
}

// CommitUsed converts reserved days into used days
func (l *BalanceLedger) CommitUsed(ctx context.Context, employeeID, leaveTypeID int64, days float64) error {
	query := `
		UPDATE leave_balances
		SET pending_days = pending_days - ?,
			used_days = used_days + ?
		WHERE employee_id = ? AND leave_type_id = ?
	`
	return l.adjust(ctx, query, "commit used", employeeID, leaveTypeID, days)
}

func (l *BalanceLedger) adjust(ctx context.Context, query, op string, employeeID, leaveTypeID int64, days float64) error {
	result, err := l.db.Executor(ctx).ExecContext(ctx, query, days, days, employeeID, leaveTypeID)
	if err != nil {
		l.logger.Error("Failed to adjust leave balance",
			zap.String("op", op),
			zap.Int64("employee_id", employeeID),
			zap.Int64("leave_type_id", leaveTypeID),
			zap.Float64("days", days),
			zap.Error(err))
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no balance row for employee %d, leave type %d", employeeID, leaveTypeID)
	}
	return nil
}

// Verify interface compliance
var _ port.BalanceLedger = (*BalanceLedger)(nil)
