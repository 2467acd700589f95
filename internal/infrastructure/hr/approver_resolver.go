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

// ApproverResolver implements port.ApproverResolver against the employees
// table: the manager role resolves to the employee's direct manager, the hr
// role to the first HR user on record.
type ApproverResolver struct {
	db     *database.DB
	logger *zap.Logger
}

// NewApproverResolver creates a new approver resolver
func NewApproverResolver(db *database.DB, logger *zap.Logger) port.ApproverResolver {
	return &ApproverResolver{
		db:     db,
		logger: logger,
	}
}

// ResolveApprover maps a routing role to a concrete user. A zero result
// with nil error means nobody holds the role.
func (r *ApproverResolver) ResolveApprover(ctx context.Context, requestType entity.RequestType, role string, employeeID int64) (int64, error) {
	exec := r.db.Executor(ctx)

	var query string
	var args []interface{}
	switch role {
	case entity.RoleManager:
		query = `SELECT manager_id FROM employees WHERE id = ?`
		args = []interface{}{employeeID}
	case entity.RoleHR:
		query = `SELECT id FROM employees WHERE role = 'hr' ORDER BY id LIMIT 1`
	default:
		return 0, fmt.Errorf("unknown approver role %q", role)
	}

	var userID sql.NullInt64
	err := exec.QueryRowContext(ctx, query, args...).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		r.logger.Error("Failed to resolve approver",
			zap.String("role", role),
			zap.Int64("employee_id", employeeID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to resolve approver: %w", err)
	}
	if !userID.Valid {
		return 0, nil
	}
	return userID.Int64, nil
}

// Verify interface compliance
var _ port.ApproverResolver = (*ApproverResolver)(nil)
