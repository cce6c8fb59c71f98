package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hrsuite/travel-approval/internal/application/port"
	"github.com/hrsuite/travel-approval/internal/domain/entity"
	"github.com/hrsuite/travel-approval/internal/domain/workflow"
	"github.com/hrsuite/travel-approval/pkg/database"
	"go.uber.org/zap"
)

// AuditRepository implements port.AuditRepository on sqlite. Append-only:
// the table has no UPDATE or DELETE statements anywhere in this package.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Append writes one immutable audit entry
func (r *AuditRepository) Append(ctx context.Context, entry *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (
			request_id, actor_id, actor_role, action,
			from_status, from_stage, to_status, to_stage,
			version, comment, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		entry.RequestID,
		entry.ActorID,
		entry.ActorRole.String(),
		entry.Action.String(),
		entry.FromStatus.String(),
		entry.FromStage.String(),
		entry.ToStatus.String(),
		entry.ToStage.String(),
		entry.Version,
		entry.Comment,
		entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.String("request_id", entry.RequestID),
			zap.Error(err))
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// ListByRequest retrieves all audit entries for a request in creation order
func (r *AuditRepository) ListByRequest(ctx context.Context, requestID string) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, request_id, actor_id, actor_role, action,
			from_status, from_stage, to_status, to_stage,
			version, comment, timestamp
		FROM audit_entries
		WHERE request_id = ?
		ORDER BY id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to list audit entries", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.AuditEntry
	for rows.Next() {
		var entry entity.AuditEntry
		var actorRole, action, fromStatus, fromStage, toStatus, toStage string

		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.ActorID,
			&actorRole,
			&action,
			&fromStatus,
			&fromStage,
			&toStatus,
			&toStage,
			&entry.Version,
			&entry.Comment,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.ActorRole = workflow.Role(actorRole)
		entry.Action = workflow.Action(action)
		entry.FromStatus = workflow.Status(fromStatus)
		entry.FromStage = workflow.Stage(fromStage)
		entry.ToStatus = workflow.Status(toStatus)
		entry.ToStage = workflow.Stage(toStage)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// CountByRequest returns the number of audit entries for a request
func (r *AuditRepository) CountByRequest(ctx context.Context, requestID string) (int64, error) {
	query := `SELECT COUNT(*) FROM audit_entries WHERE request_id = ?`

	var count int64
	if err := r.getExecutor(ctx).QueryRowContext(ctx, query, requestID).Scan(&count); err != nil {
		r.logger.Error("Failed to count audit entries", zap.String("request_id", requestID), zap.Error(err))
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	return count, nil
}

// getExecutor returns the transaction carried by the context, if any
func (r *AuditRepository) getExecutor(ctx context.Context) executor {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
