package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hrsuite/travel-approval/internal/application/port"
	"github.com/hrsuite/travel-approval/internal/domain/entity"
	"github.com/hrsuite/travel-approval/internal/domain/workflow"
	"github.com/hrsuite/travel-approval/pkg/database"
	"go.uber.org/zap"
)

// executor abstracts *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const requestColumns = `id, owner_id, origin, destination, start_date, end_date,
	purpose, modes, notes, status, stage, escalated_from, version,
	stage_entered_at, created_at, updated_at`

// RequestRepository implements port.RequestRepository on sqlite
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new travel request at version 0
func (r *RequestRepository) Create(ctx context.Context, req *entity.TravelRequest) error {
	modes, err := json.Marshal(req.Modes)
	if err != nil {
		return fmt.Errorf("failed to marshal travel modes: %w", err)
	}

	query := `
		INSERT INTO travel_requests (
			id, owner_id, origin, destination, start_date, end_date,
			purpose, modes, notes, status, stage, escalated_from, version,
			stage_entered_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.getExecutor(ctx).ExecContext(ctx, query,
		req.ID,
		req.OwnerID,
		req.Origin,
		req.Destination,
		req.StartDate,
		req.EndDate,
		req.Purpose,
		string(modes),
		req.Notes,
		req.Status.String(),
		req.Stage.String(),
		req.EscalatedFrom.String(),
		req.Version,
		req.StageEnteredAt,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create travel request", zap.String("id", req.ID), zap.Error(err))
		return fmt.Errorf("failed to create travel request: %w", err)
	}

	return nil
}

// GetByID retrieves a travel request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*entity.TravelRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM travel_requests WHERE id = ?`, requestColumns)

	req, err := scanRequest(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, port.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get travel request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get travel request: %w", err)
	}

	return req, nil
}

// CompareAndSwap applies the mutator to the stored request only if its
// version still equals expectedVersion. The UPDATE carries the version in
// its predicate, so a concurrent writer that got there first leaves zero
// rows affected and the call fails with port.ErrVersionConflict.
func (r *RequestRepository) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, mutate port.Mutator) (*entity.TravelRequest, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Version != expectedVersion {
		return nil, port.ErrVersionConflict
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}

	next.Version = expectedVersion + 1
	next.UpdatedAt = time.Now().UTC()

	modes, err := json.Marshal(next.Modes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal travel modes: %w", err)
	}

	query := `
		UPDATE travel_requests SET
			origin = ?, destination = ?, start_date = ?, end_date = ?,
			purpose = ?, modes = ?, notes = ?, status = ?, stage = ?,
			escalated_from = ?, version = ?, stage_entered_at = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		next.Origin,
		next.Destination,
		next.StartDate,
		next.EndDate,
		next.Purpose,
		string(modes),
		next.Notes,
		next.Status.String(),
		next.Stage.String(),
		next.EscalatedFrom.String(),
		next.Version,
		next.StageEnteredAt,
		next.UpdatedAt,
		id,
		expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update travel request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update travel request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, port.ErrVersionConflict
	}

	return next, nil
}

// ListByOwner retrieves all requests created by the given owner
func (r *RequestRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.TravelRequest, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM travel_requests WHERE owner_id = ? ORDER BY created_at DESC`,
		requestColumns)
	return r.queryRequests(ctx, query, ownerID)
}

// ListByOwnerAndStage retrieves the owner's requests sitting at a stage
func (r *RequestRepository) ListByOwnerAndStage(ctx context.Context, ownerID string, stage workflow.Stage) ([]*entity.TravelRequest, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM travel_requests WHERE owner_id = ? AND stage = ? ORDER BY created_at DESC`,
		requestColumns)
	return r.queryRequests(ctx, query, ownerID, stage.String())
}

// ListByStage retrieves all requests sitting at a stage, oldest first
func (r *RequestRepository) ListByStage(ctx context.Context, stage workflow.Stage) ([]*entity.TravelRequest, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM travel_requests WHERE stage = ? ORDER BY stage_entered_at ASC`,
		requestColumns)
	return r.queryRequests(ctx, query, stage.String())
}

// ListStalled retrieves requests that entered the stage before the cutoff
func (r *RequestRepository) ListStalled(ctx context.Context, stage workflow.Stage, enteredBefore time.Time) ([]*entity.TravelRequest, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM travel_requests WHERE stage = ? AND stage_entered_at < ? ORDER BY stage_entered_at ASC`,
		requestColumns)
	return r.queryRequests(ctx, query, stage.String(), enteredBefore)
}

// List retrieves a page of requests, newest first
func (r *RequestRepository) List(ctx context.Context, limit, offset int) ([]*entity.TravelRequest, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM travel_requests ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		requestColumns)
	return r.queryRequests(ctx, query, limit, offset)
}

func (r *RequestRepository) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*entity.TravelRequest, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query travel requests", zap.Error(err))
		return nil, fmt.Errorf("failed to query travel requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.TravelRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan travel request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.TravelRequest, error) {
	var req entity.TravelRequest
	var modes, status, stage, escalatedFrom string

	err := row.Scan(
		&req.ID,
		&req.OwnerID,
		&req.Origin,
		&req.Destination,
		&req.StartDate,
		&req.EndDate,
		&req.Purpose,
		&modes,
		&req.Notes,
		&status,
		&stage,
		&escalatedFrom,
		&req.Version,
		&req.StageEnteredAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(modes), &req.Modes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal travel modes: %w", err)
	}
	req.Status = workflow.Status(status)
	req.Stage = workflow.Stage(stage)
	req.EscalatedFrom = workflow.Stage(escalatedFrom)

	return &req, nil
}

// getExecutor returns the transaction carried by the context, if any
func (r *RequestRepository) getExecutor(ctx context.Context) executor {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
