package port

import (
	"context"
	"time"

	"github.com/hrsuite/travel-approval/internal/domain/entity"
	"github.com/hrsuite/travel-approval/internal/domain/workflow"
)

// Mutator is a pure function from the current request to its next shape.
// It receives a private copy; returning an error aborts the swap.
type Mutator func(req *entity.TravelRequest) error

// RequestRepository defines persistence operations for TravelRequest.
// CompareAndSwap is the single mutation path: the mutator is applied only
// if the stored version still equals expectedVersion, and the store bumps
// the version by one atomically with the write. On ErrVersionConflict the
// caller re-reads and retries or surfaces the conflict; it never
// overwrites a concurrent edit.
type RequestRepository interface {
	Create(ctx context.Context, req *entity.TravelRequest) error
	GetByID(ctx context.Context, id string) (*entity.TravelRequest, error)
	CompareAndSwap(ctx context.Context, id string, expectedVersion int64, mutate Mutator) (*entity.TravelRequest, error)

	ListByOwner(ctx context.Context, ownerID string) ([]*entity.TravelRequest, error)
	ListByOwnerAndStage(ctx context.Context, ownerID string, stage workflow.Stage) ([]*entity.TravelRequest, error)
	ListByStage(ctx context.Context, stage workflow.Stage) ([]*entity.TravelRequest, error)
	// ListStalled returns requests sitting at stage since before the cutoff,
	// oldest first. Input to escalation scans.
	ListStalled(ctx context.Context, stage workflow.Stage, enteredBefore time.Time) ([]*entity.TravelRequest, error)
	List(ctx context.Context, limit, offset int) ([]*entity.TravelRequest, error)
}

// AuditRepository defines persistence operations for the append-only audit
// trail. There is deliberately no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	ListByRequest(ctx context.Context, requestID string) ([]*entity.AuditEntry, error)
	CountByRequest(ctx context.Context, requestID string) (int64, error)
}

// Transactor runs fn atomically: every repository call made with the
// context fn receives commits or rolls back as one unit. This is how the
// engine couples the request mutation with its audit entry.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
