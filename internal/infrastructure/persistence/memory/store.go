// Package memory holds an in-memory store implementing the same ports as
// the sqlite repositories. It backs engine and facade tests and keeps the
// engine free of any dependency on the persistence technology.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hrsuite/travel-approval/internal/application/port"
	"github.com/hrsuite/travel-approval/internal/domain/entity"
	"github.com/hrsuite/travel-approval/internal/domain/workflow"
)

// Store implements port.RequestRepository, port.AuditRepository and
// port.Transactor over maps guarded by one mutex. WithinTx holds the
// mutex for the whole critical section and rolls back to a snapshot on
// error, mirroring the sqlite transaction semantics.
type Store struct {
	mu       sync.Mutex
	requests map[string]*entity.TravelRequest
	audits   map[string][]*entity.AuditEntry
	nextID   int64
}

type inTxKey struct{}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		requests: make(map[string]*entity.TravelRequest),
		audits:   make(map[string][]*entity.AuditEntry),
		nextID:   1,
	}
}

// WithinTx runs fn atomically against the store and undoes all of its
// writes if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqSnap := make(map[string]*entity.TravelRequest, len(s.requests))
	for id, req := range s.requests {
		reqSnap[id] = req.Clone()
	}
	auditSnap := make(map[string][]*entity.AuditEntry, len(s.audits))
	for id, entries := range s.audits {
		auditSnap[id] = append([]*entity.AuditEntry(nil), entries...)
	}
	idSnap := s.nextID

	if err := fn(context.WithValue(ctx, inTxKey{}, true)); err != nil {
		s.requests = reqSnap
		s.audits = auditSnap
		s.nextID = idSnap
		return err
	}
	return nil
}

// lock acquires the store mutex unless the context already holds it
// through WithinTx. Returns the matching unlock.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(inTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Create persists a new travel request
func (s *Store) Create(ctx context.Context, req *entity.TravelRequest) error {
	defer s.lock(ctx)()
	s.requests[req.ID] = req.Clone()
	return nil
}

// GetByID retrieves a travel request by ID
func (s *Store) GetByID(ctx context.Context, id string) (*entity.TravelRequest, error) {
	defer s.lock(ctx)()
	req, ok := s.requests[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return req.Clone(), nil
}

// CompareAndSwap applies the mutator only if the stored version still
// equals expectedVersion
func (s *Store) CompareAndSwap(ctx context.Context, id string, expectedVersion int64, mutate port.Mutator) (*entity.TravelRequest, error) {
	defer s.lock(ctx)()

	current, ok := s.requests[id]
	if !ok {
		return nil, port.ErrNotFound
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
	s.requests[id] = next

	return next.Clone(), nil
}

// ListByOwner retrieves all requests created by the given owner
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*entity.TravelRequest, error) {
	return s.filter(ctx, func(r *entity.TravelRequest) bool {
		return r.OwnerID == ownerID
	})
}

// ListByOwnerAndStage retrieves the owner's requests sitting at a stage
func (s *Store) ListByOwnerAndStage(ctx context.Context, ownerID string, stage workflow.Stage) ([]*entity.TravelRequest, error) {
	return s.filter(ctx, func(r *entity.TravelRequest) bool {
		return r.OwnerID == ownerID && r.Stage == stage
	})
}

// ListByStage retrieves all requests sitting at a stage
func (s *Store) ListByStage(ctx context.Context, stage workflow.Stage) ([]*entity.TravelRequest, error) {
	return s.filter(ctx, func(r *entity.TravelRequest) bool {
		return r.Stage == stage
	})
}

// ListStalled retrieves requests that entered the stage before the cutoff
func (s *Store) ListStalled(ctx context.Context, stage workflow.Stage, enteredBefore time.Time) ([]*entity.TravelRequest, error) {
	return s.filter(ctx, func(r *entity.TravelRequest) bool {
		return r.Stage == stage && r.StageEnteredAt.Before(enteredBefore)
	})
}

// List retrieves a page of requests
func (s *Store) List(ctx context.Context, limit, offset int) ([]*entity.TravelRequest, error) {
	all, err := s.filter(ctx, func(*entity.TravelRequest) bool { return true })
	if err != nil {
		return nil, err
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) filter(ctx context.Context, keep func(*entity.TravelRequest) bool) ([]*entity.TravelRequest, error) {
	defer s.lock(ctx)()

	var out []*entity.TravelRequest
	for _, req := range s.requests {
		if keep(req) {
			out = append(out, req.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Append writes one audit entry
func (s *Store) Append(ctx context.Context, entry *entity.AuditEntry) error {
	defer s.lock(ctx)()
	entry.ID = s.nextID
	s.nextID++
	copied := *entry
	s.audits[entry.RequestID] = append(s.audits[entry.RequestID], &copied)
	return nil
}

// ListByRequest retrieves all audit entries for a request in creation order
func (s *Store) ListByRequest(ctx context.Context, requestID string) ([]*entity.AuditEntry, error) {
	defer s.lock(ctx)()
	entries := s.audits[requestID]
	out := make([]*entity.AuditEntry, len(entries))
	for i, entry := range entries {
		copied := *entry
		out[i] = &copied
	}
	return out, nil
}

// CountByRequest returns the number of audit entries for a request
func (s *Store) CountByRequest(ctx context.Context, requestID string) (int64, error) {
	defer s.lock(ctx)()
	return int64(len(s.audits[requestID])), nil
}

// Verify interface compliance
var (
	_ port.RequestRepository = (*Store)(nil)
	_ port.AuditRepository   = (*Store)(nil)
	_ port.Transactor        = (*Store)(nil)
)
