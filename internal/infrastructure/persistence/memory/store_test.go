package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrsuite/travel-approval/internal/application/port"
	"github.com/hrsuite/travel-approval/internal/domain/entity"
	"github.com/hrsuite/travel-approval/internal/domain/workflow"
)

func seedRequest(t *testing.T, s *Store, id string) *entity.TravelRequest {
	t.Helper()
	req := &entity.TravelRequest{
		ID:      id,
		OwnerID: "emp-1",
		Stage:   workflow.StageDraft,
		Status:  workflow.StatusDraft,
	}
	require.NoError(t, s.Create(context.Background(), req))
	return req
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRequest(t, s, "r-1")

	got, err := s.GetByID(ctx, "r-1")
	require.NoError(t, err)
	got.Status = workflow.StatusRejected

	// Caller mutation never reaches the stored value
	again, err := s.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, again.Status)
}

func TestStore_CompareAndSwap(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRequest(t, s, "r-1")

	updated, err := s.CompareAndSwap(ctx, "r-1", 0, func(r *entity.TravelRequest) error {
		r.Stage = workflow.StageManagerApproval
		r.Status = workflow.StatusPending
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)

	_, err = s.CompareAndSwap(ctx, "r-1", 0, func(r *entity.TravelRequest) error {
		return nil
	})
	assert.ErrorIs(t, err, port.ErrVersionConflict)

	_, err = s.CompareAndSwap(ctx, "missing", 0, func(r *entity.TravelRequest) error {
		return nil
	})
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestStore_WithinTxRollback(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRequest(t, s, "r-1")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.CompareAndSwap(ctx, "r-1", 0, func(r *entity.TravelRequest) error {
			r.Stage = workflow.StageManagerApproval
			r.Status = workflow.StatusPending
			return nil
		}); err != nil {
			return err
		}
		if err := s.Append(ctx, &entity.AuditEntry{RequestID: "r-1", Version: 1}); err != nil {
			return err
		}
		return fmt.Errorf("late failure")
	})
	require.Error(t, err)

	// Both the request update and the audit entry are undone together
	req, err := s.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), req.Version)
	assert.Equal(t, workflow.StageDraft, req.Stage)

	count, err := s.CountByRequest(ctx, "r-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_WithinTxCommit(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedRequest(t, s, "r-1")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.CompareAndSwap(ctx, "r-1", 0, func(r *entity.TravelRequest) error {
			r.Stage = workflow.StageManagerApproval
			r.Status = workflow.StatusPending
			return nil
		}); err != nil {
			return err
		}
		return s.Append(ctx, &entity.AuditEntry{RequestID: "r-1", Version: 1})
	})
	require.NoError(t, err)

	req, err := s.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), req.Version)

	count, err := s.CountByRequest(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_ListStalled(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	old := seedRequest(t, s, "r-old")
	_, err := s.CompareAndSwap(ctx, old.ID, 0, func(r *entity.TravelRequest) error {
		r.Stage = workflow.StageManagerApproval
		r.Status = workflow.StatusPending
		r.StageEnteredAt = time.Now().UTC().Add(-96 * time.Hour)
		return nil
	})
	require.NoError(t, err)

	fresh := seedRequest(t, s, "r-fresh")
	_, err = s.CompareAndSwap(ctx, fresh.ID, 0, func(r *entity.TravelRequest) error {
		r.Stage = workflow.StageManagerApproval
		r.Status = workflow.StatusPending
		r.StageEnteredAt = time.Now().UTC()
		return nil
	})
	require.NoError(t, err)

	stalled, err := s.ListStalled(ctx, workflow.StageManagerApproval, time.Now().UTC().Add(-48*time.Hour))
	require.NoError(t, err)
	require.Len(t, stalled, 1)
	assert.Equal(t, "r-old", stalled[0].ID)
}

func TestStore_ListPagination(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedRequest(t, s, fmt.Sprintf("r-%d", i))
	}

	page, err := s.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = s.List(ctx, 2, 4)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, err = s.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}
