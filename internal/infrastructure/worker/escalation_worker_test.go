package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/hrsuite/travel-approval/internal/domain/workflow"
	"github.com/hrsuite/travel-approval/internal/infrastructure/persistence/memory"
	"github.com/hrsuite/travel-approval/internal/workflow"
)

func setupEscalationTest(t *testing.T) (*workflow.Engine, *memory.Store, *EscalationWorker) {
	t.Helper()
	store := memory.NewStore()
	engine := workflow.NewEngine(store, store, store, zap.NewNop())

	w := NewEscalationWorker(EscalationConfig{
		ScanInterval: time.Minute,
		StageSLAs: map[domain.Stage]time.Duration{
			domain.StageManagerApproval: 48 * time.Hour,
			domain.StageFinanceApproval: 48 * time.Hour,
		},
	}, store, engine, zap.NewNop())

	return engine, store, w
}

func submitRequest(t *testing.T, engine *workflow.Engine) string {
	t.Helper()
	ctx := context.Background()
	employee := domain.Actor{ID: "emp-1", Role: domain.RoleEmployee}

	req, err := engine.Create(ctx, employee, workflow.RequestFields{
		Origin:      "Munich",
		Destination: "Oslo",
		StartDate:   time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 11, 6, 0, 0, 0, 0, time.UTC),
		Purpose:     "vendor audit",
		Modes:       []string{"FLIGHT"},
	})
	require.NoError(t, err)

	_, err = engine.ApplyAction(ctx, req.ID, employee, domain.ActionSubmit, workflow.ActionPayload{})
	require.NoError(t, err)
	return req.ID
}

func TestEscalationWorker_EscalatesStalledRequest(t *testing.T) {
	engine, store, w := setupEscalationTest(t)
	ctx := context.Background()
	id := submitRequest(t, engine)

	// Pretend three days passed since the request entered manager approval
	w.now = func() time.Time { return time.Now().UTC().Add(72 * time.Hour) }
	w.ScanOnce(ctx)

	req, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageEscalated, req.Stage)
	assert.Equal(t, domain.StatusEscalated, req.Status)
	assert.Equal(t, domain.StageManagerApproval, req.EscalatedFrom)

	entries, err := store.ListByRequest(ctx, id)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, domain.ActionEscalate, last.Action)
	assert.Equal(t, domain.SystemActor.ID, last.ActorID)
	assert.Contains(t, last.Comment, "SLA elapsed")
}

func TestEscalationWorker_IgnoresFreshRequests(t *testing.T) {
	engine, store, w := setupEscalationTest(t)
	ctx := context.Background()
	id := submitRequest(t, engine)

	w.ScanOnce(ctx)

	req, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageManagerApproval, req.Stage)
}

func TestEscalationWorker_RescanIsNoOp(t *testing.T) {
	engine, store, w := setupEscalationTest(t)
	ctx := context.Background()
	id := submitRequest(t, engine)

	w.now = func() time.Time { return time.Now().UTC().Add(72 * time.Hour) }
	w.ScanOnce(ctx)

	escalated, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.StageEscalated, escalated.Stage)

	// Already escalated: a second pass must not touch it again
	w.ScanOnce(ctx)

	after, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, escalated.Version, after.Version)

	count, err := store.CountByRequest(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, after.Version, count)
}

func TestEscalationWorker_SkipsStagesWithoutSLA(t *testing.T) {
	store := memory.NewStore()
	engine := workflow.NewEngine(store, store, store, zap.NewNop())

	w := NewEscalationWorker(EscalationConfig{
		ScanInterval: time.Minute,
		StageSLAs: map[domain.Stage]time.Duration{
			domain.StageFinanceApproval: 48 * time.Hour,
		},
	}, store, engine, zap.NewNop())

	ctx := context.Background()
	id := submitRequest(t, engine)

	// Stalled at manager approval, but only finance carries an SLA here
	w.now = func() time.Time { return time.Now().UTC().Add(72 * time.Hour) }
	w.ScanOnce(ctx)

	req, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageManagerApproval, req.Stage)
}

func TestEscalationWorker_StartStop(t *testing.T) {
	_, _, w := setupEscalationTest(t)

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
