package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrsuite/travel-approval/internal/domain/workflow"
	"github.com/hrsuite/travel-approval/internal/infrastructure/persistence/memory"
	engine "github.com/hrsuite/travel-approval/internal/workflow"
)

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	eng := engine.NewEngine(store, store, store, zap.NewNop())

	employee := workflow.Actor{ID: "emp-1", Role: workflow.RoleEmployee}
	manager := workflow.Actor{ID: "mgr-1", Role: workflow.RoleManager}

	req, err := eng.Create(ctx, employee, engine.RequestFields{
		Origin:      "Cologne",
		Destination: "Prague",
		StartDate:   time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 12, 4, 0, 0, 0, 0, time.UTC),
		Purpose:     "trade fair",
		Modes:       []string{"TRAIN", "TAXI"},
	})
	require.NoError(t, err)

	_, err = eng.ApplyAction(ctx, req.ID, employee, workflow.ActionSubmit, engine.ActionPayload{})
	require.NoError(t, err)
	_, err = eng.ApplyAction(ctx, req.ID, manager, workflow.ActionApprove, engine.ActionPayload{Comment: "go ahead"})
	require.NoError(t, err)

	exporter := NewExporter(store, store, zap.NewNop())
	f, err := exporter.Export(ctx)
	require.NoError(t, err)
	defer f.Close()

	// Request sheet: header plus one row
	id, err := f.GetCellValue(requestSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, req.ID, id)

	destination, err := f.GetCellValue(requestSheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "Prague", destination)

	modes, err := f.GetCellValue(requestSheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "TRAIN, TAXI", modes)

	stage, err := f.GetCellValue(requestSheet, "J2")
	require.NoError(t, err)
	assert.Equal(t, "FINANCE_APPROVAL", stage)

	// Audit sheet: both transitions, in order
	action, err := f.GetCellValue(auditSheet, "D2")
	require.NoError(t, err)
	assert.Equal(t, "SUBMIT", action)

	action, err = f.GetCellValue(auditSheet, "D3")
	require.NoError(t, err)
	assert.Equal(t, "APPROVE", action)

	comment, err := f.GetCellValue(auditSheet, "J3")
	require.NoError(t, err)
	assert.Equal(t, "go ahead", comment)

	// No stray third row
	empty, err := f.GetCellValue(auditSheet, "A4")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExporter_EmptyStore(t *testing.T) {
	store := memory.NewStore()
	exporter := NewExporter(store, store, zap.NewNop())

	f, err := exporter.Export(context.Background())
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue(requestSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	body, err := f.GetCellValue(requestSheet, "A2")
	require.NoError(t, err)
	assert.Empty(t, body)
}
