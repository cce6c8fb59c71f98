package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hrsuite/travel-approval/internal/application/port"
	domain "github.com/hrsuite/travel-approval/internal/domain/workflow"
	"github.com/hrsuite/travel-approval/internal/workflow"
	"go.uber.org/zap"
)

// EscalationConfig holds configuration for the escalation worker
type EscalationConfig struct {
	// ScanInterval is the pause between scans for stalled requests.
	ScanInterval time.Duration

	// StageSLAs maps a stage to how long a request may sit there before
	// the worker forces an ESCALATE transition. Stages without an entry
	// (or without an ESCALATE rule) are never escalated.
	StageSLAs map[domain.Stage]time.Duration
}

// DefaultEscalationConfig returns the default scan cadence and stage SLAs
func DefaultEscalationConfig() EscalationConfig {
	return EscalationConfig{
		ScanInterval: time.Minute,
		StageSLAs: map[domain.Stage]time.Duration{
			domain.StageManagerApproval: 48 * time.Hour,
			domain.StageFinanceApproval: 48 * time.Hour,
		},
	}
}

// EscalationWorker periodically scans for requests stalled past their
// stage SLA and drives an ESCALATE transition through the engine, exactly
// as a human actor would. It never bypasses the state machine: a scan that
// races a human approval simply loses the version check and moves on.
type EscalationWorker struct {
	config   EscalationConfig
	requests port.RequestRepository
	engine   *workflow.Engine
	logger   *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
	now       func() time.Time
}

// NewEscalationWorker creates a new escalation worker
func NewEscalationWorker(
	config EscalationConfig,
	requests port.RequestRepository,
	engine *workflow.Engine,
	logger *zap.Logger,
) *EscalationWorker {
	return &EscalationWorker{
		config:   config,
		requests: requests,
		engine:   engine,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the worker scan loop
func (w *EscalationWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("escalation worker already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("EscalationWorker started",
		zap.Duration("scan_interval", w.config.ScanInterval),
		zap.Int("monitored_stages", len(w.config.StageSLAs)))

	go w.scanLoop()
	return nil
}

// Stop gracefully terminates the worker. The loop exits at the next scan
// boundary, never mid-transition.
func (w *EscalationWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("EscalationWorker stopped")
	return nil
}

// Name returns the worker name for identification
func (w *EscalationWorker) Name() string {
	return "EscalationWorker"
}

func (w *EscalationWorker) scanLoop() {
	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Scan loop context cancelled")
			return
		case <-ticker.C:
			w.ScanOnce(w.ctx)
		}
	}
}

// ScanOnce performs one pass over every escalatable stage and fires an
// ESCALATE for each request stalled past its SLA.
func (w *EscalationWorker) ScanOnce(ctx context.Context) {
	now := w.now()

	for _, stage := range domain.Escalatable() {
		sla, ok := w.config.StageSLAs[stage]
		if !ok {
			continue
		}

		stalled, err := w.requests.ListStalled(ctx, stage, now.Add(-sla))
		if err != nil {
			w.logger.Error("Failed to scan for stalled requests",
				zap.String("stage", stage.String()),
				zap.Error(err))
			continue
		}

		for _, req := range stalled {
			w.escalate(ctx, req.ID, stage)
		}
	}
}

func (w *EscalationWorker) escalate(ctx context.Context, requestID string, stage domain.Stage) {
	_, err := w.engine.ApplyAction(ctx, requestID, domain.SystemActor, domain.ActionEscalate, workflow.ActionPayload{
		Comment: fmt.Sprintf("SLA elapsed at stage %s", stage),
	})
	if err == nil {
		w.logger.Warn("Request escalated past stage SLA",
			zap.String("request_id", requestID),
			zap.String("stage", stage.String()))
		return
	}

	// Raced by a human action: the request already left the stage or
	// changed version. A no-op, not an operational error.
	if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, port.ErrVersionConflict) {
		w.logger.Debug("Escalation superseded by concurrent action",
			zap.String("request_id", requestID))
		return
	}

	w.logger.Error("Failed to escalate request",
		zap.String("request_id", requestID),
		zap.Error(err))
}
