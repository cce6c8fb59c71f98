package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hrsuite/travel-approval/internal/application/port"
	"github.com/hrsuite/travel-approval/internal/domain/entity"
	"github.com/hrsuite/travel-approval/internal/domain/workflow"
	"go.uber.org/zap"
)

// RequestFields carries the mutable fields of a travel request, as
// supplied on create and on draft edits.
type RequestFields struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Purpose     string    `json:"purpose"`
	Modes       []string  `json:"modes_of_travel"`
	Notes       string    `json:"notes"`
}

// ActionPayload carries optional data alongside an action: an approver
// comment, and field edits for owner draft updates.
type ActionPayload struct {
	Comment string
	Fields  *RequestFields
}

// Engine validates and applies state transitions. Every accepted
// transition commits the request mutation and its audit entry as one
// transaction; every rejected one leaves the store untouched.
type Engine struct {
	requests port.RequestRepository
	audits   port.AuditRepository
	tx       port.Transactor
	now      func() time.Time
	logger   *zap.Logger
}

// NewEngine creates a new transition engine
func NewEngine(
	requests port.RequestRepository,
	audits port.AuditRepository,
	tx port.Transactor,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		requests: requests,
		audits:   audits,
		tx:       tx,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// WithClock overrides the engine clock. Tests use it to pin timestamps.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Create creates a new travel request in DRAFT for the acting owner.
// Creation is version 0 and carries no audit entry; the trail starts with
// the first transition.
func (e *Engine) Create(ctx context.Context, actor workflow.Actor, fields RequestFields) (*entity.TravelRequest, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("%w: missing owner identity", workflow.ErrInvalidRequest)
	}
	if err := validateFields(&fields, false); err != nil {
		return nil, err
	}

	now := e.now()
	req := &entity.TravelRequest{
		ID:             uuid.NewString(),
		OwnerID:        actor.ID,
		Origin:         fields.Origin,
		Destination:    fields.Destination,
		StartDate:      fields.StartDate,
		EndDate:        fields.EndDate,
		Purpose:        fields.Purpose,
		Modes:          fields.Modes,
		Notes:          fields.Notes,
		Status:         workflow.StatusDraft,
		Stage:          workflow.StageDraft,
		Version:        0,
		StageEnteredAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := e.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	e.logger.Info("Travel request created",
		zap.String("request_id", req.ID),
		zap.String("owner_id", req.OwnerID))
	return req, nil
}

// ApplyAction looks up the transition for (current stage, action),
// enforces the role gate, and applies it under optimistic concurrency.
// Exactly one of two concurrent calls against the same version succeeds;
// the loser gets port.ErrVersionConflict and must re-fetch.
func (e *Engine) ApplyAction(ctx context.Context, requestID string, actor workflow.Actor, action workflow.Action, payload ActionPayload) (*entity.TravelRequest, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action %q", workflow.ErrInvalidTransition, action)
	}

	req, err := e.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	rule, ok := workflow.Lookup(req.Stage, action)
	if !ok {
		return nil, fmt.Errorf("%w: action %s from stage %s",
			workflow.ErrInvalidTransition, action, req.Stage)
	}

	if err := checkRole(req, actor, rule); err != nil {
		return nil, err
	}

	target := rule
	if rule.Resume {
		target, ok = workflow.ResumeTarget(req.EscalatedFrom)
		if !ok {
			return nil, fmt.Errorf("%w: no resume target for escalation from %q",
				workflow.ErrInvalidTransition, req.EscalatedFrom)
		}
	}

	toStatus := target.ToStatus
	if rule.KeepStatus {
		toStatus = req.Status
	}

	if err := e.guard(req, action, payload); err != nil {
		return nil, err
	}

	fromStage, fromStatus := req.Stage, req.Status
	now := e.now()

	var updated *entity.TravelRequest
	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err = e.requests.CompareAndSwap(ctx, requestID, req.Version, func(r *entity.TravelRequest) error {
			if payload.Fields != nil {
				applyFields(r, payload.Fields)
			}
			if action == workflow.ActionEscalate {
				r.EscalatedFrom = r.Stage
			} else if r.Stage == workflow.StageEscalated {
				r.EscalatedFrom = ""
			}
			if r.Stage != target.ToStage {
				r.StageEnteredAt = now
			}
			r.Stage = target.ToStage
			r.Status = toStatus
			return nil
		})
		if err != nil {
			return err
		}

		return e.audits.Append(ctx, &entity.AuditEntry{
			RequestID:  requestID,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     action,
			FromStatus: fromStatus,
			FromStage:  fromStage,
			ToStatus:   updated.Status,
			ToStage:    updated.Stage,
			Version:    updated.Version,
			Comment:    payload.Comment,
			Timestamp:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Transition applied",
		zap.String("request_id", requestID),
		zap.String("action", action.String()),
		zap.String("actor_id", actor.ID),
		zap.String("from_stage", fromStage.String()),
		zap.String("to_stage", updated.Stage.String()),
		zap.Int64("version", updated.Version))
	return updated, nil
}

// checkRole enforces the transition's role gate: owner identity for
// owner-only actions, exact role match otherwise.
func checkRole(req *entity.TravelRequest, actor workflow.Actor, rule workflow.Transition) error {
	if rule.OwnerOnly {
		if !req.IsOwner(actor.ID) {
			return fmt.Errorf("%w: actor %q is not the request owner", workflow.ErrForbidden, actor.ID)
		}
		return nil
	}
	if actor.Role != rule.RequiredRole {
		return fmt.Errorf("%w: action requires role %s, actor has %s",
			workflow.ErrForbidden, rule.RequiredRole, actor.Role)
	}
	return nil
}

// guard runs the field-level checks an action demands before any store
// write happens.
func (e *Engine) guard(req *entity.TravelRequest, action workflow.Action, payload ActionPayload) error {
	switch action {
	case workflow.ActionSubmit:
		submitted := req.Clone()
		if payload.Fields != nil {
			applyFields(submitted, payload.Fields)
		}
		if len(submitted.Modes) == 0 {
			return fmt.Errorf("%w: at least one travel mode is required", workflow.ErrInvalidRequest)
		}
		if submitted.EndDate.Before(submitted.StartDate) {
			return fmt.Errorf("%w: end date precedes start date", workflow.ErrInvalidRequest)
		}
	case workflow.ActionUpdate:
		if payload.Fields == nil {
			return fmt.Errorf("%w: no fields to update", workflow.ErrInvalidRequest)
		}
		// Modes may only be emptied while the request is still a plain
		// draft; once submitted and returned for changes, the non-empty
		// modes invariant holds.
		return validateFields(payload.Fields, req.Status != workflow.StatusDraft)
	}
	return nil
}

func applyFields(r *entity.TravelRequest, f *RequestFields) {
	r.Origin = f.Origin
	r.Destination = f.Destination
	r.StartDate = f.StartDate
	r.EndDate = f.EndDate
	r.Purpose = f.Purpose
	r.Modes = append([]string(nil), f.Modes...)
	r.Notes = f.Notes
}

func validateFields(f *RequestFields, requireModes bool) error {
	if f.EndDate.Before(f.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", workflow.ErrInvalidRequest)
	}
	if requireModes && len(f.Modes) == 0 {
		return fmt.Errorf("%w: at least one travel mode is required", workflow.ErrInvalidRequest)
	}
	return nil
}
