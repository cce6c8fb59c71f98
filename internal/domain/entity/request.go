package entity

import (
	"time"

	"github.com/hrsuite/travel-approval/internal/domain/workflow"
)

// TravelRequest is the central entity of the approval workflow. It is
// mutated only through accepted transitions and never physically deleted;
// terminal requests are retained read-only for history.
type TravelRequest struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Purpose     string    `json:"purpose"`
	Modes       []string  `json:"modes_of_travel"`
	Notes       string    `json:"notes,omitempty"`

	Status workflow.Status `json:"status"`
	Stage  workflow.Stage  `json:"stage"`

	// EscalatedFrom records the stage the request escalated out of, so a
	// director approval knows where to resume. Empty outside ESCALATED.
	EscalatedFrom workflow.Stage `json:"escalated_from,omitempty"`

	// Version increments by exactly one on every accepted mutation and is
	// the optimistic-concurrency token.
	Version int64 `json:"version"`

	StageEnteredAt time.Time `json:"stage_entered_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CurrentApproverRole returns the role whose action is currently awaited.
// Derived from the stage, never stored.
func (r *TravelRequest) CurrentApproverRole() workflow.Role {
	return r.Stage.ApproverRole()
}

// IsOwner reports whether the given actor identity created the request.
func (r *TravelRequest) IsOwner(actorID string) bool {
	return r.OwnerID == actorID
}

// Clone returns a deep copy, so store callers can hand mutators a scratch
// value without exposing shared state.
func (r *TravelRequest) Clone() *TravelRequest {
	c := *r
	c.Modes = append([]string(nil), r.Modes...)
	return &c
}
