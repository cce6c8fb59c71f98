package entity

import (
	"time"

	"github.com/hrsuite/travel-approval/internal/domain/workflow"
)

// AuditEntry is one immutable record per accepted transition. Entries are
// append-only: no update or delete path exists anywhere in the system.
type AuditEntry struct {
	ID        int64           `json:"id"`
	RequestID string          `json:"request_id"`
	ActorID   string          `json:"actor_id"`
	ActorRole workflow.Role   `json:"actor_role"`
	Action    workflow.Action `json:"action"`

	FromStatus workflow.Status `json:"from_status"`
	FromStage  workflow.Stage  `json:"from_stage"`
	ToStatus   workflow.Status `json:"to_status"`
	ToStage    workflow.Stage  `json:"to_stage"`

	// Version is the request version this transition produced. The audit
	// trail for a request therefore carries versions 1..N with no gaps.
	Version int64 `json:"version"`

	Comment   string    `json:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
