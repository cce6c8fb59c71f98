package workflow

// Status is the externally visible outcome label of a travel request,
// derived alongside the stage on every transition.
type Status string

const (
	StatusDraft            Status = "DRAFT"
	StatusPending          Status = "PENDING"
	StatusApproved         Status = "APPROVED"
	StatusRejected         Status = "REJECTED"
	StatusChangesRequested Status = "CHANGES_REQUESTED"
	StatusEscalated        Status = "ESCALATED"
	StatusBooked           Status = "BOOKED"
)

var validStatuses = map[Status]bool{
	StatusDraft:            true,
	StatusPending:          true,
	StatusApproved:         true,
	StatusRejected:         true,
	StatusChangesRequested: true,
	StatusEscalated:        true,
	StatusBooked:           true,
}

// validPairs enumerates every (stage, status) combination a persisted
// request may carry. Any pair outside this set is an invariant violation.
var validPairs = map[Stage]map[Status]bool{
	StageDraft:           {StatusDraft: true, StatusChangesRequested: true},
	StageManagerApproval: {StatusPending: true},
	StageFinanceApproval: {StatusPending: true},
	StageTravelDesk:      {StatusApproved: true},
	StageHRNotification:  {StatusBooked: true},
	StageCompleted:       {StatusBooked: true},
	StageRejected:        {StatusRejected: true},
	StageEscalated:       {StatusEscalated: true},
}

// IsValid returns true if the status is a known status label
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// ValidPair reports whether the (stage, status) combination is one the
// transition table can produce.
func ValidPair(stage Stage, status Status) bool {
	return validPairs[stage][status]
}
