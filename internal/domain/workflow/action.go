package workflow

// Action represents an event that can cause a state transition. The set is
// closed: unknown action strings never reach the transition table.
type Action string

const (
	ActionUpdate         Action = "UPDATE"
	ActionSubmit         Action = "SUBMIT"
	ActionApprove        Action = "APPROVE"
	ActionReject         Action = "REJECT"
	ActionRequestChanges Action = "REQUEST_CHANGES"
	ActionBook           Action = "BOOK"
	ActionAcknowledge    Action = "ACKNOWLEDGE"
	ActionEscalate       Action = "ESCALATE"
	ActionWithdraw       Action = "WITHDRAW"
)

var validActions = map[Action]bool{
	ActionUpdate:         true,
	ActionSubmit:         true,
	ActionApprove:        true,
	ActionReject:         true,
	ActionRequestChanges: true,
	ActionBook:           true,
	ActionAcknowledge:    true,
	ActionEscalate:       true,
	ActionWithdraw:       true,
}

// IsValid returns true if the action is part of the closed action set
func (a Action) IsValid() bool {
	return validActions[a]
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// ParseAction converts the wire form of an action into the closed set.
// Unknown strings return false.
func ParseAction(s string) (Action, bool) {
	a := Action(s)
	return a, a.IsValid()
}
