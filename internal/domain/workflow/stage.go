package workflow

// Stage represents the workflow position of a travel request: who must act next.
type Stage string

const (
	StageDraft           Stage = "DRAFT"
	StageManagerApproval Stage = "MANAGER_APPROVAL"
	StageFinanceApproval Stage = "FINANCE_APPROVAL"
	StageTravelDesk      Stage = "TRAVEL_DESK"
	StageHRNotification  Stage = "HR_NOTIFICATION"
	StageCompleted       Stage = "COMPLETED"
	StageRejected        Stage = "REJECTED"
	StageEscalated       Stage = "ESCALATED"
)

var validStages = map[Stage]bool{
	StageDraft:           true,
	StageManagerApproval: true,
	StageFinanceApproval: true,
	StageTravelDesk:      true,
	StageHRNotification:  true,
	StageCompleted:       true,
	StageRejected:        true,
	StageEscalated:       true,
}

var terminalStages = map[Stage]bool{
	StageCompleted: true,
	StageRejected:  true,
}

// approverRoles maps each stage to the role whose action is awaited there.
var approverRoles = map[Stage]Role{
	StageDraft:           RoleEmployee,
	StageManagerApproval: RoleManager,
	StageFinanceApproval: RoleFinance,
	StageTravelDesk:      RoleTravelDesk,
	StageHRNotification:  RoleHR,
	StageEscalated:       RoleDirector,
}

// IsTerminal returns true if the stage is terminal (no further transitions allowed)
func (s Stage) IsTerminal() bool {
	return terminalStages[s]
}

// IsValid returns true if the stage is a known workflow stage
func (s Stage) IsValid() bool {
	return validStages[s]
}

// ApproverRole returns the role expected to act while the request sits at
// this stage. Terminal stages await nobody and return RoleNone.
func (s Stage) ApproverRole() Role {
	if role, ok := approverRoles[s]; ok {
		return role
	}
	return RoleNone
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}
