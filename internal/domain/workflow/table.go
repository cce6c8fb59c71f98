package workflow

// Transition is one row of the authoritative transition table: performing
// Action from a given stage moves the request to (ToStage, ToStatus),
// provided the actor satisfies the role gate.
type Transition struct {
	// RequiredRole gates the action. Ignored when OwnerOnly is set.
	RequiredRole Role

	// OwnerOnly actions (SUBMIT, UPDATE, WITHDRAW) are gated on the actor
	// being the request owner rather than holding a particular role.
	OwnerOnly bool

	// Resume marks a transition whose target depends on the stage the
	// request escalated out of; ToStage/ToStatus are unset and the target
	// is looked up with ResumeTarget.
	Resume bool

	// KeepStatus keeps the current status instead of ToStatus. Draft edits
	// stay DRAFT or CHANGES_REQUESTED, whichever the request already was.
	KeepStatus bool

	ToStage  Stage
	ToStatus Status
}

// transitions is keyed by (current stage, action). An absent entry means
// the action is not legal from that stage, full stop.
var transitions = map[Stage]map[Action]Transition{
	StageDraft: {
		ActionUpdate:   {OwnerOnly: true, ToStage: StageDraft, KeepStatus: true},
		ActionSubmit:   {OwnerOnly: true, ToStage: StageManagerApproval, ToStatus: StatusPending},
		ActionWithdraw: {OwnerOnly: true, ToStage: StageRejected, ToStatus: StatusRejected},
	},
	StageManagerApproval: {
		ActionApprove:        {RequiredRole: RoleManager, ToStage: StageFinanceApproval, ToStatus: StatusPending},
		ActionReject:         {RequiredRole: RoleManager, ToStage: StageRejected, ToStatus: StatusRejected},
		ActionRequestChanges: {RequiredRole: RoleManager, ToStage: StageDraft, ToStatus: StatusChangesRequested},
		ActionEscalate:       {RequiredRole: RoleSystem, ToStage: StageEscalated, ToStatus: StatusEscalated},
		ActionWithdraw:       {OwnerOnly: true, ToStage: StageRejected, ToStatus: StatusRejected},
	},
	StageFinanceApproval: {
		ActionApprove:        {RequiredRole: RoleFinance, ToStage: StageTravelDesk, ToStatus: StatusApproved},
		ActionReject:         {RequiredRole: RoleFinance, ToStage: StageRejected, ToStatus: StatusRejected},
		ActionRequestChanges: {RequiredRole: RoleFinance, ToStage: StageDraft, ToStatus: StatusChangesRequested},
		ActionEscalate:       {RequiredRole: RoleSystem, ToStage: StageEscalated, ToStatus: StatusEscalated},
		ActionWithdraw:       {OwnerOnly: true, ToStage: StageRejected, ToStatus: StatusRejected},
	},
	StageTravelDesk: {
		ActionBook:     {RequiredRole: RoleTravelDesk, ToStage: StageHRNotification, ToStatus: StatusBooked},
		ActionWithdraw: {OwnerOnly: true, ToStage: StageRejected, ToStatus: StatusRejected},
	},
	StageHRNotification: {
		ActionAcknowledge: {RequiredRole: RoleHR, ToStage: StageCompleted, ToStatus: StatusBooked},
		ActionWithdraw:    {OwnerOnly: true, ToStage: StageRejected, ToStatus: StatusRejected},
	},
	StageEscalated: {
		ActionApprove:        {RequiredRole: RoleDirector, Resume: true},
		ActionReject:         {RequiredRole: RoleDirector, ToStage: StageRejected, ToStatus: StatusRejected},
		ActionRequestChanges: {RequiredRole: RoleDirector, ToStage: StageDraft, ToStatus: StatusChangesRequested},
		ActionWithdraw:       {OwnerOnly: true, ToStage: StageRejected, ToStatus: StatusRejected},
	},
}

// resumeTargets maps the stage a request escalated out of to where a
// director approval sends it: the same hop a regular approval at that
// stage would have made.
var resumeTargets = map[Stage]Transition{
	StageManagerApproval: {ToStage: StageFinanceApproval, ToStatus: StatusPending},
	StageFinanceApproval: {ToStage: StageTravelDesk, ToStatus: StatusApproved},
}

// Lookup returns the transition for (stage, action), or false when the
// action is not legal from that stage.
func Lookup(stage Stage, action Action) (Transition, bool) {
	byAction, ok := transitions[stage]
	if !ok {
		return Transition{}, false
	}
	t, ok := byAction[action]
	return t, ok
}

// ResumeTarget resolves a director approval of an escalated request back
// onto the pipeline, based on the stage it escalated out of.
func ResumeTarget(escalatedFrom Stage) (Transition, bool) {
	t, ok := resumeTargets[escalatedFrom]
	return t, ok
}

// Escalatable returns the stages that carry an ESCALATE rule, in pipeline
// order. The escalation scheduler scans exactly these.
func Escalatable() []Stage {
	return []Stage{StageManagerApproval, StageFinanceApproval}
}
