package workflow

import "testing"

func TestStage_IsTerminal(t *testing.T) {
	tests := []struct {
		stage    Stage
		expected bool
	}{
		{StageDraft, false},
		{StageManagerApproval, false},
		{StageFinanceApproval, false},
		{StageTravelDesk, false},
		{StageHRNotification, false},
		{StageEscalated, false},
		{StageCompleted, true},
		{StageRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.IsTerminal(); got != tt.expected {
				t.Errorf("Stage.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStage_IsValid(t *testing.T) {
	if !StageDraft.IsValid() {
		t.Error("StageDraft should be valid")
	}
	if Stage("INVALID").IsValid() {
		t.Error("unknown stage should not be valid")
	}
	if Stage("").IsValid() {
		t.Error("empty stage should not be valid")
	}
}

func TestStage_ApproverRole(t *testing.T) {
	tests := []struct {
		stage    Stage
		expected Role
	}{
		{StageDraft, RoleEmployee},
		{StageManagerApproval, RoleManager},
		{StageFinanceApproval, RoleFinance},
		{StageTravelDesk, RoleTravelDesk},
		{StageHRNotification, RoleHR},
		{StageEscalated, RoleDirector},
		{StageCompleted, RoleNone},
		{StageRejected, RoleNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.ApproverRole(); got != tt.expected {
				t.Errorf("Stage.ApproverRole() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseAction(t *testing.T) {
	if action, ok := ParseAction("APPROVE"); !ok || action != ActionApprove {
		t.Errorf("ParseAction(APPROVE) = %v, %v", action, ok)
	}
	if _, ok := ParseAction("DELETE_EVERYTHING"); ok {
		t.Error("unknown action string should not parse")
	}
	if _, ok := ParseAction(""); ok {
		t.Error("empty action string should not parse")
	}
}

func TestLookup_TransitionTable(t *testing.T) {
	tests := []struct {
		name     string
		from     Stage
		action   Action
		role     Role
		owner    bool
		toStage  Stage
		toStatus Status
	}{
		{"submit draft", StageDraft, ActionSubmit, RoleNone, true, StageManagerApproval, StatusPending},
		{"manager approve", StageManagerApproval, ActionApprove, RoleManager, false, StageFinanceApproval, StatusPending},
		{"manager reject", StageManagerApproval, ActionReject, RoleManager, false, StageRejected, StatusRejected},
		{"manager request changes", StageManagerApproval, ActionRequestChanges, RoleManager, false, StageDraft, StatusChangesRequested},
		{"manager stage escalation", StageManagerApproval, ActionEscalate, RoleSystem, false, StageEscalated, StatusEscalated},
		{"finance approve", StageFinanceApproval, ActionApprove, RoleFinance, false, StageTravelDesk, StatusApproved},
		{"finance reject", StageFinanceApproval, ActionReject, RoleFinance, false, StageRejected, StatusRejected},
		{"finance request changes", StageFinanceApproval, ActionRequestChanges, RoleFinance, false, StageDraft, StatusChangesRequested},
		{"finance stage escalation", StageFinanceApproval, ActionEscalate, RoleSystem, false, StageEscalated, StatusEscalated},
		{"travel desk book", StageTravelDesk, ActionBook, RoleTravelDesk, false, StageHRNotification, StatusBooked},
		{"hr acknowledge", StageHRNotification, ActionAcknowledge, RoleHR, false, StageCompleted, StatusBooked},
		{"director reject", StageEscalated, ActionReject, RoleDirector, false, StageRejected, StatusRejected},
		{"director request changes", StageEscalated, ActionRequestChanges, RoleDirector, false, StageDraft, StatusChangesRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transition, ok := Lookup(tt.from, tt.action)
			if !ok {
				t.Fatalf("Lookup(%s, %s) not found", tt.from, tt.action)
			}
			if transition.OwnerOnly != tt.owner {
				t.Errorf("OwnerOnly = %v, want %v", transition.OwnerOnly, tt.owner)
			}
			if !tt.owner && transition.RequiredRole != tt.role {
				t.Errorf("RequiredRole = %v, want %v", transition.RequiredRole, tt.role)
			}
			if transition.ToStage != tt.toStage {
				t.Errorf("ToStage = %v, want %v", transition.ToStage, tt.toStage)
			}
			if transition.ToStatus != tt.toStatus {
				t.Errorf("ToStatus = %v, want %v", transition.ToStatus, tt.toStatus)
			}
		})
	}
}

func TestLookup_TerminalStagesHaveNoTransitions(t *testing.T) {
	actions := []Action{
		ActionUpdate, ActionSubmit, ActionApprove, ActionReject,
		ActionRequestChanges, ActionBook, ActionAcknowledge,
		ActionEscalate, ActionWithdraw,
	}

	for _, stage := range []Stage{StageCompleted, StageRejected} {
		for _, action := range actions {
			if _, ok := Lookup(stage, action); ok {
				t.Errorf("terminal stage %s should not permit %s", stage, action)
			}
		}
	}
}

func TestLookup_WithdrawFromAllNonTerminalStages(t *testing.T) {
	nonTerminal := []Stage{
		StageDraft, StageManagerApproval, StageFinanceApproval,
		StageTravelDesk, StageHRNotification, StageEscalated,
	}

	for _, stage := range nonTerminal {
		transition, ok := Lookup(stage, ActionWithdraw)
		if !ok {
			t.Errorf("WITHDRAW should be permitted from %s", stage)
			continue
		}
		if !transition.OwnerOnly {
			t.Errorf("WITHDRAW from %s should be owner-only", stage)
		}
		if transition.ToStage != StageRejected || transition.ToStatus != StatusRejected {
			t.Errorf("WITHDRAW from %s should land in (REJECTED, REJECTED)", stage)
		}
	}
}

func TestTransitionTable_TargetsAreValidPairs(t *testing.T) {
	for stage, byAction := range transitions {
		for action, transition := range byAction {
			if transition.Resume || transition.KeepStatus {
				continue
			}
			if !ValidPair(transition.ToStage, transition.ToStatus) {
				t.Errorf("transition (%s, %s) targets off-table pair (%s, %s)",
					stage, action, transition.ToStage, transition.ToStatus)
			}
		}
	}
}

func TestResumeTarget(t *testing.T) {
	target, ok := ResumeTarget(StageManagerApproval)
	if !ok || target.ToStage != StageFinanceApproval || target.ToStatus != StatusPending {
		t.Errorf("resume from MANAGER_APPROVAL = %+v, %v", target, ok)
	}

	target, ok = ResumeTarget(StageFinanceApproval)
	if !ok || target.ToStage != StageTravelDesk || target.ToStatus != StatusApproved {
		t.Errorf("resume from FINANCE_APPROVAL = %+v, %v", target, ok)
	}

	if _, ok := ResumeTarget(StageDraft); ok {
		t.Error("DRAFT should have no resume target")
	}
	if _, ok := ResumeTarget(""); ok {
		t.Error("empty stage should have no resume target")
	}
}

func TestValidPair(t *testing.T) {
	valid := []struct {
		stage  Stage
		status Status
	}{
		{StageDraft, StatusDraft},
		{StageDraft, StatusChangesRequested},
		{StageManagerApproval, StatusPending},
		{StageFinanceApproval, StatusPending},
		{StageTravelDesk, StatusApproved},
		{StageHRNotification, StatusBooked},
		{StageCompleted, StatusBooked},
		{StageRejected, StatusRejected},
		{StageEscalated, StatusEscalated},
	}
	for _, pair := range valid {
		if !ValidPair(pair.stage, pair.status) {
			t.Errorf("(%s, %s) should be a valid pair", pair.stage, pair.status)
		}
	}

	if ValidPair(StageDraft, StatusApproved) {
		t.Error("(DRAFT, APPROVED) should not be a valid pair")
	}
	if ValidPair(StageCompleted, StatusPending) {
		t.Error("(COMPLETED, PENDING) should not be a valid pair")
	}
}

func TestEscalatable(t *testing.T) {
	stages := Escalatable()
	if len(stages) != 2 {
		t.Fatalf("Escalatable() returned %d stages, want 2", len(stages))
	}
	for _, stage := range stages {
		transition, ok := Lookup(stage, ActionEscalate)
		if !ok {
			t.Errorf("escalatable stage %s has no ESCALATE rule", stage)
			continue
		}
		if transition.RequiredRole != RoleSystem {
			t.Errorf("ESCALATE from %s should require the system role", stage)
		}
	}
}
