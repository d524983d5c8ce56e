package project

import "testing"

func TestFinishImpactReportThenRefusal(t *testing.T) {
	st := NewState("id", "n", "/p")
	st.Scope = &ScopeDefinition{AcceptanceCriteria: []string{"works"}}
	st.CriteriaStatus = map[string]bool{"works": false}
	st.ChangedFiles = []string{"UserController.php"}

	res := Finish(st, FinishInput{Confirmed: false})
	if len(res.ImpactHints) != 1 || !st.ImpactCheckPending {
		t.Fatalf("expected one impact hint and pending flag, got %+v pending=%v", res, st.ImpactCheckPending)
	}

	res = Finish(st, FinishInput{Confirmed: true})
	if !res.Refused {
		t.Fatalf("expected refusal with unfulfilled criterion, got %+v", res)
	}
}

func TestFinishSucceedsAfterCriteriaFulfilled(t *testing.T) {
	st := NewState("id", "n", "/p")
	st.Scope = &ScopeDefinition{AcceptanceCriteria: []string{"works"}}
	st.CriteriaStatus = map[string]bool{"works": true}

	res := Finish(st, FinishInput{Confirmed: true})
	if !res.Done || st.Phase != PhaseDone {
		t.Fatalf("expected success, got %+v phase=%v", res, st.Phase)
	}
	if st.Scope != nil {
		t.Errorf("expected scope cleared on finish")
	}
}

func TestFinishBlockingAlertWinsEvenWithForce(t *testing.T) {
	st := NewState("id", "n", "/p")
	st.Alerts = []Alert{{Message: "danger", Severity: SeverityBlocking, Acknowledged: false}}

	res := Finish(st, FinishInput{Confirmed: true, Force: true})
	if !res.Refused {
		t.Fatalf("blocking alert must refuse even with force=true, got %+v", res)
	}
}

func TestSetScopeResetsPerScopeState(t *testing.T) {
	st := NewState("id", "n", "/p")
	st.HTTPTestsPerformed = 5
	st.ChecklistResults = map[string]bool{"old": true}

	SetScope(st, &ScopeDefinition{Description: "new task"}, ModeProgramming, false)

	if st.HTTPTestsPerformed != 0 {
		t.Errorf("HTTPTestsPerformed = %d, want reset to 0 on new scope", st.HTTPTestsPerformed)
	}
	if len(st.ChecklistResults) != 0 {
		t.Errorf("ChecklistResults = %v, want reset", st.ChecklistResults)
	}
}
