package guardrail

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name            string
		category        Category
		active          bool
		violated        bool
		approvalGranted bool
		want            Decision
	}{
		{"inactive safety allows", CategorySafety, false, true, false, DecisionAllow},
		{"not violated scope allows", CategoryScope, true, false, false, DecisionAllow},
		{"violated scope blocks", CategoryScope, true, true, false, DecisionBlock},
		{"violated scope blocks despite approval", CategoryScope, true, true, true, DecisionBlock},
		{"violated safety blocks despite approval", CategorySafety, true, true, true, DecisionBlock},
		{"violated approval needs approval", CategoryApproval, true, true, false, DecisionNeedsApproval},
		{"violated approval with grant allows", CategoryApproval, true, true, true, DecisionAllow},
		{"violated quality needs approval", CategoryQuality, true, true, false, DecisionNeedsApproval},
		{"violated quality with grant allows", CategoryQuality, true, true, true, DecisionAllow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.category, tt.active, tt.violated, tt.approvalGranted)
			if got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	safety := Guardrail{ID: "GR-1", EntityType: EntityTask, EntityID: "T1", Category: CategorySafety, Active: true}
	approval := Guardrail{ID: "GR-2", EntityType: EntityTodo, EntityID: "D1", Category: CategoryApproval, Active: true}
	quality := Guardrail{ID: "GR-3", EntityType: EntityPlan, EntityID: "P1", Category: CategoryQuality, Active: true}
	inactive := Guardrail{ID: "GR-4", EntityType: EntityTask, EntityID: "T1", Category: CategoryScope, Active: false}

	t.Run("no guardrails allows with empty matches", func(t *testing.T) {
		got := Evaluate(nil, Input{})
		if got.Decision != DecisionAllow || got.Blocked() {
			t.Errorf("Decision = %s, want allow", got.Decision)
		}
		if got.Matches == nil || len(got.Matches) != 0 {
			t.Errorf("Matches = %v, want empty non-nil slice", got.Matches)
		}
	})

	t.Run("matches reported even when allowed", func(t *testing.T) {
		got := Evaluate([]Guardrail{safety, approval, quality}, Input{})
		if got.Decision != DecisionAllow {
			t.Errorf("Decision = %s, want allow", got.Decision)
		}
		if len(got.Matches) != 3 {
			t.Fatalf("len(Matches) = %d, want 3", len(got.Matches))
		}
		for _, m := range got.Matches {
			if m.Decision != DecisionAllow {
				t.Errorf("match %s decision = %s, want allow", m.ID, m.Decision)
			}
		}
	})

	t.Run("inactive guardrails are ignored", func(t *testing.T) {
		got := Evaluate([]Guardrail{inactive}, Input{ViolatedIDs: []string{"GR-4"}})
		if got.Decision != DecisionAllow || len(got.Matches) != 0 {
			t.Errorf("got %+v, want allow with no matches", got)
		}
	})

	t.Run("block dominates needs_approval", func(t *testing.T) {
		got := Evaluate([]Guardrail{approval, safety}, Input{ViolatedIDs: []string{"GR-1", "GR-2"}})
		if got.Decision != DecisionBlock {
			t.Errorf("Decision = %s, want block", got.Decision)
		}
	})

	t.Run("needs approval when any approval guardrail violated", func(t *testing.T) {
		got := Evaluate([]Guardrail{approval, quality}, Input{ViolatedIDs: []string{"GR-3"}})
		if got.Decision != DecisionNeedsApproval {
			t.Errorf("Decision = %s, want needs_approval", got.Decision)
		}
	})

	t.Run("approved ids clear needs approval", func(t *testing.T) {
		got := Evaluate([]Guardrail{approval}, Input{ViolatedIDs: []string{"GR-2"}, ApprovedIDs: []string{"GR-2"}})
		if got.Decision != DecisionAllow {
			t.Errorf("Decision = %s, want allow", got.Decision)
		}
	})

	t.Run("config flags simulate outcomes", func(t *testing.T) {
		flagged := safety
		flagged.Config = map[string]any{"violated": true}
		got := Evaluate([]Guardrail{flagged}, Input{})
		if got.Decision != DecisionBlock {
			t.Errorf("Decision = %s, want block", got.Decision)
		}

		granted := approval
		granted.Config = map[string]any{"violated": true, "approvalGranted": true}
		got = Evaluate([]Guardrail{granted}, Input{})
		if got.Decision != DecisionAllow {
			t.Errorf("Decision = %s, want allow", got.Decision)
		}
	})

	t.Run("non-boolean config flags are ignored", func(t *testing.T) {
		odd := safety
		odd.Config = map[string]any{"violated": "yes"}
		if got := Evaluate([]Guardrail{odd}, Input{}); got.Decision != DecisionAllow {
			t.Errorf("Decision = %s, want allow", got.Decision)
		}
	})
}
