package guardrail

// Guardrail is the evaluator's view of a persisted guardrail.
type Guardrail struct {
	ID         string
	Name       string
	EntityType EntityType
	EntityID   string
	Category   Category
	Active     bool
	Config     map[string]any
}

// Input carries caller-supplied facts about which guardrails were violated or approved.
type Input struct {
	ViolatedIDs []string
	ApprovedIDs []string
}

// Match records how a single guardrail classified.
type Match struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Category   Category   `json:"category"`
	Decision   Decision   `json:"decision"`
}

// Result is the folded decision plus every active guardrail that was considered.
type Result struct {
	Decision Decision
	Matches  []Match
}

// Blocked reports whether the action must not proceed.
func (r Result) Blocked() bool {
	return r.Decision != DecisionAllow
}

// Evaluate classifies each active guardrail and folds them into one decision:
// block if any blocks, else needs_approval if any needs approval, else allow.
// Matches are returned even when the action proceeds.
func Evaluate(guardrails []Guardrail, in Input) Result {
	violated := toSet(in.ViolatedIDs)
	approved := toSet(in.ApprovedIDs)

	result := Result{Decision: DecisionAllow, Matches: []Match{}}
	for _, g := range guardrails {
		if !g.Active {
			continue
		}
		isViolated := violated[g.ID] || configFlag(g.Config, ConfigViolated)
		isApproved := approved[g.ID] || configFlag(g.Config, ConfigApprovalGranted)
		decision := Classify(g.Category, g.Active, isViolated, isApproved)

		result.Matches = append(result.Matches, Match{
			ID:         g.ID,
			Name:       g.Name,
			EntityType: g.EntityType,
			EntityID:   g.EntityID,
			Category:   g.Category,
			Decision:   decision,
		})
		result.Decision = fold(result.Decision, decision)
	}
	return result
}

func fold(acc, next Decision) Decision {
	if acc == DecisionBlock || next == DecisionBlock {
		return DecisionBlock
	}
	if acc == DecisionNeedsApproval || next == DecisionNeedsApproval {
		return DecisionNeedsApproval
	}
	return DecisionAllow
}

func configFlag(config map[string]any, key string) bool {
	v, ok := config[key].(bool)
	return ok && v
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
