package mutation

import "github.com/jjgarcianorway/anna-assistant-sub011/internal/planner"

// ChangeRecipe is the user-facing description of a multi-step system
// change: what it does, why it matters, and the ordered actions that
// carry it out.
type ChangeRecipe struct {
	Title         string
	Summary       string
	WhyItMatters  string
	Actions       []ChangeAction
	RollbackNotes string
	Source        string // "template" | "planner" | "generative"
}

// AggregateRisk is the max over every action's risk (ReadOnly for a
// recipe with no actions). An action whose Risk is unset counts as
// ReadOnly; no action is treated as forbidden and nothing
// short-circuits the recipe.
func (r ChangeRecipe) AggregateRisk() planner.RiskLevel {
	max := planner.ReadOnly
	for _, a := range r.Actions {
		if a.Risk > max {
			max = a.Risk
		}
	}
	return max
}

// PlanState is the mutation plan's state machine position.
type PlanState int

const (
	Created PlanState = iota
	Previewed
	AwaitingConfirmation
	Confirmed
	BlockedPrivilege
	Executing
	VerifiedSuccess
	RolledBack
	Cancelled
)

func (s PlanState) String() string {
	switch s {
	case Created:
		return "created"
	case Previewed:
		return "previewed"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Confirmed:
		return "confirmed"
	case BlockedPrivilege:
		return "blocked_privilege"
	case Executing:
		return "executing"
	case VerifiedSuccess:
		return "verified_success"
	case RolledBack:
		return "rolled_back"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StepResult records the outcome of executing and verifying one action.
type StepResult struct {
	Action          ChangeAction
	Executed        bool
	ExecutionError  string
	VerificationRan bool
	Verified        bool
	VerifyOutput    string
	RolledBack      bool
	RollbackError   string
}

// MutationPlan is one proposed-and-tracked system change, including
// the state machine transitions it has gone through so far.
type MutationPlan struct {
	ID                string
	Recipe            ChangeRecipe
	Risk              planner.RiskLevel
	State             PlanState
	VerificationChecks []string
	RollbackSteps     []string
	Steps             []StepResult

	// InstalledPackages is the Open-Question resolution: rollback of an
	// install action persists the exact package list that was installed
	// rather than re-deriving it from the recipe at rollback time, so a
	// later recipe-registry change cannot desync a pending rollback.
	InstalledPackages []string
}

// NewPlan constructs a plan in the Created state, pre-computing its
// aggregate risk and per-action verification/rollback descriptions.
func NewPlan(id string, recipe ChangeRecipe) *MutationPlan {
	p := &MutationPlan{
		ID:     id,
		Recipe: recipe,
		Risk:   recipe.AggregateRisk(),
		State:  Created,
	}
	for _, a := range recipe.Actions {
		if a.VerificationCmd != "" {
			p.VerificationChecks = append(p.VerificationChecks, a.VerificationCmd)
		}
		if a.RollbackAction != nil {
			p.RollbackSteps = append(p.RollbackSteps, describeRollback(*a.RollbackAction))
		}
		if a.Kind == InstallPackages {
			p.InstalledPackages = append(p.InstalledPackages, a.Packages...)
		}
	}
	return p
}

func describeRollback(a ChangeAction) string {
	switch a.Kind {
	case InstallPackages:
		return "remove: " + joinOrNone(a.Packages)
	case RemovePackages:
		return "reinstall: " + joinOrNone(a.Packages)
	case EnableService:
		return "disable " + a.ServiceUnit
	case DisableService:
		return "enable " + a.ServiceUnit
	case EditFile:
		return "restore previous contents of " + a.Path
	default:
		return a.Description
	}
}

func joinOrNone(xs []string) string {
	if len(xs) == 0 {
		return "(none)"
	}
	out := xs[0]
	for _, x := range xs[1:] {
		out += ", " + x
	}
	return out
}
