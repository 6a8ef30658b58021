package planner

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CriticError names which structural requirement a planner reply
// failed, so the complaint can be fed back into the next prompt round.
type CriticError struct {
	Message string
}

func (e *CriticError) Error() string { return e.Message }

// shellMetacharacters catch an arg that tries to escape its declared
// strategy (e.g. smuggling a `;` or backtick into what should be a
// plain argument list).
var shellMetacharacters = []string{";", "&&", "||", "`", "$(", "\n"}

// Critique parses raw JSON from the LLM and checks it against the
// structural requirements: required fields present, command an exact
// entry of knownTools (skipped when knownTools is empty; no pattern
// matching is done), args free of unescaped shell
// metacharacters, risk in the known enum, requires_root implies
// risk >= Medium.
func Critique(raw string, knownTools map[string]bool) (*Recipe, error) {
	var r Recipe
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, &CriticError{Message: fmt.Sprintf("reply is not valid JSON: %v", err)}
	}

	if r.Command == "" {
		return nil, &CriticError{Message: "missing required field: command"}
	}
	if r.Purpose == "" {
		return nil, &CriticError{Message: "missing required field: purpose"}
	}

	risk, ok := ParseRiskLevel(r.RiskRaw)
	if !ok {
		return nil, &CriticError{Message: fmt.Sprintf("risk %q is not a known risk level", r.RiskRaw)}
	}
	r.Risk = risk

	if len(knownTools) > 0 && !knownTools[r.Command] {
		return nil, &CriticError{Message: fmt.Sprintf("command %q does not match any whitelisted tool or pattern", r.Command)}
	}

	for _, a := range r.Args {
		for _, meta := range shellMetacharacters {
			if strings.Contains(a, meta) {
				return nil, &CriticError{Message: fmt.Sprintf("argument %q contains an unescaped shell metacharacter %q outside the declared strategy", a, meta)}
			}
		}
	}

	if r.RequiresRoot && r.Risk < Medium {
		return nil, &CriticError{Message: "requires_root is true but risk is below Medium"}
	}

	return &r, nil
}

// MaxPlanningRounds is R in spec §4.2: up to 3 rounds before the
// planner gives up.
const MaxPlanningRounds = 3
