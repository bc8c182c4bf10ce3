// Package policy evaluates the submission precondition policy: who may
// post, and which draft fields must be present.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Decision outcomes.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Deny reasons mapped to user-facing notices by the coordinator.
const (
	ReasonNotLoggedIn    = "not_logged_in"
	ReasonMissingPicture = "missing_picture"
	ReasonMissingTitle   = "missing_title"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine from the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.submission.decision"),
		rego.Module("submission.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}
	return &Engine{query: query}, nil
}

// Input is the draft snapshot the policy is evaluated over.
type Input struct {
	UID        int  `json:"uid"`
	HasPicture bool `json:"has_picture"`
	HasTitle   bool `json:"has_title"`
}

// Evaluate checks the submission policy and returns the decision and, for
// denials, the reason.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return "", "", fmt.Errorf("policy returned no decision")
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return "", "", fmt.Errorf("policy returned unexpected type %T", results[0].Expressions[0].Value)
	}
	decision, _ := obj["decision"].(string)
	reason, _ := obj["reason"].(string)
	if decision == "" {
		return "", "", fmt.Errorf("policy returned empty decision")
	}
	return decision, reason, nil
}

// SubmissionPolicy is the default submission precondition policy: an
// authenticated user, a pending picture, and a title, checked in that
// order.
const SubmissionPolicy = `
package submission

default decision := {"decision": "deny", "reason": "not_logged_in"}

decision := {"decision": "allow", "reason": ""} if {
	input.uid != 0
	input.has_picture
	input.has_title
}

decision := {"decision": "deny", "reason": "missing_picture"} if {
	input.uid != 0
	not input.has_picture
}

decision := {"decision": "deny", "reason": "missing_title"} if {
	input.uid != 0
	input.has_picture
	not input.has_title
}
`
