// Package policy evaluates upload admission policy with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine for ingestion admission.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.ingest_policy.decision"),
		rego.Module("ingest_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// UploadInput is the policy input for one uploaded file.
type UploadInput struct {
	Filename   string `json:"filename"`
	MediaType  string `json:"media_type"`
	SizeBytes  int64  `json:"size_bytes"`
	CustomerID string `json:"customer_id"`
}

// Evaluate checks the ingestion policy for one upload.
// Returns: decision (allow, block), error.
func (e *Engine) Evaluate(ctx context.Context, input UploadInput) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default; an empty result means it was not loaded.
		return "block", nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return "block", nil
}

// DefaultPolicy is the default ingestion policy content: a media-type allow
// list and a size ceiling.
const DefaultPolicy = `
package ingest_policy

default decision = "block"

allowed_types = {
	"application/pdf",
	"text/plain",
	"text/markdown",
	"text/html",
	"text/csv",
	"application/json",
}

decision = "allow" {
	allowed_types[input.media_type]
	input.size_bytes <= 10485760
}
`
