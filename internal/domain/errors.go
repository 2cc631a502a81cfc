package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Remote calls are wrapped at the
// call site; none of these is ever fatal to the process.
var (
	// ErrEmptyReply means a completed run produced no extractable text.
	ErrEmptyReply = errors.New("no extractable text in assistant reply")

	// ErrRunTimeout means the run did not reach a terminal status within the
	// configured wait ceiling. The remote run is not cancelled.
	ErrRunTimeout = errors.New("run did not complete within timeout")
)

// ValidationError reports rejected local input (empty message, unknown
// customer, missing identifiers). NotFound marks a lookup miss rather than
// malformed input; transports map it to a not-found response.
type ValidationError struct {
	Field    string
	Reason   string
	NotFound bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RunFailedError reports a run that reached a non-completed terminal status.
type RunFailedError struct {
	RunID  string
	Status RunStatus
	Detail string
}

func (e *RunFailedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("run %s ended with status %s: %s", e.RunID, e.Status, e.Detail)
	}
	return fmt.Sprintf("run %s ended with status %s", e.RunID, e.Status)
}

// GatewayError wraps a transport or auth failure talking to the vendor.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// IngestionError reports a per-file staging or upload failure.
type IngestionError struct {
	Filename string
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Filename, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// BindingError reports a rejected assistant/index association.
type BindingError struct {
	AssistantID string
	IndexID     string
	Err         error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("bind index %s to assistant %s: %v", e.IndexID, e.AssistantID, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }
