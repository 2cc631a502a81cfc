// Package domain defines the core domain models for hrdesk.
package domain

// RunStatus mirrors the vendor's asynchronous run lifecycle.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
)

// IsTerminal reports whether the run can no longer change status.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TurnState tracks the two-phase conversation log: a turn is appended
// optimistically before the remote call and confirmed once the call lands.
// A pending turn is never removed, even if the remote call fails.
type TurnState string

const (
	TurnStatePending   TurnState = "pending"
	TurnStateConfirmed TurnState = "confirmed"
)

// ContentBlockKind tags one unit of a message's content payload. The vendor
// representation is heterogeneous and has changed shape across versions, so
// extraction must check the kind before touching the value.
type ContentBlockKind string

const (
	ContentBlockText  ContentBlockKind = "text"
	ContentBlockOther ContentBlockKind = "other"
)
