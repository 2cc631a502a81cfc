package domain

import "time"

// Session is the process-local state for one interactive chat session.
// It holds the selected customer, the remote thread reference and the
// ordered conversation log. Switching customer resets thread and log.
type Session struct {
	SessionID   string    `json:"session_id"`
	CustomerID  string    `json:"customer_id,omitempty"`
	AssistantID string    `json:"assistant_id,omitempty"`
	IndexID     string    `json:"index_id,omitempty"`
	ThreadID    string    `json:"thread_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Turn is a single entry in a session's conversation log. Immutable once
// appended; ordering is append order.
type Turn struct {
	TurnID    string    `json:"turn_id"`
	SessionID string    `json:"session_id"`
	RunID     string    `json:"run_id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	State     TurnState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Run records one asynchronous assistant execution against a thread.
// The remote run is authoritative; this is the local audit record.
type Run struct {
	RunID     string     `json:"run_id"`
	SessionID string     `json:"session_id"`
	ThreadID  string     `json:"thread_id"`
	Status    RunStatus  `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Customer maps a customer identifier to its remote assistant and vector
// index. The table is static configuration, loaded at startup.
type Customer struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	AssistantID string `json:"assistant_id" yaml:"assistant_id"`
	IndexID     string `json:"index_id" yaml:"index_id"`
}
