// Package store provides local persistence for sessions, turns and runs.
// The remote gateway stays authoritative for threads, files and index
// membership; this store exists for the conversation log and run audit.
package store

import (
	"context"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

// Store defines the persistence operations used by the service layer.
type Store interface {
	Close() error

	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	GetOrCreateSession(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateSessionThread(ctx context.Context, sessionID, threadID string) error
	UpdateSessionCustomer(ctx context.Context, sessionID string, customer domain.Customer) error

	CreateTurn(ctx context.Context, turn *domain.Turn) error
	ConfirmTurn(ctx context.Context, turnID, runID string) error
	GetTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error)
	ClearTurns(ctx context.Context, sessionID string) error

	CreateRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, runID string) (*domain.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus) error
	UpdateRunCompleted(ctx context.Context, runID string, status domain.RunStatus, errMsg string) error
}
