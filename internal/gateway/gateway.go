// Package gateway provides an abstraction for the remote assistant vendor.
package gateway

import (
	"context"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

// Gateway defines the remote assistant operations hrdesk depends on.
// Every hard operation (model invocation, vector indexing, file storage) is
// delegated through this interface; local code is orchestration only.
type Gateway interface {
	// Assistant configuration. UpdateAssistant is a full-record replace on
	// the vendor side; callers must pass a complete config obtained from
	// GetAssistant with only the intended fields changed.
	GetAssistant(ctx context.Context, assistantID string) (*domain.AssistantConfig, error)
	UpdateAssistant(ctx context.Context, cfg domain.AssistantConfig) (*domain.AssistantConfig, error)

	// Conversation threads.
	CreateThread(ctx context.Context) (string, error)
	GetThread(ctx context.Context, threadID string) (string, error)

	// Messages on a thread. ListMessages returns newest first.
	AppendMessage(ctx context.Context, threadID string, role domain.Role, text string) (string, error)
	ListMessages(ctx context.Context, threadID string, limit int) ([]domain.ThreadMessage, error)

	// Runs.
	StartRun(ctx context.Context, threadID, assistantID, instructions string) (string, error)
	PollRun(ctx context.Context, threadID, runID string) (domain.RunStatus, string, error)

	// File store.
	UploadFile(ctx context.Context, filename string, data []byte) (domain.FileRef, error)
	GetFile(ctx context.Context, fileID string) (domain.FileRef, error)
	DeleteFile(ctx context.Context, fileID string) error
	ListFiles(ctx context.Context) ([]domain.FileRef, error)

	// Vector index.
	ListIndexFiles(ctx context.Context, indexID string) ([]domain.FileRef, error)
	SubmitIndexBatch(ctx context.Context, indexID string, fileIDs []string) (string, error)
	PollIndexBatch(ctx context.Context, indexID, batchID string) (string, domain.FileCounts, error)
}
