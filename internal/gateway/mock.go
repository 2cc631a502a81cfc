package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

// MockGateway is an in-memory Gateway for development and tests. It keeps
// threads, messages, files and index membership locally and completes runs
// after a configurable number of polls.
type MockGateway struct {
	mu sync.Mutex

	assistants map[string]domain.AssistantConfig
	threads    map[string][]domain.ThreadMessage
	runs       map[string]*mockRun
	files      map[string]domain.FileRef
	fileData   map[string][]byte
	indexes    map[string][]string
	batches    map[string]mockBatch

	// PollsToComplete is how many PollRun calls a run stays in_progress
	// before completing. Zero completes on the first poll.
	PollsToComplete int

	// FinalRunStatus is the terminal status runs reach. Defaults to completed.
	FinalRunStatus domain.RunStatus

	// Reply is appended to the thread as the assistant message when a run
	// completes. Tests may set Blocks instead for heterogeneous content.
	Reply  string
	Blocks []domain.ContentBlock

	// Failure injection: when set, the named operation returns the error.
	FailOp  string
	FailErr error
}

type mockRun struct {
	threadID string
	polls    int
	status   domain.RunStatus
}

type mockBatch struct {
	status string
	counts domain.FileCounts
}

// Ensure MockGateway implements the Gateway interface.
var _ Gateway = (*MockGateway)(nil)

// NewMockGateway creates a mock gateway seeded with one assistant per given id.
func NewMockGateway(assistantIDs ...string) *MockGateway {
	g := &MockGateway{
		assistants: make(map[string]domain.AssistantConfig),
		threads:    make(map[string][]domain.ThreadMessage),
		runs:       make(map[string]*mockRun),
		files:      make(map[string]domain.FileRef),
		fileData:   make(map[string][]byte),
		indexes:    make(map[string][]string),
		batches:    make(map[string]mockBatch),

		FinalRunStatus: domain.RunStatusCompleted,
		Reply:          "[MOCK] This is a mock assistant reply.",
	}
	for _, id := range assistantIDs {
		g.assistants[id] = domain.AssistantConfig{
			ID:           id,
			Name:         "Mock Assistant",
			Model:        "mock-gpt-4",
			Instructions: "You are a mock assistant.",
			Tools:        []domain.AssistantTool{{Type: domain.ToolTypeFileSearch}},
		}
	}
	return g
}

// SeedAssistant registers or replaces an assistant record.
func (g *MockGateway) SeedAssistant(cfg domain.AssistantConfig) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.assistants[cfg.ID] = cfg
}

func (g *MockGateway) fail(op string) error {
	if g.FailOp == op && g.FailErr != nil {
		return g.FailErr
	}
	return nil
}

func (g *MockGateway) GetAssistant(ctx context.Context, assistantID string) (*domain.AssistantConfig, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("assistants.get"); err != nil {
		return nil, err
	}
	cfg, ok := g.assistants[assistantID]
	if !ok {
		return nil, fmt.Errorf("assistant %s not found", assistantID)
	}
	out := cfg
	return &out, nil
}

func (g *MockGateway) UpdateAssistant(ctx context.Context, cfg domain.AssistantConfig) (*domain.AssistantConfig, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("assistants.update"); err != nil {
		return nil, err
	}
	if _, ok := g.assistants[cfg.ID]; !ok {
		return nil, fmt.Errorf("assistant %s not found", cfg.ID)
	}
	// Full replace, like the vendor.
	g.assistants[cfg.ID] = cfg
	out := cfg
	return &out, nil
}

func (g *MockGateway) CreateThread(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("threads.create"); err != nil {
		return "", err
	}
	id := "thread_" + uuid.New().String()[:8]
	g.threads[id] = nil
	return id, nil
}

func (g *MockGateway) GetThread(ctx context.Context, threadID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("threads.get"); err != nil {
		return "", err
	}
	if _, ok := g.threads[threadID]; !ok {
		return "", fmt.Errorf("thread %s not found", threadID)
	}
	return threadID, nil
}

func (g *MockGateway) AppendMessage(ctx context.Context, threadID string, role domain.Role, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("messages.append"); err != nil {
		return "", err
	}
	if _, ok := g.threads[threadID]; !ok {
		return "", fmt.Errorf("thread %s not found", threadID)
	}
	id := "msg_" + uuid.New().String()[:8]
	g.threads[threadID] = append(g.threads[threadID], domain.ThreadMessage{
		ID:        id,
		Role:      role,
		Content:   []domain.ContentBlock{{Kind: domain.ContentBlockText, Value: text}},
		CreatedAt: time.Now(),
	})
	return id, nil
}

// ListMessages returns newest first, matching the vendor default ordering.
func (g *MockGateway) ListMessages(ctx context.Context, threadID string, limit int) ([]domain.ThreadMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("messages.list"); err != nil {
		return nil, err
	}
	stored := g.threads[threadID]
	out := make([]domain.ThreadMessage, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (g *MockGateway) StartRun(ctx context.Context, threadID, assistantID, instructions string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("runs.start"); err != nil {
		return "", err
	}
	if _, ok := g.threads[threadID]; !ok {
		return "", fmt.Errorf("thread %s not found", threadID)
	}
	id := "run_" + uuid.New().String()[:8]
	g.runs[id] = &mockRun{threadID: threadID, status: domain.RunStatusQueued}
	return id, nil
}

func (g *MockGateway) PollRun(ctx context.Context, threadID, runID string) (domain.RunStatus, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("runs.poll"); err != nil {
		return "", "", err
	}
	run, ok := g.runs[runID]
	if !ok {
		return "", "", fmt.Errorf("run %s not found", runID)
	}
	if run.status.IsTerminal() {
		return run.status, "", nil
	}
	run.polls++
	if run.polls <= g.PollsToComplete {
		run.status = domain.RunStatusInProgress
		return run.status, "", nil
	}
	run.status = g.FinalRunStatus
	if run.status == domain.RunStatusCompleted {
		blocks := g.Blocks
		if blocks == nil {
			blocks = []domain.ContentBlock{{Kind: domain.ContentBlockText, Value: g.Reply}}
		}
		g.threads[run.threadID] = append(g.threads[run.threadID], domain.ThreadMessage{
			ID:        "msg_" + uuid.New().String()[:8],
			Role:      domain.RoleAssistant,
			Content:   blocks,
			CreatedAt: time.Now(),
		})
	}
	return run.status, "", nil
}

func (g *MockGateway) UploadFile(ctx context.Context, filename string, data []byte) (domain.FileRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("files.create"); err != nil {
		return domain.FileRef{}, err
	}
	ref := domain.FileRef{
		ID:        "file_" + uuid.New().String()[:8],
		Filename:  filename,
		CreatedAt: time.Now(),
	}
	g.files[ref.ID] = ref
	g.fileData[ref.ID] = append([]byte(nil), data...)
	return ref, nil
}

func (g *MockGateway) GetFile(ctx context.Context, fileID string) (domain.FileRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("files.get"); err != nil {
		return domain.FileRef{}, err
	}
	ref, ok := g.files[fileID]
	if !ok {
		return domain.FileRef{}, fmt.Errorf("file %s not found", fileID)
	}
	return ref, nil
}

func (g *MockGateway) DeleteFile(ctx context.Context, fileID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("files.delete"); err != nil {
		return err
	}
	if _, ok := g.files[fileID]; !ok {
		return fmt.Errorf("file %s not found", fileID)
	}
	delete(g.files, fileID)
	delete(g.fileData, fileID)
	for indexID, members := range g.indexes {
		kept := members[:0]
		for _, id := range members {
			if id != fileID {
				kept = append(kept, id)
			}
		}
		g.indexes[indexID] = kept
	}
	return nil
}

func (g *MockGateway) ListFiles(ctx context.Context) ([]domain.FileRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("files.list"); err != nil {
		return nil, err
	}
	refs := make([]domain.FileRef, 0, len(g.files))
	for _, ref := range g.files {
		refs = append(refs, ref)
	}
	return refs, nil
}

func (g *MockGateway) ListIndexFiles(ctx context.Context, indexID string) ([]domain.FileRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("index.listFiles"); err != nil {
		return nil, err
	}
	refs := make([]domain.FileRef, 0, len(g.indexes[indexID]))
	for _, fileID := range g.indexes[indexID] {
		refs = append(refs, domain.FileRef{ID: fileID, CreatedAt: g.files[fileID].CreatedAt})
	}
	return refs, nil
}

func (g *MockGateway) SubmitIndexBatch(ctx context.Context, indexID string, fileIDs []string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("index.submitBatch"); err != nil {
		return "", err
	}
	for _, id := range fileIDs {
		if _, ok := g.files[id]; !ok {
			return "", fmt.Errorf("file %s not found", id)
		}
	}
	g.indexes[indexID] = append(g.indexes[indexID], fileIDs...)
	batchID := "batch_" + uuid.New().String()[:8]
	g.batches[batchID] = mockBatch{
		status: "completed",
		counts: domain.FileCounts{Completed: len(fileIDs), Total: len(fileIDs)},
	}
	return batchID, nil
}

func (g *MockGateway) PollIndexBatch(ctx context.Context, indexID, batchID string) (string, domain.FileCounts, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("index.pollBatch"); err != nil {
		return "", domain.FileCounts{}, err
	}
	batch, ok := g.batches[batchID]
	if !ok {
		return "", domain.FileCounts{}, fmt.Errorf("batch %s not found", batchID)
	}
	return batch.status, batch.counts, nil
}

// RunIDs returns the ids of every started run, for test assertions.
func (g *MockGateway) RunIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.runs))
	for id := range g.runs {
		ids = append(ids, id)
	}
	return ids
}

// FileData returns the stored bytes for a file, for test assertions.
func (g *MockGateway) FileData(fileID string) []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fileData[fileID]
}
