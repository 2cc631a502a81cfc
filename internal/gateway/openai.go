package gateway

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

// OpenAIGateway implements Gateway against the OpenAI Assistants v2 API.
type OpenAIGateway struct {
	client *openai.Client
}

// Ensure OpenAIGateway implements the Gateway interface.
var _ Gateway = (*OpenAIGateway)(nil)

// NewOpenAIGateway creates a gateway for the given API key. baseURL overrides
// the vendor endpoint when non-empty (e.g. a compatible proxy).
func NewOpenAIGateway(apiKey, baseURL string) *OpenAIGateway {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIGateway{client: openai.NewClientWithConfig(clientConfig)}
}

func (g *OpenAIGateway) GetAssistant(ctx context.Context, assistantID string) (*domain.AssistantConfig, error) {
	assistant, err := g.client.RetrieveAssistant(ctx, assistantID)
	if err != nil {
		return nil, &domain.GatewayError{Op: "assistants.get", Err: err}
	}
	cfg := fromAssistant(assistant)
	return &cfg, nil
}

func (g *OpenAIGateway) UpdateAssistant(ctx context.Context, cfg domain.AssistantConfig) (*domain.AssistantConfig, error) {
	req := toAssistantRequest(cfg)
	assistant, err := g.client.ModifyAssistant(ctx, cfg.ID, req)
	if err != nil {
		return nil, &domain.GatewayError{Op: "assistants.update", Err: err}
	}
	updated := fromAssistant(assistant)
	return &updated, nil
}

func (g *OpenAIGateway) CreateThread(ctx context.Context) (string, error) {
	thread, err := g.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", &domain.GatewayError{Op: "threads.create", Err: err}
	}
	return thread.ID, nil
}

func (g *OpenAIGateway) GetThread(ctx context.Context, threadID string) (string, error) {
	thread, err := g.client.RetrieveThread(ctx, threadID)
	if err != nil {
		return "", &domain.GatewayError{Op: "threads.get", Err: err}
	}
	return thread.ID, nil
}

func (g *OpenAIGateway) AppendMessage(ctx context.Context, threadID string, role domain.Role, text string) (string, error) {
	msg, err := g.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    string(role),
		Content: text,
	})
	if err != nil {
		return "", &domain.GatewayError{Op: "messages.append", Err: err}
	}
	return msg.ID, nil
}

func (g *OpenAIGateway) ListMessages(ctx context.Context, threadID string, limit int) ([]domain.ThreadMessage, error) {
	order := "desc"
	list, err := g.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return nil, &domain.GatewayError{Op: "messages.list", Err: err}
	}

	messages := make([]domain.ThreadMessage, 0, len(list.Messages))
	for _, m := range list.Messages {
		messages = append(messages, domain.ThreadMessage{
			ID:        m.ID,
			Role:      domain.Role(m.Role),
			Content:   fromContent(m.Content),
			CreatedAt: time.Unix(int64(m.CreatedAt), 0),
		})
	}
	return messages, nil
}

func (g *OpenAIGateway) StartRun(ctx context.Context, threadID, assistantID, instructions string) (string, error) {
	run, err := g.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID:  assistantID,
		Instructions: instructions,
	})
	if err != nil {
		return "", &domain.GatewayError{Op: "runs.start", Err: err}
	}
	return run.ID, nil
}

func (g *OpenAIGateway) PollRun(ctx context.Context, threadID, runID string) (domain.RunStatus, string, error) {
	run, err := g.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return "", "", &domain.GatewayError{Op: "runs.poll", Err: err}
	}
	detail := ""
	if run.LastError != nil {
		detail = run.LastError.Message
	}
	return domain.RunStatus(run.Status), detail, nil
}

func (g *OpenAIGateway) UploadFile(ctx context.Context, filename string, data []byte) (domain.FileRef, error) {
	file, err := g.client.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    filename,
		Bytes:   data,
		Purpose: openai.PurposeAssistants,
	})
	if err != nil {
		return domain.FileRef{}, &domain.GatewayError{Op: "files.create", Err: err}
	}
	return fromFile(file), nil
}

func (g *OpenAIGateway) GetFile(ctx context.Context, fileID string) (domain.FileRef, error) {
	file, err := g.client.GetFile(ctx, fileID)
	if err != nil {
		return domain.FileRef{}, &domain.GatewayError{Op: "files.get", Err: err}
	}
	return fromFile(file), nil
}

func (g *OpenAIGateway) DeleteFile(ctx context.Context, fileID string) error {
	if err := g.client.DeleteFile(ctx, fileID); err != nil {
		return &domain.GatewayError{Op: "files.delete", Err: err}
	}
	return nil
}

func (g *OpenAIGateway) ListFiles(ctx context.Context) ([]domain.FileRef, error) {
	list, err := g.client.ListFiles(ctx)
	if err != nil {
		return nil, &domain.GatewayError{Op: "files.list", Err: err}
	}
	refs := make([]domain.FileRef, 0, len(list.Files))
	for _, f := range list.Files {
		refs = append(refs, fromFile(f))
	}
	return refs, nil
}

func (g *OpenAIGateway) ListIndexFiles(ctx context.Context, indexID string) ([]domain.FileRef, error) {
	list, err := g.client.ListVectorStoreFiles(ctx, indexID, openai.Pagination{})
	if err != nil {
		return nil, &domain.GatewayError{Op: "index.listFiles", Err: err}
	}
	refs := make([]domain.FileRef, 0, len(list.VectorStoreFiles))
	for _, f := range list.VectorStoreFiles {
		// Vector store file ids are the file store ids; filenames are
		// resolved separately through files.get.
		refs = append(refs, domain.FileRef{
			ID:        f.ID,
			CreatedAt: time.Unix(f.CreatedAt, 0),
		})
	}
	return refs, nil
}

func (g *OpenAIGateway) SubmitIndexBatch(ctx context.Context, indexID string, fileIDs []string) (string, error) {
	batch, err := g.client.CreateVectorStoreFileBatch(ctx, indexID, openai.VectorStoreFileBatchRequest{
		FileIDs: fileIDs,
	})
	if err != nil {
		return "", &domain.GatewayError{Op: "index.submitBatch", Err: err}
	}
	return batch.ID, nil
}

func (g *OpenAIGateway) PollIndexBatch(ctx context.Context, indexID, batchID string) (string, domain.FileCounts, error) {
	batch, err := g.client.RetrieveVectorStoreFileBatch(ctx, indexID, batchID)
	if err != nil {
		return "", domain.FileCounts{}, &domain.GatewayError{Op: "index.pollBatch", Err: err}
	}
	return batch.Status, domain.FileCounts{
		InProgress: batch.FileCounts.InProgress,
		Completed:  batch.FileCounts.Completed,
		Failed:     batch.FileCounts.Failed,
		Cancelled:  batch.FileCounts.Cancelled,
		Total:      batch.FileCounts.Total,
	}, nil
}

func fromAssistant(a openai.Assistant) domain.AssistantConfig {
	cfg := domain.AssistantConfig{
		ID:             a.ID,
		Model:          a.Model,
		Temperature:    a.Temperature,
		TopP:           a.TopP,
		ResponseFormat: a.ResponseFormat,
	}
	if a.Name != nil {
		cfg.Name = *a.Name
	}
	if a.Instructions != nil {
		cfg.Instructions = *a.Instructions
	}
	for _, t := range a.Tools {
		cfg.Tools = append(cfg.Tools, domain.AssistantTool{Type: string(t.Type)})
	}
	if a.ToolResources != nil && a.ToolResources.FileSearch != nil {
		cfg.VectorIndexIDs = append(cfg.VectorIndexIDs, a.ToolResources.FileSearch.VectorStoreIDs...)
	}
	return cfg
}

// toAssistantRequest carries every field of the config into the update
// request. The vendor update is a full replace; omitting a field here would
// silently reset it remotely.
func toAssistantRequest(cfg domain.AssistantConfig) openai.AssistantRequest {
	name := cfg.Name
	instructions := cfg.Instructions
	req := openai.AssistantRequest{
		Model:          cfg.Model,
		Name:           &name,
		Instructions:   &instructions,
		Temperature:    cfg.Temperature,
		TopP:           cfg.TopP,
		ResponseFormat: cfg.ResponseFormat,
	}
	for _, t := range cfg.Tools {
		req.Tools = append(req.Tools, openai.AssistantTool{Type: openai.AssistantToolType(t.Type)})
	}
	if len(cfg.VectorIndexIDs) > 0 {
		req.ToolResources = &openai.AssistantToolResource{
			FileSearch: &openai.AssistantToolFileSearch{VectorStoreIDs: cfg.VectorIndexIDs},
		}
	}
	return req
}

func fromContent(content []openai.MessageContent) []domain.ContentBlock {
	blocks := make([]domain.ContentBlock, 0, len(content))
	for _, c := range content {
		if c.Type == "text" && c.Text != nil {
			blocks = append(blocks, domain.ContentBlock{Kind: domain.ContentBlockText, Value: c.Text.Value})
			continue
		}
		blocks = append(blocks, domain.ContentBlock{Kind: domain.ContentBlockOther})
	}
	return blocks
}

func fromFile(f openai.File) domain.FileRef {
	return domain.FileRef{
		ID:        f.ID,
		Filename:  f.FileName,
		CreatedAt: time.Unix(int64(f.CreatedAt), 0),
	}
}
