package domain

import "time"

// AssistantConfig is the full remote assistant record. The vendor's update
// operation is a full replace, not a patch: every field must be read before
// any partial change and resubmitted in whole, or omitted fields silently
// reset to defaults.
type AssistantConfig struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Model          string          `json:"model"`
	Instructions   string          `json:"instructions"`
	Tools          []AssistantTool `json:"tools"`
	VectorIndexIDs []string        `json:"vector_index_ids,omitempty"`
	Temperature    *float32        `json:"temperature,omitempty"`
	TopP           *float32        `json:"top_p,omitempty"`
	ResponseFormat any             `json:"response_format,omitempty"`
}

// AssistantTool is one tool enabled on the assistant, e.g. retrieval.
type AssistantTool struct {
	Type string `json:"type"`
}

// ToolTypeFileSearch is the vendor's retrieval tool type.
const ToolTypeFileSearch = "file_search"

// HasTool reports whether a tool of the given type is enabled.
func (a AssistantConfig) HasTool(toolType string) bool {
	for _, t := range a.Tools {
		if t.Type == toolType {
			return true
		}
	}
	return false
}

// ContentBlock is one typed unit of a remote message's content payload.
// Value is meaningful only when Kind is ContentBlockText.
type ContentBlock struct {
	Kind  ContentBlockKind `json:"kind"`
	Value string           `json:"value,omitempty"`
}

// ThreadMessage is one message on a remote thread.
type ThreadMessage struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   []ContentBlock `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// FileRef is a file known to the gateway's file store.
type FileRef struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// IndexFile is one member of a vector index as presented to the UI.
// A per-file metadata failure populates Error and leaves the rest blank;
// it never aborts the listing of the remaining members.
type IndexFile struct {
	ID        string `json:"id"`
	Filename  string `json:"filename,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FileCounts summarizes a vector index batch by file outcome.
type FileCounts struct {
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Cancelled  int `json:"cancelled"`
	Total      int `json:"total"`
}

// BatchSummary is the result of one ingestion batch. Partial success is
// possible and is reported, not hidden: PerFileErrors carries one entry per
// file that failed staging or upload while the rest of the batch proceeded.
type BatchSummary struct {
	Status        string            `json:"status"`
	FileCounts    FileCounts        `json:"file_counts"`
	UploadedIDs   []string          `json:"uploaded_ids,omitempty"`
	PerFileErrors map[string]string `json:"per_file_errors,omitempty"`
}
