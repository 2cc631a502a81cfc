package service

import (
	"context"
	"log"
	"time"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

const displayTimeFormat = "2006-01-02 15:04:05 MST"

// ListIndexFiles returns the vector index membership for a customer with
// filenames and creation timestamps resolved per file. A metadata fetch
// failure for one file is reported on that entry only; the remaining files
// are still listed. The remote listing is authoritative; no local cache.
func (s *Service) ListIndexFiles(ctx context.Context, customerID string) ([]domain.IndexFile, error) {
	customer, ok := s.config.Customer(customerID)
	if !ok {
		return nil, &domain.ValidationError{Field: "customer_id", Reason: "unknown customer", NotFound: true}
	}
	if customer.IndexID == "" {
		return nil, &domain.ValidationError{Field: "customer_id", Reason: "customer has no vector index"}
	}

	refs, err := s.gateway.ListIndexFiles(ctx, customer.IndexID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(s.config.DisplayTimeZone)
	if err != nil {
		log.Printf("WARN: unknown display time zone %q, falling back to UTC", s.config.DisplayTimeZone)
		loc = time.UTC
	}

	files := make([]domain.IndexFile, 0, len(refs))
	for _, ref := range refs {
		file, err := s.gateway.GetFile(ctx, ref.ID)
		if err != nil {
			log.Printf("WARN: failed to resolve file %s: %v", ref.ID, err)
			files = append(files, domain.IndexFile{ID: ref.ID, Error: err.Error()})
			continue
		}
		files = append(files, domain.IndexFile{
			ID:        ref.ID,
			Filename:  file.Filename,
			CreatedAt: file.CreatedAt.In(loc).Format(displayTimeFormat),
		})
	}
	return files, nil
}

// BindIndex points the assistant's retrieval tool at exactly indexID,
// replacing any prior binding. The assistant record is read in full and
// resubmitted in full; the vendor update is a whole-record replace.
func (s *Service) BindIndex(ctx context.Context, assistantID, indexID string) error {
	if assistantID == "" || indexID == "" {
		return &domain.ValidationError{Field: "assistant_id/index_id", Reason: "required"}
	}

	cfg, err := s.gateway.GetAssistant(ctx, assistantID)
	if err != nil {
		return &domain.BindingError{AssistantID: assistantID, IndexID: indexID, Err: err}
	}

	if !cfg.HasTool(domain.ToolTypeFileSearch) {
		cfg.Tools = append(cfg.Tools, domain.AssistantTool{Type: domain.ToolTypeFileSearch})
	}
	// Last write wins: one index, no merge.
	cfg.VectorIndexIDs = []string{indexID}

	if _, err := s.gateway.UpdateAssistant(ctx, *cfg); err != nil {
		return &domain.BindingError{AssistantID: assistantID, IndexID: indexID, Err: err}
	}
	log.Printf("INFO: bound index %s to assistant %s", indexID, assistantID)
	return nil
}

// RemoveIndexFile deletes a file from the gateway's file store. Callers
// re-list the index afterwards; the remote listing stays the source of truth.
func (s *Service) RemoveIndexFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return &domain.ValidationError{Field: "file_id", Reason: "required"}
	}
	return s.gateway.DeleteFile(ctx, fileID)
}
