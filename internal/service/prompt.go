package service

import (
	"context"
	"log"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

// GetAssistant returns the full remote assistant record, for the edit form.
func (s *Service) GetAssistant(ctx context.Context, assistantID string) (*domain.AssistantConfig, error) {
	if assistantID == "" {
		return nil, &domain.ValidationError{Field: "assistant_id", Reason: "required"}
	}
	return s.gateway.GetAssistant(ctx, assistantID)
}

// UpdateInstructions changes the assistant's system prompt. The remote
// update is a full-record replace, so the current config is read in full and
// resubmitted with only Instructions changed; omitting any field would
// silently reset it to a vendor default.
func (s *Service) UpdateInstructions(ctx context.Context, assistantID, newText string) (*domain.AssistantConfig, error) {
	if assistantID == "" {
		return nil, &domain.ValidationError{Field: "assistant_id", Reason: "required"}
	}

	cfg, err := s.gateway.GetAssistant(ctx, assistantID)
	if err != nil {
		return nil, err
	}

	cfg.Instructions = newText
	updated, err := s.gateway.UpdateAssistant(ctx, *cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: updated instructions for assistant %s (%d chars)", assistantID, len(newText))
	return updated, nil
}
