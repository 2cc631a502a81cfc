package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

// TurnResult is the outcome of one user turn.
type TurnResult struct {
	Reply     string           `json:"reply"`
	RunID     string           `json:"run_id"`
	RunStatus domain.RunStatus `json:"run_status"`
}

// SubmitTurn handles one user turn end to end: optimistic append of the user
// turn, message delivery, run to completion, reply normalization and the
// assistant turn append.
//
// The user turn is persisted before any remote call and is never removed,
// even when a later step fails; the user keeps what they typed.
func (s *Service) SubmitTurn(ctx context.Context, sessionID, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.ValidationError{Field: "text", Reason: "must not be empty"}
	}

	session, err := s.GetOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.AssistantID == "" {
		return nil, &domain.ValidationError{Field: "customer_id", Reason: "no customer selected"}
	}

	threadID, err := s.EnsureThread(ctx, session)
	if err != nil {
		return nil, err
	}

	// Optimistic append: the local log is written ahead of the remote call.
	userTurn := &domain.Turn{
		TurnID:    "turn_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   text,
		State:     domain.TurnStatePending,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateTurn(ctx, userTurn); err != nil {
		return nil, fmt.Errorf("failed to save user turn: %w", err)
	}

	if _, err := s.gateway.AppendMessage(ctx, threadID, domain.RoleUser, text); err != nil {
		// The pending turn stays visible; only the delivery failed.
		return nil, err
	}
	if err := s.store.ConfirmTurn(ctx, userTurn.TurnID, ""); err != nil {
		log.Printf("ERROR: failed to confirm turn %s: %v", userTurn.TurnID, err)
	}

	runID, err := s.gateway.StartRun(ctx, threadID, session.AssistantID, s.config.RunInstructions)
	if err != nil {
		return nil, err
	}

	run := &domain.Run{
		RunID:     runID,
		SessionID: sessionID,
		ThreadID:  threadID,
		Status:    domain.RunStatusQueued,
		StartedAt: time.Now(),
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		log.Printf("ERROR: failed to save run %s: %v", runID, err)
	}
	s.pushRunEvent(sessionID, runID, domain.RunStatusQueued)

	status, detail, err := s.pollRunToCompletion(ctx, sessionID, threadID, runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunTimeout) {
			// Stop waiting; the remote run is not cancelled and may still
			// finish. The audit record keeps the last status the vendor
			// reported, with the local timeout noted alongside.
			if dbErr := s.store.UpdateRunCompleted(ctx, runID, status, "local wait timeout"); dbErr != nil {
				log.Printf("ERROR: failed to update run %s: %v", runID, dbErr)
			}
		}
		return nil, err
	}

	if status != domain.RunStatusCompleted {
		if dbErr := s.store.UpdateRunCompleted(ctx, runID, status, detail); dbErr != nil {
			log.Printf("ERROR: failed to update run %s: %v", runID, dbErr)
		}
		return nil, &domain.RunFailedError{RunID: runID, Status: status, Detail: detail}
	}

	if err := s.store.UpdateRunCompleted(ctx, runID, status, ""); err != nil {
		log.Printf("ERROR: failed to update run %s: %v", runID, err)
	}

	reply, err := s.FetchAndNormalizeReply(ctx, threadID)
	if err != nil {
		return nil, err
	}

	assistantTurn := &domain.Turn{
		TurnID:    "turn_" + uuid.New().String()[:8],
		SessionID: sessionID,
		RunID:     runID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		State:     domain.TurnStateConfirmed,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateTurn(ctx, assistantTurn); err != nil {
		log.Printf("ERROR: failed to save assistant turn: %v", err)
	}

	return &TurnResult{Reply: reply, RunID: runID, RunStatus: status}, nil
}

// pollRunToCompletion polls the run status at a fixed interval until a
// terminal status, the configured wait ceiling, or context cancellation.
// Never a spin loop; each state transition is pushed to the session's page.
func (s *Service) pollRunToCompletion(ctx context.Context, sessionID, threadID, runID string) (domain.RunStatus, string, error) {
	deadline := time.Now().Add(s.config.RunTimeout)
	var lastStatus domain.RunStatus

	for {
		status, detail, err := s.gateway.PollRun(ctx, threadID, runID)
		if err != nil {
			return "", "", err
		}

		if status != lastStatus {
			lastStatus = status
			if dbErr := s.store.UpdateRunStatus(ctx, runID, status); dbErr != nil {
				log.Printf("ERROR: failed to update run status: %v", dbErr)
			}
			s.pushRunEvent(sessionID, runID, status)
		}

		if status.IsTerminal() {
			return status, detail, nil
		}
		// No local tool execution surface: a run stuck waiting for tool
		// output can only expire, so fail the turn immediately.
		if status == domain.RunStatusRequiresAction {
			return status, "run requires tool action, which is not supported", nil
		}

		if time.Now().After(deadline) {
			// Return the last observed status so callers can record what
			// the vendor actually reported before the wait was abandoned.
			return lastStatus, "", fmt.Errorf("run %s: %w", runID, domain.ErrRunTimeout)
		}

		select {
		case <-ctx.Done():
			return lastStatus, "", ctx.Err()
		case <-time.After(s.config.RunPollInterval):
		}
	}
}

// FetchAndNormalizeReply extracts the newest assistant message from the
// thread and flattens it to text. The remote content is a sequence of typed
// blocks; only text-kind blocks are used, concatenated in order with newline
// separation. Valid only after a completed run.
func (s *Service) FetchAndNormalizeReply(ctx context.Context, threadID string) (string, error) {
	messages, err := s.gateway.ListMessages(ctx, threadID, 20)
	if err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", domain.ErrEmptyReply
	}

	// Newest first; take the most recent assistant message.
	for _, msg := range messages {
		if msg.Role != domain.RoleAssistant {
			continue
		}
		var parts []string
		for _, block := range msg.Content {
			if block.Kind == domain.ContentBlockText {
				parts = append(parts, block.Value)
			}
		}
		if len(parts) == 0 {
			return "", domain.ErrEmptyReply
		}
		return strings.Join(parts, "\n"), nil
	}
	return "", domain.ErrEmptyReply
}

func (s *Service) pushRunEvent(sessionID, runID string, status domain.RunStatus) {
	if s.hub == nil {
		return
	}
	s.hub.PushEvent(sessionID, map[string]interface{}{
		"type":   "run_status",
		"ts":     time.Now().UnixMilli(),
		"run_id": runID,
		"status": status,
	})
}
