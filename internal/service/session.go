package service

import (
	"context"
	"fmt"
	"log"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

// GetOrCreateSession returns the session, creating it on first use.
func (s *Service) GetOrCreateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, &domain.ValidationError{Field: "session_id", Reason: "required"}
	}
	session, err := s.store.GetOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create session: %w", err)
	}
	return session, nil
}

// EnsureThread makes sure the session has a usable remote thread: it creates
// one on first use and revalidates the stored reference by retrieval
// otherwise. Idempotent within a turn.
func (s *Service) EnsureThread(ctx context.Context, session *domain.Session) (string, error) {
	if session.ThreadID == "" {
		threadID, err := s.gateway.CreateThread(ctx)
		if err != nil {
			return "", err
		}
		if err := s.store.UpdateSessionThread(ctx, session.SessionID, threadID); err != nil {
			return "", err
		}
		session.ThreadID = threadID
		log.Printf("INFO: created thread %s for session %s", threadID, session.SessionID)
		return threadID, nil
	}

	if _, err := s.gateway.GetThread(ctx, session.ThreadID); err != nil {
		return "", err
	}
	return session.ThreadID, nil
}

// SelectCustomer switches the session to another customer: the thread
// reference is dropped (not deleted remotely) and the conversation log is
// cleared, atomically from the caller's point of view.
func (s *Service) SelectCustomer(ctx context.Context, sessionID, customerID string) (*domain.Session, error) {
	customer, ok := s.config.Customer(customerID)
	if !ok {
		return nil, &domain.ValidationError{Field: "customer_id", Reason: "unknown customer", NotFound: true}
	}

	session, err := s.GetOrCreateSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.CustomerID == customerID {
		return session, nil
	}

	if err := s.store.UpdateSessionCustomer(ctx, sessionID, customer); err != nil {
		return nil, err
	}
	if err := s.store.ClearTurns(ctx, sessionID); err != nil {
		return nil, err
	}
	log.Printf("INFO: session %s switched to customer %s", sessionID, customerID)

	return s.store.GetSession(ctx, sessionID)
}

// Turns returns the session's conversation log in insertion order.
func (s *Service) Turns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	return s.store.GetTurns(ctx, sessionID, limit)
}
