package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/jpdataXOR/hrdesk/internal/domain"
	"github.com/jpdataXOR/hrdesk/tests/helpers"
)

func TestGetOrCreateSession(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.GetOrCreateSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}
	if created.SessionID != "sess-1" {
		t.Errorf("unexpected session id: %s", created.SessionID)
	}

	again, err := s.GetOrCreateSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetOrCreateSession on existing failed: %v", err)
	}
	if again.SessionID != created.SessionID {
		t.Errorf("expected the same session, got %s", again.SessionID)
	}
}

func TestGetSessionMissing(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)

	session, err := s.GetSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if session != nil {
		t.Errorf("expected nil for a missing session, got %+v", session)
	}
}

func TestUpdateSessionCustomerDropsThread(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	ctx := context.Background()

	if _, err := s.GetOrCreateSession(ctx, "sess-1"); err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}
	if err := s.UpdateSessionThread(ctx, "sess-1", "thread_abc"); err != nil {
		t.Fatalf("UpdateSessionThread failed: %v", err)
	}

	customer := domain.Customer{ID: "acme", AssistantID: "asst_acme", IndexID: "vs_acme"}
	if err := s.UpdateSessionCustomer(ctx, "sess-1", customer); err != nil {
		t.Fatalf("UpdateSessionCustomer failed: %v", err)
	}

	session, err := s.GetSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if session.CustomerID != "acme" || session.AssistantID != "asst_acme" || session.IndexID != "vs_acme" {
		t.Errorf("customer fields not updated: %+v", session)
	}
	if session.ThreadID != "" {
		t.Errorf("expected thread reference dropped, got %q", session.ThreadID)
	}
}

func TestTurnLifecycle(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	ctx := context.Background()

	if _, err := s.GetOrCreateSession(ctx, "sess-1"); err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}

	base := time.Now()
	turns := []*domain.Turn{
		{TurnID: "turn_1", SessionID: "sess-1", Role: domain.RoleUser, Content: "hi", State: domain.TurnStatePending, CreatedAt: base},
		{TurnID: "turn_2", SessionID: "sess-1", Role: domain.RoleAssistant, RunID: "run_1", Content: "hello", State: domain.TurnStateConfirmed, CreatedAt: base.Add(time.Second)},
	}
	for _, turn := range turns {
		if err := s.CreateTurn(ctx, turn); err != nil {
			t.Fatalf("CreateTurn failed: %v", err)
		}
	}

	if err := s.ConfirmTurn(ctx, "turn_1", ""); err != nil {
		t.Fatalf("ConfirmTurn failed: %v", err)
	}

	got, err := s.GetTurns(ctx, "sess-1", 0)
	if err != nil {
		t.Fatalf("GetTurns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got))
	}
	if got[0].TurnID != "turn_1" || got[1].TurnID != "turn_2" {
		t.Errorf("turns out of insertion order: %s, %s", got[0].TurnID, got[1].TurnID)
	}
	if got[0].State != domain.TurnStateConfirmed {
		t.Errorf("expected turn_1 confirmed, got %s", got[0].State)
	}
	if got[1].RunID != "run_1" {
		t.Errorf("run id lost: %+v", got[1])
	}

	if err := s.ClearTurns(ctx, "sess-1"); err != nil {
		t.Fatalf("ClearTurns failed: %v", err)
	}
	got, err = s.GetTurns(ctx, "sess-1", 0)
	if err != nil {
		t.Fatalf("GetTurns after clear failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no turns after clear, got %d", len(got))
	}
}

func TestGetTurnsLimit(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	ctx := context.Background()

	if _, err := s.GetOrCreateSession(ctx, "sess-1"); err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}

	base := time.Now()
	for i := 0; i < 5; i++ {
		turn := &domain.Turn{
			TurnID:    "turn_" + string(rune('a'+i)),
			SessionID: "sess-1",
			Role:      domain.RoleUser,
			Content:   "x",
			State:     domain.TurnStateConfirmed,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.CreateTurn(ctx, turn); err != nil {
			t.Fatalf("CreateTurn failed: %v", err)
		}
	}

	got, err := s.GetTurns(ctx, "sess-1", 3)
	if err != nil {
		t.Fatalf("GetTurns failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 turns with limit, got %d", len(got))
	}
}

func TestRunLifecycle(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)
	ctx := context.Background()

	if _, err := s.GetOrCreateSession(ctx, "sess-1"); err != nil {
		t.Fatalf("GetOrCreateSession failed: %v", err)
	}

	run := &domain.Run{
		RunID:     "run_1",
		SessionID: "sess-1",
		ThreadID:  "thread_abc",
		Status:    domain.RunStatusQueued,
		StartedAt: time.Now(),
	}
	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	if err := s.UpdateRunStatus(ctx, "run_1", domain.RunStatusInProgress); err != nil {
		t.Fatalf("UpdateRunStatus failed: %v", err)
	}
	got, err := s.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != domain.RunStatusInProgress {
		t.Errorf("expected in_progress, got %s", got.Status)
	}
	if got.EndedAt != nil {
		t.Error("expected no end time yet")
	}

	if err := s.UpdateRunCompleted(ctx, "run_1", domain.RunStatusExpired, "local wait timeout"); err != nil {
		t.Fatalf("UpdateRunCompleted failed: %v", err)
	}
	got, err = s.GetRun(ctx, "run_1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != domain.RunStatusExpired {
		t.Errorf("expected expired, got %s", got.Status)
	}
	if got.EndedAt == nil {
		t.Error("expected an end time")
	}
	if got.Error != "local wait timeout" {
		t.Errorf("unexpected error message: %q", got.Error)
	}
}

func TestGetRunMissing(t *testing.T) {
	s := helpers.NewTestSQLiteStore(t)

	run, err := s.GetRun(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil for a missing run, got %+v", run)
	}
}
