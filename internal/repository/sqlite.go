package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			customer_id TEXT,
			assistant_id TEXT,
			index_id TEXT,
			thread_id TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			run_id TEXT,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			state TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			thread_id TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME,
			error TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_id, started_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, customer_id, assistant_id, index_id, thread_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session.SessionID, nullString(session.CustomerID), nullString(session.AssistantID),
		nullString(session.IndexID), nullString(session.ThreadID), session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, customer_id, assistant_id, index_id, thread_id, created_at
		 FROM sessions WHERE session_id = ?`, sessionID)

	var session domain.Session
	var customerID, assistantID, indexID, threadID sql.NullString
	err := row.Scan(&session.SessionID, &customerID, &assistantID, &indexID, &threadID, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.CustomerID = customerID.String
	session.AssistantID = assistantID.String
	session.IndexID = indexID.String
	session.ThreadID = threadID.String
	return &session, nil
}

func (s *SQLiteStore) GetOrCreateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}

	session = &domain.Session{
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}
	if err := s.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SQLiteStore) UpdateSessionThread(ctx context.Context, sessionID, threadID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET thread_id = ? WHERE session_id = ?`, nullString(threadID), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session thread: %w", err)
	}
	return nil
}

// UpdateSessionCustomer swaps the session's customer context and drops the
// thread reference in the same statement. The old remote thread is not
// deleted; only the local reference is invalidated.
func (s *SQLiteStore) UpdateSessionCustomer(ctx context.Context, sessionID string, customer domain.Customer) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET customer_id = ?, assistant_id = ?, index_id = ?, thread_id = NULL
		 WHERE session_id = ?`,
		customer.ID, customer.AssistantID, nullString(customer.IndexID), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session customer: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateTurn(ctx context.Context, turn *domain.Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (turn_id, session_id, run_id, role, content, state, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		turn.TurnID, turn.SessionID, nullString(turn.RunID), string(turn.Role),
		turn.Content, string(turn.State), turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create turn: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ConfirmTurn(ctx context.Context, turnID, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE turns SET state = ?, run_id = ? WHERE turn_id = ?`,
		string(domain.TurnStateConfirmed), nullString(runID), turnID)
	if err != nil {
		return fmt.Errorf("failed to confirm turn: %w", err)
	}
	return nil
}

// GetTurns returns turns in insertion order, oldest first.
func (s *SQLiteStore) GetTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	query := `SELECT turn_id, session_id, run_id, role, content, state, created_at
		 FROM turns WHERE session_id = ? ORDER BY created_at ASC, turn_id ASC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var turn domain.Turn
		var runID sql.NullString
		if err := rows.Scan(&turn.TurnID, &turn.SessionID, &runID, &turn.Role,
			&turn.Content, &turn.State, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turn.RunID = runID.String
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

func (s *SQLiteStore) ClearTurns(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *domain.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, session_id, thread_id, status, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.SessionID, run.ThreadID, string(run.Status), run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, session_id, thread_id, status, started_at, ended_at, error
		 FROM runs WHERE run_id = ?`, runID)

	var run domain.Run
	var endedAt sql.NullTime
	var errMsg sql.NullString
	err := row.Scan(&run.RunID, &run.SessionID, &run.ThreadID, &run.Status,
		&run.StartedAt, &endedAt, &errMsg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if endedAt.Valid {
		run.EndedAt = &endedAt.Time
	}
	run.Error = errMsg.String
	return &run, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ? WHERE run_id = ?`, string(status), runID)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateRunCompleted(ctx context.Context, runID string, status domain.RunStatus, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, ended_at = ?, error = ? WHERE run_id = ?`,
		string(status), time.Now(), nullString(errMsg), runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
