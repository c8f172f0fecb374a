// Package sqlite is the SQLite implementation of the storage interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talentbridge/talentbridge/internal/storage"
)

// Store is a SQLite implementation of storage.Store.
type Store struct {
	db *sqlx.DB
}

var _ storage.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and initializes the schema.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			skills TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			company TEXT NOT NULL,
			location TEXT,
			salary TEXT,
			description TEXT,
			skills TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			job_id TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (job_id) REFERENCES jobs(id)
		)`,
		`CREATE TABLE IF NOT EXISTS interview_sessions (
			session_id TEXT PRIMARY KEY,
			user_ref TEXT,
			profile TEXT NOT NULL,
			phase TEXT NOT NULL,
			topics TEXT NOT NULL,
			question_count INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			messages TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_job ON applications(job_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interview_sessions_user ON interview_sessions(user_ref)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) CreateUser(ctx context.Context, u *storage.User) error {
	u.CreatedAt = time.Now()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, u.Email).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists > 0 {
		return storage.ErrEmailTaken
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, skills, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Skills, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	var u storage.User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, name, email, password_hash, skills, created_at FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*storage.User, error) {
	var users []*storage.User
	err := s.db.SelectContext(ctx, &users,
		`SELECT id, name, email, password_hash, skills, created_at FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Store) CreateJob(ctx context.Context, j *storage.Job) error {
	j.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, company, location, salary, description, skills, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Title, j.Company, j.Location, j.Salary, j.Description, j.Skills, j.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*storage.Job, error) {
	var j storage.Job
	err := s.db.GetContext(ctx, &j,
		`SELECT id, title, company, location, salary, description, skills, created_at FROM jobs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

func (s *Store) ListJobs(ctx context.Context) ([]*storage.Job, error) {
	var jobs []*storage.Job
	err := s.db.SelectContext(ctx, &jobs,
		`SELECT id, title, company, location, salary, description, skills, created_at FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (s *Store) CreateApplication(ctx context.Context, a *storage.Application) error {
	a.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (id, user_id, job_id, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.JobID, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (s *Store) ListApplicationsByUser(ctx context.Context, userID string) ([]*storage.Application, error) {
	var apps []*storage.Application
	err := s.db.SelectContext(ctx, &apps,
		`SELECT id, user_id, job_id, status, created_at FROM applications WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// UpdateApplicationStatus moves an application to a new status.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE applications SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SaveSnapshot upserts the session snapshot keyed by session id.
func (s *Store) SaveSnapshot(ctx context.Context, snap *storage.Snapshot) error {
	snap.UpdatedAt = time.Now()

	profile, err := json.Marshal(snap.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	topics, err := json.Marshal(snap.Topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}
	messages, err := json.Marshal(snap.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO interview_sessions (session_id, user_ref, profile, phase, topics, question_count, difficulty, messages, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		phase=excluded.phase,
		topics=excluded.topics,
		question_count=excluded.question_count,
		difficulty=excluded.difficulty,
		messages=excluded.messages,
		updated_at=excluded.updated_at;
	`, snap.SessionID, snap.UserRef, string(profile), snap.Phase, string(topics),
		snap.QuestionCount, snap.Difficulty, string(messages), snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, sessionID string) (*storage.Snapshot, error) {
	var (
		snap                      storage.Snapshot
		profile, topics, messages string
	)

	err := s.db.QueryRowContext(ctx, `
	SELECT session_id, user_ref, profile, phase, topics, question_count, difficulty, messages, updated_at
	FROM interview_sessions WHERE session_id = ?`, sessionID).Scan(
		&snap.SessionID, &snap.UserRef, &profile, &snap.Phase, &topics,
		&snap.QuestionCount, &snap.Difficulty, &messages, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(profile), &snap.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if err := json.Unmarshal([]byte(topics), &snap.Topics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal topics: %w", err)
	}
	if err := json.Unmarshal([]byte(messages), &snap.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}

	return &snap, nil
}

func (s *Store) CountSnapshotsByUser(ctx context.Context, userRef string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM interview_sessions WHERE user_ref = ?`, userRef).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
