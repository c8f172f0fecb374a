// Package storage defines the persistence contracts and records for the
// job board and interview snapshots.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when registering a user with an email that
// already exists.
var ErrEmailTaken = errors.New("email already registered")

// User is a registered job seeker or recruiter.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Skills       string    `json:"skills,omitempty" db:"skills"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Job is a job posting.
type Job struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Company     string    `json:"company" db:"company"`
	Location    string    `json:"location,omitempty" db:"location"`
	Salary      string    `json:"salary,omitempty" db:"salary"`
	Description string    `json:"description,omitempty" db:"description"`
	Skills      string    `json:"skills,omitempty" db:"skills"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Application links a user to a job they applied for.
type Application struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	JobID     string    `json:"jobId" db:"job_id"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// SnapshotMessage is one transcript entry in a persisted snapshot.
type SnapshotMessage struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Phase     string    `json:"phase"`
	Timestamp time.Time `json:"timestamp"`
}

// SnapshotProfile mirrors the candidate profile fields in a snapshot.
type SnapshotProfile struct {
	Role       string `json:"role,omitempty"`
	Experience string `json:"experience,omitempty"`
	Company    string `json:"company,omitempty"`
	Focus      string `json:"focus,omitempty"`
	Industry   string `json:"industry,omitempty"`
	Skills     string `json:"skills,omitempty"`
}

// Snapshot is the durable record of one interview session, upserted by
// session id after every turn.
type Snapshot struct {
	SessionID     string            `json:"sessionId"`
	UserRef       string            `json:"user,omitempty"`
	Profile       SnapshotProfile   `json:"userProfile"`
	Phase         string            `json:"interviewPhase"`
	Topics        []string          `json:"topics"`
	QuestionCount int               `json:"questionCount"`
	Difficulty    string            `json:"difficulty"`
	Messages      []SnapshotMessage `json:"messages"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
}

// JobStore persists job postings.
type JobStore interface {
	CreateJob(ctx context.Context, j *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context) ([]*Job, error)
}

// ApplicationStore persists applications.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, a *Application) error
	ListApplicationsByUser(ctx context.Context, userID string) ([]*Application, error)
	UpdateApplicationStatus(ctx context.Context, id, status string) error
}

// SnapshotStore persists interview session snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s *Snapshot) error
	GetSnapshot(ctx context.Context, sessionID string) (*Snapshot, error)
	CountSnapshotsByUser(ctx context.Context, userRef string) (int, error)
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	JobStore
	ApplicationStore
	SnapshotStore
	Close() error
}
