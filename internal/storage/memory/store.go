// Package memory is an in-memory implementation of the storage interfaces,
// used in tests and for running without a database file.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/talentbridge/talentbridge/internal/storage"
)

// Store is an in-memory implementation of storage.Store.
type Store struct {
	mu           sync.RWMutex
	users        map[string]*storage.User
	jobs         map[string]*storage.Job
	applications map[string]*storage.Application
	snapshots    map[string]*storage.Snapshot
}

var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[string]*storage.User),
		jobs:         make(map[string]*storage.Job),
		applications: make(map[string]*storage.Application),
		snapshots:    make(map[string]*storage.Snapshot),
	}
}

func (s *Store) CreateUser(ctx context.Context, u *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return storage.ErrEmailTaken
		}
	}

	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListUsers(ctx context.Context) ([]*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateJob(ctx context.Context, j *storage.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j.CreatedAt = time.Now()
	cp := *j
	s.jobs[j.ID] = &cp
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*storage.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *Store) ListJobs(ctx context.Context) ([]*storage.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateApplication(ctx context.Context, a *storage.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.CreatedAt = time.Now()
	cp := *a
	s.applications[a.ID] = &cp
	return nil
}

func (s *Store) ListApplicationsByUser(ctx context.Context, userID string) ([]*storage.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*storage.Application
	for _, a := range s.applications {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateApplicationStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applications[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.Status = status
	return nil
}

func (s *Store) SaveSnapshot(ctx context.Context, snap *storage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.UpdatedAt = time.Now()
	cp := *snap
	cp.Topics = append([]string(nil), snap.Topics...)
	cp.Messages = append([]storage.SnapshotMessage(nil), snap.Messages...)
	s.snapshots[snap.SessionID] = &cp
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, sessionID string) (*storage.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[sessionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *snap
	cp.Topics = append([]string(nil), snap.Topics...)
	cp.Messages = append([]storage.SnapshotMessage(nil), snap.Messages...)
	return &cp, nil
}

func (s *Store) CountSnapshotsByUser(ctx context.Context, userRef string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, snap := range s.snapshots {
		if snap.UserRef == userRef {
			count++
		}
	}
	return count, nil
}

func (s *Store) Close() error {
	return nil
}
