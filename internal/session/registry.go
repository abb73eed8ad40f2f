package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/balkashynov/studybot/internal/apperrors"
)

// Registry maps each group to at most one live Session.
// The map lock is only held for map access; per-group work is serialized
// by the session's own lock so groups never wait on each other.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
	}
}

// TryCreate installs a new Running session for the group.
// cancel is bound to the session so a later Cancel can stop its scheduler.
func (r *Registry) TryCreate(groupID int64, minutes, cycles int, startedAt time.Time, cancel context.CancelFunc) (*Session, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d minutes: %w", minutes, apperrors.ErrInvalidInput)
	}
	if minutes > MaxMinutes {
		return nil, fmt.Errorf("duration of %d minutes exceeds %d: %w", minutes, MaxMinutes, apperrors.ErrInvalidInput)
	}
	if cycles <= 0 {
		return nil, fmt.Errorf("cycles must be positive, got %d: %w", cycles, apperrors.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[groupID]; ok {
		return nil, fmt.Errorf("group %d: %w", groupID, apperrors.ErrConflict)
	}

	s := newSession(groupID, minutes, cycles, startedAt, cancel)
	r.sessions[groupID] = s
	return s, nil
}

func (r *Registry) Get(groupID int64) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[groupID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no active session for group %d: %w", groupID, apperrors.ErrNotFound)
	}
	return s, nil
}

// Remove drops whatever session the group has; absent groups are a no-op.
// It is the unconditional form of removeIf, which the manager uses.
func (r *Registry) Remove(groupID int64) {
	r.mu.Lock()
	delete(r.sessions, groupID)
	r.mu.Unlock()
}

// removeIf drops the group's entry only while it still points at s,
// so a finished scheduler never unregisters a newer session.
func (r *Registry) removeIf(groupID int64, s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[groupID] != s {
		return false
	}
	delete(r.sessions, groupID)
	return true
}

// Join appends a participant and returns the new member count.
func (r *Registry) Join(groupID, participantID int64, displayName string) (int, error) {
	s, err := r.Get(groupID)
	if err != nil {
		return 0, err
	}
	return s.join(Member{ParticipantID: participantID, DisplayName: displayName})
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot lists the live sessions in no particular order
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
