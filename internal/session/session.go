package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/balkashynov/studybot/internal/apperrors"
)

// MaxMinutes caps a session at one day, keeping EndsAt and the
// credited totals far from overflow
const MaxMinutes = 24 * 60

// State is the lifecycle position of a Session
type State int

const (
	Running State = iota
	Completing
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completing:
		return "completing"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Member is a participant who joined a running session
type Member struct {
	ParticipantID int64  `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

// Session is one timed study period for a group.
// Identity, duration and start time never change after creation;
// everything else is guarded by mu.
type Session struct {
	ID        string
	GroupID   int64
	Minutes   int
	Cycles    int
	StartedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	members []Member
	warned  map[string]bool
	state   State
}

func newSession(groupID int64, minutes, cycles int, startedAt time.Time, cancel context.CancelFunc) *Session {
	return &Session{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Minutes:   minutes,
		Cycles:    cycles,
		StartedAt: startedAt,
		cancel:    cancel,
		done:      make(chan struct{}),
		warned:    make(map[string]bool),
		state:     Running,
	}
}

// EndsAt is the instant the session completes
func (s *Session) EndsAt() time.Time {
	return s.StartedAt.Add(time.Duration(s.Minutes) * time.Minute)
}

// Remaining is the time left at now; negative once the session is overdue
func (s *Session) Remaining(now time.Time) time.Duration {
	return s.EndsAt().Sub(now)
}

// Mode describes how the session was announced
func (s *Session) Mode() string {
	if s.Cycles > 1 {
		return "Pomodoro"
	}
	return "Single"
}

// Members returns a snapshot of the membership in join order
func (s *Session) Members() []Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Member, len(s.members))
	copy(out, s.members)
	return out
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Warned reports whether the threshold has already fired
func (s *Session) Warned(thresholdID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warned[thresholdID]
}

// Done is closed when the session's scheduler has returned
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) join(m Member) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return 0, fmt.Errorf("session for group %d is %s: %w", s.GroupID, s.state, apperrors.ErrNotFound)
	}
	for _, existing := range s.members {
		if existing.ParticipantID == m.ParticipantID {
			return len(s.members), fmt.Errorf("participant %d: %w", m.ParticipantID, apperrors.ErrAlreadyJoined)
		}
	}
	s.members = append(s.members, m)
	return len(s.members), nil
}

// markWarned records a threshold as fired. It returns false when the
// threshold already fired or the session is no longer running.
func (s *Session) markWarned(thresholdID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running || s.warned[thresholdID] {
		return false
	}
	s.warned[thresholdID] = true
	return true
}

// beginCompletion leaves the cancellable phase
func (s *Session) beginCompletion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return false
	}
	s.state = Completing
	return true
}

func (s *Session) finish() {
	s.mu.Lock()
	s.state = Completed
	s.mu.Unlock()
}

// stop cancels a running session and signals its scheduler.
// It returns false when the session already left the Running state.
func (s *Session) stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return false
	}
	s.state = Cancelled
	if s.cancel != nil {
		s.cancel()
	}
	return true
}
