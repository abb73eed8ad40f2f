package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/balkashynov/studybot/internal/apperrors"
	"github.com/balkashynov/studybot/internal/clock"
	"github.com/balkashynov/studybot/internal/models"
)

// Authorizer decides whether a user holds elevated rights in a group
type Authorizer interface {
	IsElevated(ctx context.Context, groupID, userID int64) (bool, error)
}

// Leaderboard is the persistent store the manager credits and reads
type Leaderboard interface {
	Creditor
	Top(ctx context.Context, groupID int64, limit int) ([]models.LeaderboardEntry, error)
}

// Options tunes a Manager; zero values fall back to defaults
type Options struct {
	PollInterval time.Duration
	Thresholds   []Threshold
	Clock        clock.Clock
	Logger       *zap.Logger
}

// Status is a read-only view of a live session
type Status struct {
	SessionID string
	GroupID   int64
	Minutes   int
	Cycles    int
	Mode      string
	State     string
	StartedAt time.Time
	EndsAt    time.Time
	Remaining time.Duration
	Members   []Member
}

// Manager exposes the session operations and owns every scheduler it spawns
type Manager struct {
	registry  *Registry
	scheduler *Scheduler
	store     Leaderboard
	auth      Authorizer
	clock     clock.Clock
	logger    *zap.Logger

	// mu orders Start against Shutdown
	mu      sync.RWMutex
	closed  bool
	base    context.Context
	stopAll context.CancelFunc
	wg      sync.WaitGroup
}

func NewManager(store Leaderboard, sink Sink, auth Authorizer, opts Options) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Thresholds == nil {
		opts.Thresholds = DefaultThresholds()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	registry := NewRegistry()
	base, stopAll := context.WithCancel(context.Background())

	return &Manager{
		registry: registry,
		scheduler: &Scheduler{
			registry:   registry,
			store:      store,
			sink:       sink,
			clock:      opts.Clock,
			logger:     opts.Logger,
			interval:   opts.PollInterval,
			thresholds: opts.Thresholds,
		},
		store:   store,
		auth:    auth,
		clock:   opts.Clock,
		logger:  opts.Logger,
		base:    base,
		stopAll: stopAll,
	}
}

// Start creates a session for the group and launches its scheduler
func (m *Manager) Start(groupID int64, minutes, cycles int) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("session manager stopped: %w", context.Canceled)
	}

	ctx, cancel := context.WithCancel(m.base)
	s, err := m.registry.TryCreate(groupID, minutes, cycles, m.clock.Now(), cancel)
	if err != nil {
		cancel()
		return nil, err
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.scheduler.Run(ctx, s)
	}()

	m.logger.Info("session started",
		zap.Int64("group_id", groupID),
		zap.String("session_id", s.ID),
		zap.Int("minutes", minutes),
		zap.Int("cycles", cycles))

	return s, nil
}

// Join adds a participant to the group's running session
func (m *Manager) Join(groupID, participantID int64, displayName string) (int, error) {
	count, err := m.registry.Join(groupID, participantID, displayName)
	if err != nil {
		return count, err
	}

	m.logger.Debug("participant joined",
		zap.Int64("group_id", groupID),
		zap.Int64("participant_id", participantID),
		zap.Int("members", count))

	return count, nil
}

// Status reports the remaining time and members of the group's session
func (m *Manager) Status(groupID int64) (Status, error) {
	s, err := m.registry.Get(groupID)
	if err != nil {
		return Status{}, err
	}

	remaining := s.Remaining(m.clock.Now())
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		SessionID: s.ID,
		GroupID:   s.GroupID,
		Minutes:   s.Minutes,
		Cycles:    s.Cycles,
		Mode:      s.Mode(),
		State:     s.State().String(),
		StartedAt: s.StartedAt,
		EndsAt:    s.EndsAt(),
		Remaining: remaining,
		Members:   s.Members(),
	}, nil
}

// Cancel stops the group's session early without crediting anyone.
// The requester must be elevated in the group.
func (m *Manager) Cancel(ctx context.Context, groupID, requesterID int64) error {
	elevated, err := m.auth.IsElevated(ctx, groupID, requesterID)
	if err != nil {
		m.logger.Warn("permission check failed",
			zap.Int64("group_id", groupID),
			zap.Int64("requester_id", requesterID),
			zap.Error(err))
		return fmt.Errorf("permission check failed: %w", apperrors.ErrForbidden)
	}
	if !elevated {
		return fmt.Errorf("user %d cannot end sessions in group %d: %w", requesterID, groupID, apperrors.ErrForbidden)
	}

	s, err := m.registry.Get(groupID)
	if err != nil {
		return err
	}
	// a session already crediting its members can no longer be cancelled
	if !s.stop() {
		return fmt.Errorf("session for group %d is finishing: %w", groupID, apperrors.ErrNotFound)
	}
	m.registry.removeIf(groupID, s)

	m.logger.Info("session ended early",
		zap.Int64("group_id", groupID),
		zap.String("session_id", s.ID),
		zap.Int64("requester_id", requesterID))

	return nil
}

// Leaderboard returns the group's top entries by total minutes
func (m *Manager) Leaderboard(ctx context.Context, groupID int64, limit int) ([]models.LeaderboardEntry, error) {
	return m.store.Top(ctx, groupID, limit)
}

// Active is the number of live sessions
func (m *Manager) Active() int {
	return m.registry.Len()
}

// Shutdown cancels every live session and waits for the schedulers to exit.
// In-flight sessions are lost.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.stopAll()
	for _, s := range m.registry.Snapshot() {
		m.registry.removeIf(s.GroupID, s)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
