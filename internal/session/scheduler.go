package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/balkashynov/studybot/internal/clock"
	"github.com/balkashynov/studybot/internal/models"
)

// DefaultPollInterval is how often a scheduler re-checks its session
const DefaultPollInterval = 15 * time.Second

// Threshold is a one-time warning fired when the remaining time falls
// inside [Remaining, Remaining+Window).
type Threshold struct {
	ID        string
	Remaining time.Duration
	Window    time.Duration
	Text      string
}

func (t Threshold) contains(remaining time.Duration) bool {
	return remaining >= t.Remaining && remaining < t.Remaining+t.Window
}

// DefaultThresholds are the 5-minute and 1-minute warnings.
// Each window is at least one poll interval wide so a tick always lands in it.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{ID: "5-minute", Remaining: 5 * time.Minute, Window: 30 * time.Second, Text: "⏳ 5 minutes left!"},
		{ID: "1-minute", Remaining: time.Minute, Window: 15 * time.Second, Text: "⏳ 1 minute left!"},
	}
}

// Sink delivers a message to a group
type Sink interface {
	Send(ctx context.Context, groupID int64, text string) error
}

// Creditor records completed study minutes
type Creditor interface {
	CreditAll(ctx context.Context, groupID int64, credits []models.Credit) error
}

// Scheduler drives sessions from Running to a terminal state
type Scheduler struct {
	registry   *Registry
	store      Creditor
	sink       Sink
	clock      clock.Clock
	logger     *zap.Logger
	interval   time.Duration
	thresholds []Threshold
}

// Run owns the timer loop of one session until it completes or ctx is
// cancelled. It closes the session's Done channel on return.
func (sc *Scheduler) Run(ctx context.Context, s *Session) {
	defer close(s.done)

	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			sc.abandon(s)
			return
		}
		if sc.poll(ctx, s) {
			sc.complete(ctx, s)
			return
		}

		select {
		case <-ctx.Done():
			sc.abandon(s)
			return
		case <-ticker.C:
		}
	}
}

// poll fires due warnings and reports whether the session has run out
func (sc *Scheduler) poll(ctx context.Context, s *Session) bool {
	remaining := s.Remaining(sc.clock.Now())
	if remaining <= 0 {
		return true
	}

	for _, t := range sc.thresholds {
		if !t.contains(remaining) || !s.markWarned(t.ID) {
			continue
		}
		// a lost warning is not retried
		if err := sc.sink.Send(ctx, s.GroupID, t.Text); err != nil {
			sc.logger.Warn("failed to deliver warning",
				zap.Int64("group_id", s.GroupID),
				zap.String("session_id", s.ID),
				zap.String("threshold", t.ID),
				zap.Error(err))
		}
	}
	return false
}

func (sc *Scheduler) complete(ctx context.Context, s *Session) {
	if !s.beginCompletion() {
		return
	}
	// past this point cancellation no longer applies
	ctx = context.WithoutCancel(ctx)

	members := s.Members()
	credits := make([]models.Credit, 0, len(members))
	for _, m := range members {
		credits = append(credits, models.Credit{
			ParticipantID: m.ParticipantID,
			DisplayName:   m.DisplayName,
			Minutes:       s.Minutes,
		})
	}

	text := completionText(s.Minutes, members)
	if err := sc.store.CreditAll(ctx, s.GroupID, credits); err != nil {
		sc.logger.Error("failed to credit session",
			zap.Int64("group_id", s.GroupID),
			zap.String("session_id", s.ID),
			zap.Int("members", len(members)),
			zap.Error(err))
		text = creditFailedText(s.Minutes)
	}

	if err := sc.sink.Send(ctx, s.GroupID, text); err != nil {
		sc.logger.Warn("failed to deliver completion",
			zap.Int64("group_id", s.GroupID),
			zap.String("session_id", s.ID),
			zap.Error(err))
	}

	s.finish()
	sc.registry.removeIf(s.GroupID, s)

	sc.logger.Info("session completed",
		zap.Int64("group_id", s.GroupID),
		zap.String("session_id", s.ID),
		zap.Int("minutes", s.Minutes),
		zap.Int("members", len(members)))
}

// abandon marks a session whose context ended without completion.
// Unregistering is left to whoever cancelled it.
func (sc *Scheduler) abandon(s *Session) {
	s.stop()
	sc.logger.Info("session cancelled",
		zap.Int64("group_id", s.GroupID),
		zap.String("session_id", s.ID))
}

func completionText(minutes int, members []Member) string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.DisplayName)
	}
	participants := strings.Join(names, ", ")
	if participants == "" {
		participants = "No one"
	}
	return fmt.Sprintf("✅ Study session of %d minutes finished! Participants: %s", minutes, participants)
}

func creditFailedText(minutes int) string {
	return fmt.Sprintf("✅ Study session of %d minutes finished, but the minutes could not be recorded.", minutes)
}
