package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/balkashynov/studybot/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type sentMessage struct {
	GroupID int64
	Text    string
}

type recordingSink struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (s *recordingSink) Send(_ context.Context, groupID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{GroupID: groupID, Text: text})
	return s.err
}

func (s *recordingSink) Messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

type fakeStore struct {
	mu      sync.Mutex
	credits map[int64][]models.Credit
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{credits: make(map[int64][]models.Credit)}
}

func (f *fakeStore) CreditAll(_ context.Context, groupID int64, credits []models.Credit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.credits[groupID] = append(f.credits[groupID], credits...)
	return nil
}

func (f *fakeStore) Top(_ context.Context, groupID int64, limit int) ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LeaderboardEntry
	for _, c := range f.credits[groupID] {
		out = append(out, models.LeaderboardEntry{GroupID: groupID, ParticipantID: c.ParticipantID, DisplayName: c.DisplayName, TotalMinutes: c.Minutes})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) Credited(groupID int64) []models.Credit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Credit(nil), f.credits[groupID]...)
}

type staticAuth struct {
	admins map[int64]bool
	err    error
}

func (a staticAuth) IsElevated(_ context.Context, _ int64, userID int64) (bool, error) {
	if a.err != nil {
		return false, a.err
	}
	return a.admins[userID], nil
}

var errDelivery = errors.New("delivery failed")

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session for group %d did not finish", s.GroupID)
	}
}
