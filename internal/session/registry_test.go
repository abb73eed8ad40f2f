package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/balkashynov/studybot/internal/apperrors"
)

func TestTryCreate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		minutes int
		cycles  int
		wantErr error
	}{
		{"valid single", 25, 1, nil},
		{"valid pomodoro", 25, 4, nil},
		{"zero minutes", 0, 1, apperrors.ErrInvalidInput},
		{"negative minutes", -3, 1, apperrors.ErrInvalidInput},
		{"zero cycles", 25, 0, apperrors.ErrInvalidInput},
		{"one day", MaxMinutes, 1, nil},
		{"longer than a day", MaxMinutes + 1, 1, apperrors.ErrInvalidInput},
		{"end time overflow", 200_000_000, 1, apperrors.ErrInvalidInput},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			s, err := r.TryCreate(int64(i), tt.minutes, tt.cycles, now, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				if r.Len() != 0 {
					t.Errorf("rejected create must not register a session")
				}
				return
			}
			if s.State() != Running {
				t.Errorf("expected running, got %s", s.State())
			}
		})
	}
}

func TestTryCreateConflict(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	if _, err := r.TryCreate(1, 25, 1, now, nil); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := r.TryCreate(1, 10, 1, now, nil); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := r.TryCreate(2, 10, 1, now, nil); err != nil {
		t.Fatalf("other group must not conflict: %v", err)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.TryCreate(7, 25, 1, now, nil)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, apperrors.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 || conflicts.Load() != 49 {
		t.Errorf("expected 1 win and 49 conflicts, got %d and %d", wins.Load(), conflicts.Load())
	}
}

func TestJoin(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Join(1, 42, "Ann"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("join without session: expected ErrNotFound, got %v", err)
	}

	r.TryCreate(1, 25, 1, time.Now(), nil)

	count, err := r.Join(1, 42, "Ann")
	if err != nil || count != 1 {
		t.Fatalf("expected count 1, got %d (%v)", count, err)
	}
	count, err = r.Join(1, 42, "Ann again")
	if !errors.Is(err, apperrors.ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
	if count != 1 {
		t.Errorf("duplicate join changed count to %d", count)
	}
	count, _ = r.Join(1, 43, "Bo")
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}

	s, _ := r.Get(1)
	members := s.Members()
	if members[0].DisplayName != "Ann" || members[1].DisplayName != "Bo" {
		t.Errorf("join order not preserved: %+v", members)
	}
}

func TestJoinAfterStop(t *testing.T) {
	r := NewRegistry()
	s, _ := r.TryCreate(1, 25, 1, time.Now(), func() {})
	s.stop()

	if _, err := r.Join(1, 42, "Ann"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for stopped session, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	r := NewRegistry()
	r.TryCreate(1, 25, 1, time.Now(), nil)

	r.Remove(1)
	r.Remove(1)

	if _, err := r.Get(1); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestRemoveIfKeepsNewerSession(t *testing.T) {
	r := NewRegistry()
	old, _ := r.TryCreate(1, 25, 1, time.Now(), nil)
	r.Remove(1)
	newer, _ := r.TryCreate(1, 10, 1, time.Now(), nil)

	if r.removeIf(1, old) {
		t.Fatal("stale session removed the newer one")
	}
	got, err := r.Get(1)
	if err != nil || got != newer {
		t.Fatalf("expected newer session to remain, got %v (%v)", got, err)
	}
}
