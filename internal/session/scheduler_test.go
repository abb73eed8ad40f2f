package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestScheduler(r *Registry, store Creditor, sink Sink, clk *fakeClock) *Scheduler {
	return &Scheduler{
		registry:   r,
		store:      store,
		sink:       sink,
		clock:      clk,
		logger:     zap.NewNop(),
		interval:   time.Millisecond,
		thresholds: DefaultThresholds(),
	}
}

func TestPollFiresEachThresholdOnce(t *testing.T) {
	clk := newFakeClock()
	r := NewRegistry()
	sink := &recordingSink{}
	sc := newTestScheduler(r, newFakeStore(), sink, clk)
	s, _ := r.TryCreate(1, 10, 1, clk.Now(), nil)
	ctx := context.Background()

	// 10 minutes total; step through remaining times at 15 s ticks
	// offset so no tick lands on a round number
	clk.Advance(10*time.Minute - 5*time.Minute - 37*time.Second)
	for clk.Now().Before(s.EndsAt()) {
		if sc.poll(ctx, s) {
			t.Fatal("poll reported completion before the end")
		}
		clk.Advance(15 * time.Second)
	}

	var texts []string
	for _, m := range sink.Messages() {
		texts = append(texts, m.Text)
	}
	want := []string{"⏳ 5 minutes left!", "⏳ 1 minute left!"}
	if strings.Join(texts, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, texts)
	}
	if !s.Warned("5-minute") || !s.Warned("1-minute") {
		t.Error("thresholds not recorded as fired")
	}
}

func TestPollWindowBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		wantFired string
	}{
		{"just above 1-minute window", 75 * time.Second, ""},
		{"top of 1-minute window", 74 * time.Second, "1-minute"},
		{"bottom of 1-minute window", 60 * time.Second, "1-minute"},
		{"just below 1-minute window", 59 * time.Second, ""},
		{"just above 5-minute window", 330 * time.Second, ""},
		{"bottom of 5-minute window", 300 * time.Second, "5-minute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := newFakeClock()
			r := NewRegistry()
			sink := &recordingSink{}
			sc := newTestScheduler(r, newFakeStore(), sink, clk)
			s, _ := r.TryCreate(1, 10, 1, clk.Now(), nil)

			clk.Advance(10*time.Minute - tt.remaining)
			sc.poll(context.Background(), s)

			msgs := sink.Messages()
			if tt.wantFired == "" {
				if len(msgs) != 0 {
					t.Fatalf("expected no warning, got %v", msgs)
				}
				return
			}
			if len(msgs) != 1 || !s.Warned(tt.wantFired) {
				t.Fatalf("expected %s warning, got %v", tt.wantFired, msgs)
			}
		})
	}
}

func TestPollDeliveryFailureIsNotRetried(t *testing.T) {
	clk := newFakeClock()
	r := NewRegistry()
	sink := &recordingSink{err: errDelivery}
	sc := newTestScheduler(r, newFakeStore(), sink, clk)
	s, _ := r.TryCreate(1, 2, 1, clk.Now(), nil)

	clk.Advance(2*time.Minute - 70*time.Second)
	if sc.poll(context.Background(), s) {
		t.Fatal("unexpected completion")
	}
	clk.Advance(5 * time.Second)
	sc.poll(context.Background(), s)

	if got := len(sink.Messages()); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestRunCompletesAndCredits(t *testing.T) {
	clk := newFakeClock()
	r := NewRegistry()
	store := newFakeStore()
	sink := &recordingSink{}
	sc := newTestScheduler(r, store, sink, clk)

	s, _ := r.TryCreate(1, 25, 1, clk.Now(), nil)
	r.Join(1, 42, "Ann")
	r.Join(1, 43, "Bo")

	go sc.Run(context.Background(), s)
	clk.Advance(25 * time.Minute)
	waitDone(t, s)

	if s.State() != Completed {
		t.Fatalf("expected completed, got %s", s.State())
	}
	if _, err := r.Get(1); err == nil {
		t.Fatal("completed session still registered")
	}

	credited := store.Credited(1)
	if len(credited) != 2 || credited[0].Minutes != 25 || credited[1].DisplayName != "Bo" {
		t.Fatalf("unexpected credits: %+v", credited)
	}

	msgs := sink.Messages()
	last := msgs[len(msgs)-1].Text
	if last != "✅ Study session of 25 minutes finished! Participants: Ann, Bo" {
		t.Errorf("unexpected completion text %q", last)
	}
}

func TestRunCompletesWithNoOne(t *testing.T) {
	clk := newFakeClock()
	r := NewRegistry()
	store := newFakeStore()
	sink := &recordingSink{}
	sc := newTestScheduler(r, store, sink, clk)

	s, _ := r.TryCreate(3, 5, 1, clk.Now(), nil)
	clk.Advance(6 * time.Minute)
	go sc.Run(context.Background(), s)
	waitDone(t, s)

	if len(store.Credited(3)) != 0 {
		t.Fatal("empty session credited someone")
	}
	msgs := sink.Messages()
	if len(msgs) != 1 || !strings.HasSuffix(msgs[0].Text, "Participants: No one") {
		t.Fatalf("expected 'No one' completion, got %v", msgs)
	}
}

func TestRunCreditFailureStillCompletes(t *testing.T) {
	clk := newFakeClock()
	r := NewRegistry()
	store := newFakeStore()
	store.err = errors.New("disk full")
	sink := &recordingSink{}
	sc := newTestScheduler(r, store, sink, clk)

	s, _ := r.TryCreate(1, 5, 1, clk.Now(), nil)
	r.Join(1, 42, "Ann")
	clk.Advance(5 * time.Minute)
	go sc.Run(context.Background(), s)
	waitDone(t, s)

	if s.State() != Completed {
		t.Fatalf("expected completed, got %s", s.State())
	}
	msgs := sink.Messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0].Text, "could not be recorded") {
		t.Fatalf("expected failure notice, got %v", msgs)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	clk := newFakeClock()
	r := NewRegistry()
	store := newFakeStore()
	sink := &recordingSink{}
	sc := newTestScheduler(r, store, sink, clk)

	ctx, cancel := context.WithCancel(context.Background())
	s, _ := r.TryCreate(1, 25, 1, clk.Now(), cancel)
	r.Join(1, 42, "Ann")

	go sc.Run(ctx, s)
	clk.Advance(24 * time.Minute)
	if !s.stop() {
		t.Fatal("stop on running session returned false")
	}
	waitDone(t, s)

	clk.Advance(5 * time.Minute)
	if s.State() != Cancelled {
		t.Fatalf("expected cancelled, got %s", s.State())
	}
	if len(store.Credited(1)) != 0 {
		t.Fatal("cancelled session credited participants")
	}
	for _, m := range sink.Messages() {
		if strings.HasPrefix(m.Text, "✅") {
			t.Fatalf("cancelled session sent completion %q", m.Text)
		}
	}
}

func TestStopAfterCompletionBegins(t *testing.T) {
	s := newSession(1, 5, 1, time.Now(), func() {})

	if !s.beginCompletion() {
		t.Fatal("beginCompletion on running session returned false")
	}
	if s.stop() {
		t.Fatal("stop succeeded during completion")
	}
	if s.markWarned("1-minute") {
		t.Fatal("warning marked outside the running state")
	}
}
