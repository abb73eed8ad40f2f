package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type failingSink struct{ err error }

func (f failingSink) Send(context.Context, int64, string) error { return f.err }

func TestBrokerDeliversToGroup(t *testing.T) {
	b := NewBroker()
	mine := b.Subscribe(1)
	other := b.Subscribe(2)
	defer b.Unsubscribe(1, mine)
	defer b.Unsubscribe(2, other)

	if err := b.Send(context.Background(), 1, "⏳ 1 minute left!"); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case data := <-mine:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.GroupID != 1 || ev.Text != "⏳ 1 minute left!" {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("subscriber of group 1 got nothing")
	}

	select {
	case <-other:
		t.Fatal("subscriber of group 2 received group 1 event")
	default:
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(1)

	for i := 0; i < 100; i++ {
		if err := b.Send(context.Background(), 1, "tick"); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if len(ch) != cap(ch) {
		t.Errorf("expected full buffer, got %d/%d", len(ch), cap(ch))
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(1)
	b.Unsubscribe(1, ch)

	if n := b.Subscribers(1); n != 0 {
		t.Errorf("expected no subscribers, got %d", n)
	}
}

func TestFanoutJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	f := Fanout{LogSink{Log: zap.NewNop()}, failingSink{err: boom}, NewBroker()}

	err := f.Send(context.Background(), 1, "hello")
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap boom, got %v", err)
	}
	if err := (Fanout{LogSink{Log: zap.NewNop()}}).Send(context.Background(), 1, "hello"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
