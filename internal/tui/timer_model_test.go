package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/studybot/internal/apperrors"
	"github.com/balkashynov/studybot/internal/notify"
	"github.com/balkashynov/studybot/internal/server"
	"github.com/balkashynov/studybot/internal/session"
)

type fakeBackend struct {
	status   server.SessionResponse
	statErr  error
	commands []server.CommandRequest
	reply    server.CommandResponse
}

func (f *fakeBackend) Status(context.Context, int64) (server.SessionResponse, error) {
	return f.status, f.statErr
}

func (f *fakeBackend) Command(_ context.Context, _ int64, req server.CommandRequest) (server.CommandResponse, error) {
	f.commands = append(f.commands, req)
	return f.reply, nil
}

func update(t *testing.T, m ConsoleModel, msg tea.Msg) (ConsoleModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(ConsoleModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return cm, cmd
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{14*time.Minute + 30*time.Second, "14:30"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.in); got != tt.want {
			t.Errorf("formatClock(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusUpdatesView(t *testing.T) {
	backend := &fakeBackend{}
	m := NewConsoleModel(backend, Identity{GroupID: 7, UserID: 42, DisplayName: "Ann"}, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if !strings.Contains(m.View(), "No active session") {
		t.Fatal("idle view missing")
	}

	st := server.SessionResponse{
		Minutes:          25,
		Cycles:           3,
		Mode:             "Pomodoro",
		RemainingSeconds: 870,
		EndsAt:           time.Now().Add(870 * time.Second),
		Members:          []session.Member{{ParticipantID: 42, DisplayName: "Ann"}},
	}
	m, _ = update(t, m, statusMsg{status: &st})

	view := m.View()
	for _, want := range []string{"Pomodoro", "Participants (1)", "Ann"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if m.remaining < 869*time.Second || m.remaining > 870*time.Second {
		t.Errorf("unexpected remaining %s", m.remaining)
	}

	m, _ = update(t, m, statusMsg{err: fmt.Errorf("%w: no session", apperrors.ErrNotFound)})
	if m.status != nil {
		t.Error("not found status did not clear the session")
	}
}

func TestEnterSendsCommand(t *testing.T) {
	backend := &fakeBackend{reply: server.CommandResponse{Handled: true, Reply: "Ann joined the session! Participants: 1"}}
	m := NewConsoleModel(backend, Identity{GroupID: 7, UserID: 42, DisplayName: "Ann"}, nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || len(m.log) != 0 {
		t.Fatal("empty input must not send")
	}

	m.input.SetValue("  /join ")
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if m.input.Value() != "" {
		t.Error("input not cleared after send")
	}

	m, _ = update(t, m, cmd())
	if len(backend.commands) != 1 || backend.commands[0].Text != "/join" || backend.commands[0].UserID != 42 {
		t.Fatalf("unexpected commands %+v", backend.commands)
	}
	if len(m.log) != 2 || m.log[0].kind != lineSent || m.log[1].text != "Ann joined the session! Participants: 1" {
		t.Fatalf("unexpected log %+v", m.log)
	}
}

func TestEventsAreLogged(t *testing.T) {
	events := make(chan notify.Event, 1)
	m := NewConsoleModel(&fakeBackend{}, Identity{GroupID: 7}, events)

	events <- notify.Event{GroupID: 7, Text: "⏳ 1 minute left!"}
	msg := m.waitForEvent()()
	m, cmd := update(t, m, msg)
	if cmd == nil {
		t.Fatal("expected to keep listening")
	}
	if len(m.log) != 1 || m.log[0].kind != lineEvent || m.log[0].text != "⏳ 1 minute left!" {
		t.Fatalf("unexpected log %+v", m.log)
	}

	close(events)
	m, _ = update(t, m, m.waitForEvent()())
	if m.log[len(m.log)-1].text != "notification stream closed" {
		t.Errorf("stream close not reported: %+v", m.log)
	}
}

func TestShimmerRests(t *testing.T) {
	s := NewShimmer()
	n := len([]rune(headerText))
	for i := 0; i < n+2*s.Spread+1; i++ {
		s = s.Next(n)
	}
	if s.resting == 0 {
		t.Fatal("expected shimmer to rest after a full pass")
	}
	if got := s.Render("ab"); !strings.Contains(got, "a") || !strings.Contains(got, "b") {
		t.Errorf("render lost text: %q", got)
	}
}
