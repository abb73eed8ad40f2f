// Package bot turns chat commands into session operations and reply text.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/balkashynov/studybot/internal/apperrors"
	"github.com/balkashynov/studybot/internal/models"
	"github.com/balkashynov/studybot/internal/parser"
	"github.com/balkashynov/studybot/internal/session"
)

const helpText = "Hi! Commands: /study <minutes> [cycles], /join, /status, /leaderboard, /end"

// Sessions is the subset of the session manager the dispatcher drives
type Sessions interface {
	Start(groupID int64, minutes, cycles int) (*session.Session, error)
	Join(groupID, participantID int64, displayName string) (int, error)
	Status(groupID int64) (session.Status, error)
	Cancel(ctx context.Context, groupID, requesterID int64) error
	Leaderboard(ctx context.Context, groupID int64, limit int) ([]models.LeaderboardEntry, error)
}

// Message is an incoming chat message
type Message struct {
	GroupID     int64
	UserID      int64
	DisplayName string
	Text        string
}

// Dispatcher answers chat commands
type Dispatcher struct {
	sessions Sessions
	limit    int
	log      *zap.Logger
}

func NewDispatcher(sessions Sessions, leaderboardLimit int, log *zap.Logger) *Dispatcher {
	if leaderboardLimit <= 0 {
		leaderboardLimit = 10
	}
	return &Dispatcher{sessions: sessions, limit: leaderboardLimit, log: log}
}

// Handle returns the reply for a message. Text that is not a command
// yields an empty reply and ok=false.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) (reply string, ok bool) {
	cmd, err := parser.ParseCommand(msg.Text)
	if errors.Is(err, parser.ErrNotCommand) {
		return "", false
	}

	switch cmd.Kind {
	case parser.KindHelp:
		return helpText, true
	case parser.KindStudy:
		return d.study(msg, cmd, err), true
	case parser.KindJoin:
		return d.join(msg), true
	case parser.KindStatus:
		return d.status(msg), true
	case parser.KindLeaderboard:
		return d.leaderboard(ctx, msg), true
	case parser.KindEnd:
		return d.end(ctx, msg), true
	case parser.KindBreak:
		return "Breaks are not supported here; take five and /study again when ready.", true
	default:
		return "Unknown command. " + helpText, true
	}
}

func (d *Dispatcher) study(msg Message, cmd parser.Command, parseErr error) string {
	switch {
	case errors.Is(parseErr, parser.ErrUsage):
		return "Usage: /study <minutes> [cycles]"
	case parseErr != nil:
		return "Please provide a valid number of minutes."
	}

	_, err := d.sessions.Start(msg.GroupID, cmd.Minutes, cmd.Cycles)
	switch {
	case errors.Is(err, apperrors.ErrConflict):
		return "There is already an active session. Use /end to stop it."
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "Please provide a valid number of minutes."
	case err != nil:
		d.log.Error("start session", zap.Int64("group_id", msg.GroupID), zap.Error(err))
		return "Could not start the session, try again later."
	}
	return fmt.Sprintf("📚 Study session started for %d minutes! Type /join to join. Cycles: %d", cmd.Minutes, cmd.Cycles)
}

func (d *Dispatcher) join(msg Message) string {
	count, err := d.sessions.Join(msg.GroupID, msg.UserID, msg.DisplayName)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "No active session. Start one with /study <minutes>."
	case errors.Is(err, apperrors.ErrAlreadyJoined):
		return "You already joined this session."
	case err != nil:
		d.log.Error("join session", zap.Int64("group_id", msg.GroupID), zap.Error(err))
		return "Could not join the session, try again later."
	}
	return fmt.Sprintf("%s joined the session! Participants: %d", msg.DisplayName, count)
}

func (d *Dispatcher) status(msg Message) string {
	st, err := d.sessions.Status(msg.GroupID)
	if err != nil {
		return "No active session right now."
	}

	secs := int(st.Remaining.Seconds())
	names := make([]string, 0, len(st.Members))
	for _, m := range st.Members {
		names = append(names, m.DisplayName)
	}
	members := strings.Join(names, ", ")
	if members == "" {
		members = "No participants yet"
	}

	return fmt.Sprintf("📊 Session status:\nDuration: %d minutes\nTime left: %dm %ds\nParticipants: %s",
		st.Minutes, secs/60, secs%60, members)
}

func (d *Dispatcher) end(ctx context.Context, msg Message) string {
	err := d.sessions.Cancel(ctx, msg.GroupID, msg.UserID)
	switch {
	case errors.Is(err, apperrors.ErrForbidden):
		return "Only group admins can end the session early."
	case errors.Is(err, apperrors.ErrNotFound):
		return "No active session to end."
	case err != nil:
		d.log.Error("end session", zap.Int64("group_id", msg.GroupID), zap.Error(err))
		return "Could not end the session, try again later."
	}
	return "⛔ Session ended by admin."
}

func (d *Dispatcher) leaderboard(ctx context.Context, msg Message) string {
	entries, err := d.sessions.Leaderboard(ctx, msg.GroupID, d.limit)
	if err != nil {
		d.log.Error("leaderboard", zap.Int64("group_id", msg.GroupID), zap.Error(err))
		return "Could not load the leaderboard, try again later."
	}
	if len(entries) == 0 {
		return "No records yet."
	}

	var b strings.Builder
	b.WriteString("🏆 Leaderboard (top)\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s — %d minutes\n", i+1, e.DisplayName, e.TotalMinutes)
	}
	return b.String()
}
