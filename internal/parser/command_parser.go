package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/balkashynov/studybot/internal/apperrors"
	"github.com/balkashynov/studybot/internal/session"
)

// Kind identifies a chat command
type Kind string

const (
	KindHelp        Kind = "start"
	KindStudy       Kind = "study"
	KindJoin        Kind = "join"
	KindStatus      Kind = "status"
	KindLeaderboard Kind = "leaderboard"
	KindEnd         Kind = "end"
	KindBreak       Kind = "break"
)

var (
	// ErrNotCommand is returned for text that does not start with '/'
	ErrNotCommand = errors.New("not a command")
	// ErrUnknownCommand is returned for a '/' word the bot does not handle
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned when a command is missing a required argument
	ErrUsage = errors.New("missing argument")
)

// Command is a parsed chat command
type Command struct {
	Kind    Kind
	Args    []string
	Minutes int // study: session length
	Cycles  int // study: requested repeat cycles, defaults to 1
}

var minutesRegex = regexp.MustCompile(`^(\d+)\s*(m|min|mins|minute|minutes|h|hr|hour|hours)?$`)

// ParseCommand reads a chat message such as "/study 25 2" or "/join@studybot"
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, ErrNotCommand
	}

	// Strip a "@botname" mention from the command word
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	cmd := Command{
		Kind: Kind(strings.ToLower(name)),
		Args: fields[1:],
	}

	switch cmd.Kind {
	case KindHelp, KindJoin, KindStatus, KindLeaderboard, KindEnd, KindBreak:
		return cmd, nil
	case KindStudy:
		return parseStudy(cmd)
	default:
		return cmd, fmt.Errorf("/%s: %w", name, ErrUnknownCommand)
	}
}

// parseStudy fills minutes and cycles from "<minutes> [cycles]"
func parseStudy(cmd Command) (Command, error) {
	if len(cmd.Args) == 0 {
		return cmd, fmt.Errorf("/study needs minutes: %w", ErrUsage)
	}

	minutes, err := ParseMinutes(cmd.Args[0])
	if err != nil {
		return cmd, err
	}
	cmd.Minutes = minutes

	cmd.Cycles = 1
	if len(cmd.Args) > 1 {
		cycles, err := strconv.Atoi(cmd.Args[1])
		if err != nil || cycles < 1 {
			return cmd, fmt.Errorf("cycles %q: %w", cmd.Args[1], apperrors.ErrInvalidInput)
		}
		cmd.Cycles = cycles
	}

	return cmd, nil
}

// ParseMinutes accepts a bare number of minutes or a number with a
// minute/hour unit, e.g. "25", "25m", "1h"
func ParseMinutes(input string) (int, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	matches := minutesRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return 0, fmt.Errorf("minutes %q: %w", input, apperrors.ErrInvalidInput)
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("minutes %q: %w", input, apperrors.ErrInvalidInput)
	}

	switch matches[2] {
	case "h", "hr", "hour", "hours":
		if amount > session.MaxMinutes/60 {
			return 0, fmt.Errorf("minutes %q: at most %d: %w", input, session.MaxMinutes, apperrors.ErrInvalidInput)
		}
		amount *= 60
	}

	if amount <= 0 {
		return 0, fmt.Errorf("minutes must be positive: %w", apperrors.ErrInvalidInput)
	}
	if amount > session.MaxMinutes {
		return 0, fmt.Errorf("minutes %q: at most %d: %w", input, session.MaxMinutes, apperrors.ErrInvalidInput)
	}
	return amount, nil
}
