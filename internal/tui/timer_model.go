package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/studybot/internal/apperrors"
	"github.com/balkashynov/studybot/internal/notify"
	"github.com/balkashynov/studybot/internal/server"
	"github.com/balkashynov/studybot/internal/session"
)

const (
	requestTimeout = 5 * time.Second
	refreshEvery   = 5 // ticks between status polls
	maxLogLines    = 200
)

// Backend is the server API the console drives
type Backend interface {
	Status(ctx context.Context, groupID int64) (server.SessionResponse, error)
	Command(ctx context.Context, groupID int64, req server.CommandRequest) (server.CommandResponse, error)
}

// Identity is who the console speaks as, and in which group
type Identity struct {
	GroupID     int64
	UserID      int64
	DisplayName string
}

type lineKind int

const (
	lineSent lineKind = iota
	lineReply
	lineEvent
	lineError
)

type logLine struct {
	at   time.Time
	kind lineKind
	text string
}

// ConsoleModel shows a group's live session and lets the user type
// chat commands into it
type ConsoleModel struct {
	backend Backend
	id      Identity
	events  <-chan notify.Event

	width  int
	height int

	status    *server.SessionResponse
	fetchedAt time.Time
	remaining time.Duration

	log     []logLine
	input   textinput.Model
	bar     progress.Model
	shimmer Shimmer
	ticks   int

	quitting bool
}

type tickMsg time.Time

type statusMsg struct {
	status *server.SessionResponse
	err    error
}

type replyMsg struct {
	resp server.CommandResponse
	err  error
}

type eventMsg notify.Event

type streamClosedMsg struct{}

func NewConsoleModel(backend Backend, id Identity, events <-chan notify.Event) ConsoleModel {
	ti := textinput.New()
	ti.Placeholder = "/study 25"
	ti.Prompt = "› "
	ti.CharLimit = 200
	ti.Focus()

	return ConsoleModel{
		backend: backend,
		id:      id,
		events:  events,
		input:   ti,
		bar:     progress.New(progress.WithGradient(ColorAccentMain, ColorAccentBright), progress.WithoutPercentage()),
		shimmer: NewShimmer(),
	}
}

func (m ConsoleModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchStatus(), tick(), m.waitForEvent())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m ConsoleModel) fetchStatus() tea.Cmd {
	backend, gid := m.backend, m.id.GroupID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := backend.Status(ctx, gid)
		if err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{status: &st}
	}
}

func (m ConsoleModel) sendCommand(text string) tea.Cmd {
	backend, id := m.backend, m.id
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := backend.Command(ctx, id.GroupID, server.CommandRequest{
			UserID:      id.UserID,
			DisplayName: id.DisplayName,
			Text:        text,
		})
		return replyMsg{resp: resp, err: err}
	}
}

func (m ConsoleModel) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.ticks++
		m.shimmer = m.shimmer.Next(len([]rune(headerText)))
		m.remaining = m.currentRemaining(time.Time(msg))
		cmds := []tea.Cmd{tick()}
		if m.ticks%refreshEvery == 0 {
			cmds = append(cmds, m.fetchStatus())
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		switch {
		case errors.Is(msg.err, apperrors.ErrNotFound):
			m.status = nil
		case msg.err != nil:
			m = m.appendLine(lineError, msg.err.Error())
		default:
			m.status = msg.status
			m.fetchedAt = time.Now()
			m.remaining = m.currentRemaining(m.fetchedAt)
		}
		return m, nil

	case replyMsg:
		switch {
		case msg.err != nil:
			m = m.appendLine(lineError, msg.err.Error())
		case !msg.resp.Handled:
			m = m.appendLine(lineError, "not a command; try /start for help")
		default:
			m = m.appendLine(lineReply, msg.resp.Reply)
		}
		return m, m.fetchStatus()

	case eventMsg:
		m = m.appendLine(lineEvent, msg.Text)
		return m, tea.Batch(m.waitForEvent(), m.fetchStatus())

	case streamClosedMsg:
		m = m.appendLine(lineError, "notification stream closed")
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-6, 10)
		m.bar.Width = min(max(msg.Width/2-8, 10), 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m = m.appendLine(lineSent, text)
			return m, m.sendCommand(text)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// currentRemaining counts down locally between status polls
func (m ConsoleModel) currentRemaining(now time.Time) time.Duration {
	if m.status == nil {
		return 0
	}
	left := time.Duration(m.status.RemainingSeconds)*time.Second - now.Sub(m.fetchedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (m ConsoleModel) appendLine(kind lineKind, text string) ConsoleModel {
	m.log = append(m.log, logLine{at: time.Now(), kind: kind, text: text})
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
	return m
}

const headerText = "STUDY SESSION"

func (m ConsoleModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.quitting {
		return ""
	}

	footer := lipgloss.JoinVertical(lipgloss.Left, m.input.View(), m.renderHelpBar())
	contentHeight := m.height - lipgloss.Height(footer) - 1

	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderSessionPanel(m.width, contentHeight/2),
			m.renderLogPanel(m.width, contentHeight-contentHeight/2),
			footer,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2
	content := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSessionPanel(leftWidth, contentHeight),
		"  ",
		m.renderLogPanel(rightWidth, contentHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, footer)
}

func (m ConsoleModel) renderSessionPanel(width, height int) string {
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
	secondary := center.Foreground(lipgloss.Color(ColorSecondaryText))

	components := []string{
		center.Render(m.shimmer.Render(headerText)),
		secondary.Render(fmt.Sprintf("group %d · %s", m.id.GroupID, m.id.DisplayName)),
	}

	if m.status == nil {
		idle := center.Foreground(lipgloss.Color(ColorDisabledText)).Italic(true)
		components = append(components,
			idle.Render("No active session"),
			idle.Render("type /study <minutes> [cycles] to start one"),
		)
	} else {
		st := m.status
		mode := center.Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
		components = append(components, mode.Render(fmt.Sprintf("%s · %d min · %d cycle(s)", st.Mode, st.Minutes, st.Cycles)))

		clockColor := ColorAccentBright
		if m.remaining <= time.Minute {
			clockColor = ColorWarning
		}
		var clock []string
		for _, line := range strings.Split(renderBigClock(m.remaining, clockColor), "\n") {
			clock = append(clock, center.Render(line))
		}
		components = append(components, strings.Join(clock, "\n"))

		total := time.Duration(st.Minutes) * time.Minute
		done := 1.0
		if total > 0 {
			done = min(max(1-float64(m.remaining)/float64(total), 0), 1)
		}
		components = append(components,
			center.Render(m.bar.ViewAs(done)),
			secondary.Italic(true).Render("Ends at "+st.EndsAt.Local().Format("15:04:05")),
			m.renderMembers(width, st.Members),
		)
	}

	panel := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)
	return panel.Render(strings.Join(components, "\n\n"))
}

func (m ConsoleModel) renderMembers(width int, members []session.Member) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Padding(0, 1).
		Width(min(width-8, 40))

	if len(members) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, box.Render("No participants yet · /join"))
	}
	names := make([]string, 0, len(members))
	for _, p := range members {
		names = append(names, "• "+p.DisplayName)
	}
	title := fmt.Sprintf("Participants (%d)", len(members))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box.Render(title+"\n"+strings.Join(names, "\n")))
}

func (m ConsoleModel) renderLogPanel(width, height int) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(width - 2).
		Height(max(height-2, 1))

	inner := width - 6
	var lines []string
	for _, l := range m.log {
		lines = append(lines, renderLogLine(l, inner)...)
	}
	if visible := max(height-2, 1); len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	return border.Render(strings.Join(lines, "\n"))
}

func renderLogLine(l logLine, width int) []string {
	stamp := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render(l.at.Format("15:04"))

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	switch l.kind {
	case lineSent:
		style = style.Foreground(lipgloss.Color(ColorAccentBright))
	case lineEvent:
		style = style.Foreground(lipgloss.Color(ColorWarning)).Bold(true)
		if strings.HasPrefix(l.text, "✅") {
			style = style.Foreground(lipgloss.Color(ColorSuccess))
		}
	case lineError:
		style = style.Foreground(lipgloss.Color(ColorError)).Italic(true)
	}

	body := style.Width(max(width-6, 10)).Render(l.text)
	out := strings.Split(body, "\n")
	out[0] = stamp + " " + out[0]
	for i := 1; i < len(out); i++ {
		out[i] = "      " + out[i]
	}
	return out
}

func (m ConsoleModel) renderHelpBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width).
		Render("enter send · /study /join /status /leaderboard /end · esc quit")
}

var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock draws d as five rows of block digits
func renderBigClock(d time.Duration, color string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)

	var rows [5]strings.Builder
	for _, r := range formatClock(d) {
		art, ok := bigDigits[r]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i].WriteString(art[i])
			rows[i].WriteString(" ")
		}
	}

	out := make([]string, len(rows))
	for i := range rows {
		out[i] = style.Render(rows[i].String())
	}
	return strings.Join(out, "\n")
}

// formatClock renders mm:ss, or hh:mm:ss once an hour or more is left
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second).Seconds())
	h, mnt, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, mnt, s)
	}
	return fmt.Sprintf("%02d:%02d", mnt, s)
}
