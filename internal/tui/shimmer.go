package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Shimmer sweeps a highlight across a line of text, one rune per step,
// then rests for a few steps before the next pass.
type Shimmer struct {
	Pos    int // index of the brightest rune
	Spread int // runes either side that are lit
	Rest   int // idle steps between passes

	resting int
}

func NewShimmer() Shimmer {
	return Shimmer{Pos: -2, Spread: 2, Rest: 6}
}

// Next advances the highlight over text of n runes
func (s Shimmer) Next(n int) Shimmer {
	if s.resting > 0 {
		s.resting--
		return s
	}
	s.Pos++
	if s.Pos > n+s.Spread {
		s.Pos = -s.Spread
		s.resting = s.Rest
	}
	return s
}

func (s Shimmer) Render(text string) string {
	base := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
	near := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorShimmer)).Bold(true)
	peak := near.Underline(true)

	var b strings.Builder
	for i, r := range []rune(text) {
		d := i - s.Pos
		if d < 0 {
			d = -d
		}
		switch {
		case s.resting > 0 || d > s.Spread:
			b.WriteString(base.Render(string(r)))
		case d == 0:
			b.WriteString(peak.Render(string(r)))
		default:
			b.WriteString(near.Render(string(r)))
		}
	}
	return b.String()
}
