package tui

// Color constants for the studybot console theme
const (
	ColorBorder = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2" // Titles, user input
	ColorSecondaryText = "#B1B8C7" // Timestamps, hints
	ColorDisabledText  = "#6D7383" // Idle state
	ColorHelpText      = "240"     // Dark grey for help text

	// Accent Colors
	ColorAccentMain   = "#7C3AED" // Clock, progress start
	ColorAccentBright = "#A78BFA" // Highlights, progress end
	ColorShimmer      = "#EAE6FF" // Header shimmer peak

	// State Colors
	ColorError   = "#EF4444" // Failed requests
	ColorSuccess = "#22C55E" // Completion notices
	ColorWarning = "#F59E0B" // Countdown warnings
)
