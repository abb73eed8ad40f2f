package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "studybot",
	Short: "Group study sessions with a shared leaderboard",
	Long: `studybot runs timed group study sessions. Members join a running session,
get reminders as the end approaches, and earn minutes on their group's
leaderboard when the session completes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command; ctx is cancelled on SIGINT/SIGTERM
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "studybot server URL for client commands")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
