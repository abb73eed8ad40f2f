package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show comprehensive help for studybot",
	Long:  `Display detailed help for all studybot commands, chat commands and settings.`,
	Run: func(cmd *cobra.Command, args []string) {
		showCustomHelp()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("studybot %s (commit %s, built %s)\n", version, commit, date)
	},
}

func showCustomHelp() {
	fmt.Print(`
studybot - group study sessions with a shared leaderboard

COMMANDS:

  serve                   Run the session server
  send <text>             Send a chat command to a group and print the reply
    -g, --group           Group ID
    -u, --user            Sender user ID
    -n, --name            Sender display name
  console                 Interactive console for a group (same flags as send)
  leaderboard             Print a group's leaderboard
    -g, --group           Group ID
    -l, --limit           Number of entries
    --remote              Ask the server instead of reading the database
  version                 Print version information
  help                    Show this help

  --server URL            Server for send, console and leaderboard --remote
                          (default http://localhost:8080)

CHAT COMMANDS:

  /start                  Show the command list
  /study <min> [cycles]   Start a session; cycles > 1 runs in Pomodoro mode
  /join                   Join the running session
  /status                 Time left and participants
  /leaderboard            Top participants by total minutes
  /end                    End the session early (group admins only, no credit)

  Reminders are posted at 5 minutes and 1 minute left. When a session
  completes, every participant is credited the session's minutes.

SETTINGS (environment):

  STUDYBOT_HTTP_ADDR          Listen address (default :8080)
  STUDYBOT_DB_PATH            SQLite file (default ~/.studybot/studybot.db)
  STUDYBOT_LOG_LEVEL          debug|info|warn|error (default info)
  STUDYBOT_LOG_FORMAT         json|console (default json)
  STUDYBOT_POLL_INTERVAL      Scheduler tick (default 15s)
  STUDYBOT_ADMINS             Comma-separated group:user pairs, * for any group
  STUDYBOT_LEADERBOARD_LIMIT  Default leaderboard size (default 10)

Example:
  STUDYBOT_ADMINS='*:7' studybot serve
  studybot send -g 1 -u 42 -n Ann "/study 25"
  studybot console -g 1 -u 42 -n Ann

`)
}
