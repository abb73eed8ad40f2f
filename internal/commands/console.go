package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studybot/internal/client"
	"github.com/balkashynov/studybot/internal/tui"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open an interactive console for a group",
	Long: `Open a full-screen console showing the group's live session, with a
countdown, participants, reminders as they arrive, and a prompt for chat commands.

Examples:
  studybot console --group 1 --user 42 --name Ann`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetInt64("group")
		user, _ := cmd.Flags().GetInt64("user")
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = fmt.Sprintf("user%d", user)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		c := client.New(serverURL)
		events, err := c.Events(ctx, group)
		if err != nil {
			// the console still works by polling
			fmt.Printf("⚠️  live notifications unavailable: %v\n", err)
			events = nil
		}

		return tui.RunConsole(c, tui.Identity{GroupID: group, UserID: user, DisplayName: name}, events)
	},
}

func init() {
	consoleCmd.Flags().Int64P("group", "g", 0, "Group ID")
	consoleCmd.Flags().Int64P("user", "u", 0, "Your user ID")
	consoleCmd.Flags().StringP("name", "n", "", "Your display name")
	consoleCmd.MarkFlagRequired("group")
	consoleCmd.MarkFlagRequired("user")
}
