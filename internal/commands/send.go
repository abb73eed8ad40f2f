package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studybot/internal/client"
	"github.com/balkashynov/studybot/internal/server"
)

var sendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Send a chat command to a group",
	Long: `Send a chat message to a group as the given user and print the bot's reply.

Examples:
  studybot send --group 1 --user 42 --name Ann "/study 25"
  studybot send --group 1 --user 42 --name Ann /join
  studybot send --group 1 --user 7 /end`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetInt64("group")
		user, _ := cmd.Flags().GetInt64("user")
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = fmt.Sprintf("user%d", user)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		resp, err := client.New(serverURL).Command(ctx, group, server.CommandRequest{
			UserID:      user,
			DisplayName: name,
			Text:        strings.Join(args, " "),
		})
		if err != nil {
			return err
		}
		if !resp.Handled {
			fmt.Println("Not a command. Try /start for the list.")
			return nil
		}
		fmt.Println(resp.Reply)
		return nil
	},
}

func init() {
	sendCmd.Flags().Int64P("group", "g", 0, "Group ID")
	sendCmd.Flags().Int64P("user", "u", 0, "Sender user ID")
	sendCmd.Flags().StringP("name", "n", "", "Sender display name")
	sendCmd.MarkFlagRequired("group")
	sendCmd.MarkFlagRequired("user")
}
