package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/studybot/internal/client"
	"github.com/balkashynov/studybot/internal/config"
	"github.com/balkashynov/studybot/internal/db"
	"github.com/balkashynov/studybot/internal/models"
)

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"lb"},
	Short:   "Show a group's leaderboard",
	Long: `Show a group's leaderboard read straight from the database, or from a
running server with --remote.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetInt64("group")
		limit, _ := cmd.Flags().GetInt("limit")
		remote, _ := cmd.Flags().GetBool("remote")

		var (
			entries []models.LeaderboardEntry
			err     error
		)
		if remote {
			entries, err = remoteLeaderboard(cmd.Context(), group, limit)
		} else {
			entries, err = localLeaderboard(cmd.Context(), group, limit)
		}
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No records yet. Finish a session with 'studybot send ... /study <minutes>'.")
			return nil
		}

		fmt.Printf("%-5s %-30s %s\n", "RANK", "NAME", "MINUTES")
		fmt.Println(strings.Repeat("-", 46))
		for i, e := range entries {
			name := e.DisplayName
			if len(name) > 28 {
				name = name[:25] + "..."
			}
			fmt.Printf("%-5d %-30s %d\n", i+1, name, e.TotalMinutes)
		}
		return nil
	},
}

func localLeaderboard(ctx context.Context, group int64, limit int) ([]models.LeaderboardEntry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	gdb, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close(gdb)

	if limit <= 0 {
		limit = cfg.LeaderboardLimit
	}
	return db.NewLeaderboardStore(gdb).Top(ctx, group, limit)
}

func remoteLeaderboard(ctx context.Context, group int64, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	resp, err := client.New(serverURL).Leaderboard(ctx, group, limit)
	if err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func init() {
	leaderboardCmd.Flags().Int64P("group", "g", 0, "Group ID")
	leaderboardCmd.Flags().IntP("limit", "l", 0, "Number of entries (default STUDYBOT_LEADERBOARD_LIMIT)")
	leaderboardCmd.Flags().Bool("remote", false, "Ask the running server instead of reading the database")
	leaderboardCmd.MarkFlagRequired("group")
}
