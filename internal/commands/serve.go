package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/balkashynov/studybot/internal/auth"
	"github.com/balkashynov/studybot/internal/bot"
	"github.com/balkashynov/studybot/internal/config"
	"github.com/balkashynov/studybot/internal/db"
	"github.com/balkashynov/studybot/internal/logging"
	"github.com/balkashynov/studybot/internal/notify"
	"github.com/balkashynov/studybot/internal/server"
	"github.com/balkashynov/studybot/internal/session"
)

const drainTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session server",
	Long: `Run the HTTP server that owns every group's session. Configuration comes
from STUDYBOT_* environment variables (see 'studybot help').`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	admins, err := auth.ParseAdmins(cfg.Admins)
	if err != nil {
		return fmt.Errorf("parsing admins: %w", err)
	}

	gdb, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close(gdb)
	logger.Info("database ready", zap.String("path", cfg.DBPath))

	store := db.NewLeaderboardStore(gdb)
	broker := notify.NewBroker()
	manager := session.NewManager(store, notify.Fanout{broker, notify.LogSink{Log: logger}}, admins, session.Options{
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Sessions:         manager,
		Dispatcher:       bot.NewDispatcher(manager, cfg.LeaderboardLimit, logger.Named("bot")),
		Broker:           broker,
		DB:               store,
		LeaderboardLimit: cfg.LeaderboardLimit,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		httpErr := srv.Shutdown(shutdownCtx)
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("sessions did not stop in time", zap.Error(err))
		}
		return httpErr
	})

	return g.Wait()
}
