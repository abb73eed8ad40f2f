package server

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/balkashynov/studybot/internal/bot"
	"github.com/balkashynov/studybot/internal/notify"
)

// Deps are the collaborators the HTTP transport exposes
type Deps struct {
	Sessions         bot.Sessions
	Dispatcher       *bot.Dispatcher
	Broker           *notify.Broker
	DB               Pinger
	LeaderboardLimit int
}

func addRoutes(r chi.Router, logger *zap.Logger, deps Deps) {
	r.Get("/healthz", handleHealth(logger, deps.DB))

	r.Route("/groups/{groupID}", func(r chi.Router) {
		r.Post("/session", handleStart(deps.Sessions, logger))
		r.Get("/session", handleStatus(deps.Sessions))
		r.Delete("/session", handleCancel(deps.Sessions))
		r.Post("/session/members", handleJoin(deps.Sessions))
		r.Get("/leaderboard", handleLeaderboard(deps.Sessions, deps.LeaderboardLimit))
		r.Get("/events", handleEvents(deps.Broker))
		r.Post("/commands", handleCommand(deps.Dispatcher))
	})
}
