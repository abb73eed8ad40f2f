package server

import (
	"net/http"
	"strconv"

	"github.com/balkashynov/studybot/internal/bot"
	"github.com/balkashynov/studybot/internal/models"
)

type LeaderboardResponse struct {
	GroupID int64                     `json:"group_id"`
	Entries []models.LeaderboardEntry `json:"entries"`
}

func handleLeaderboard(sessions bot.Sessions, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gid, err := groupID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid group id")
			return
		}

		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "limit must be a number")
				return
			}
		}

		entries, err := sessions.Leaderboard(r.Context(), gid, limit)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, LeaderboardResponse{GroupID: gid, Entries: entries})
	}
}
