package server

import (
	"net/http"

	"github.com/balkashynov/studybot/internal/bot"
)

type CommandRequest struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
}

type CommandResponse struct {
	Handled bool   `json:"handled"`
	Reply   string `json:"reply,omitempty"`
}

// handleCommand answers a chat message the way the bot would in a group
func handleCommand(dispatcher *bot.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gid, err := groupID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid group id")
			return
		}

		var req CommandRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reply, ok := dispatcher.Handle(r.Context(), bot.Message{
			GroupID:     gid,
			UserID:      req.UserID,
			DisplayName: req.DisplayName,
			Text:        req.Text,
		})
		writeJSON(w, http.StatusOK, CommandResponse{Handled: ok, Reply: reply})
	}
}
