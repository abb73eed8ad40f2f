package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/balkashynov/studybot/internal/bot"
	"github.com/balkashynov/studybot/internal/session"
)

type StartRequest struct {
	Minutes int `json:"minutes"`
	Cycles  int `json:"cycles"`
}

type SessionResponse struct {
	SessionID        string           `json:"session_id"`
	GroupID          int64            `json:"group_id"`
	Minutes          int              `json:"minutes"`
	Cycles           int              `json:"cycles"`
	Mode             string           `json:"mode"`
	State            string           `json:"state"`
	StartedAt        time.Time        `json:"started_at"`
	EndsAt           time.Time        `json:"ends_at"`
	RemainingSeconds int              `json:"remaining_seconds"`
	Members          []session.Member `json:"members"`
}

type JoinRequest struct {
	ParticipantID int64  `json:"participant_id"`
	DisplayName   string `json:"display_name"`
}

type JoinResponse struct {
	Members int `json:"members"`
}

func toSessionResponse(st session.Status) SessionResponse {
	members := st.Members
	if members == nil {
		members = []session.Member{}
	}
	return SessionResponse{
		SessionID:        st.SessionID,
		GroupID:          st.GroupID,
		Minutes:          st.Minutes,
		Cycles:           st.Cycles,
		Mode:             st.Mode,
		State:            st.State,
		StartedAt:        st.StartedAt,
		EndsAt:           st.EndsAt,
		RemainingSeconds: int(st.Remaining.Seconds()),
		Members:          members,
	}
}

func handleStart(sessions bot.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gid, err := groupID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid group id")
			return
		}

		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Cycles == 0 {
			req.Cycles = 1
		}

		if _, err := sessions.Start(gid, req.Minutes, req.Cycles); err != nil {
			writeDomainError(w, err)
			return
		}

		st, err := sessions.Status(gid)
		if err != nil {
			// finished or cancelled in between; nothing useful to show
			logger.Debug("session gone right after start", zap.Int64("group_id", gid), zap.Error(err))
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(st))
	}
}

func handleStatus(sessions bot.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gid, err := groupID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid group id")
			return
		}

		st, err := sessions.Status(gid)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(st))
	}
}

func handleJoin(sessions bot.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gid, err := groupID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid group id")
			return
		}

		var req JoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.DisplayName = strings.TrimSpace(req.DisplayName)
		if req.DisplayName == "" {
			writeError(w, http.StatusBadRequest, "display_name is required")
			return
		}

		count, err := sessions.Join(gid, req.ParticipantID, req.DisplayName)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, JoinResponse{Members: count})
	}
}

func handleCancel(sessions bot.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gid, err := groupID(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid group id")
			return
		}
		requester, err := strconv.ParseInt(r.URL.Query().Get("requester"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "requester query parameter required")
			return
		}

		if err := sessions.Cancel(r.Context(), gid, requester); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	}
}
