// Package client talks to a running studybot server over HTTP.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/balkashynov/studybot/internal/apperrors"
	"github.com/balkashynov/studybot/internal/notify"
	"github.com/balkashynov/studybot/internal/server"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Command posts a chat message and returns the bot's reply
func (c *Client) Command(ctx context.Context, groupID int64, req server.CommandRequest) (server.CommandResponse, error) {
	var resp server.CommandResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/groups/%d/commands", groupID), req, &resp)
	return resp, err
}

func (c *Client) Status(ctx context.Context, groupID int64) (server.SessionResponse, error) {
	var resp server.SessionResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/groups/%d/session", groupID), nil, &resp)
	return resp, err
}

// Join adds a participant to the group's running session and returns
// the member count
func (c *Client) Join(ctx context.Context, groupID, participantID int64, displayName string) (int, error) {
	var resp server.JoinResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/groups/%d/session/members", groupID),
		server.JoinRequest{ParticipantID: participantID, DisplayName: displayName}, &resp)
	return resp.Members, err
}

func (c *Client) Leaderboard(ctx context.Context, groupID int64, limit int) (server.LeaderboardResponse, error) {
	var resp server.LeaderboardResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/groups/%d/leaderboard?limit=%d", groupID, limit), nil, &resp)
	return resp, err
}

// Events streams a group's notifications until ctx is done or the
// server closes the stream. The channel is closed on exit.
func (c *Client) Events(ctx context.Context, groupID int64) (<-chan notify.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/groups/%d/events", c.baseURL, groupID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscribing to group %d: %w", groupID, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	out := make(chan notify.Event)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data: ")
			if !ok {
				continue
			}
			var ev notify.Event
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
		r = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError maps a failed response back onto the shared error taxonomy
func decodeError(resp *http.Response) error {
	var body server.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}

	switch body.Code {
	case server.CodeInvalidInput:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, body.Error)
	case server.CodeNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, body.Error)
	case server.CodeConflict:
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, body.Error)
	case server.CodeAlreadyJoined:
		return fmt.Errorf("%w: %s", apperrors.ErrAlreadyJoined, body.Error)
	case server.CodeForbidden:
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, body.Error)
	}

	// transport-level failures carry no code
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidInput, body.Error)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, body.Error)
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
}
