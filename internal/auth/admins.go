// Package auth answers whether a user may end a group's session early.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/balkashynov/studybot/internal/apperrors"
)

// AnyGroup marks an admin entry valid in every group
const AnyGroup = "*"

// AdminList is a static set of elevated users, per group or global
type AdminList struct {
	global   map[int64]bool
	perGroup map[int64]map[int64]bool
}

// ParseAdmins reads entries of the form "group:user" or "*:user"
func ParseAdmins(entries []string) (*AdminList, error) {
	a := &AdminList{
		global:   make(map[int64]bool),
		perGroup: make(map[int64]map[int64]bool),
	}

	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		group, user, ok := strings.Cut(raw, ":")
		if !ok {
			return nil, fmt.Errorf("admin entry %q must be group:user: %w", raw, apperrors.ErrInvalidInput)
		}
		userID, err := strconv.ParseInt(strings.TrimSpace(user), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("admin entry %q has invalid user id: %w", raw, apperrors.ErrInvalidInput)
		}

		group = strings.TrimSpace(group)
		if group == AnyGroup {
			a.global[userID] = true
			continue
		}
		groupID, err := strconv.ParseInt(group, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("admin entry %q has invalid group id: %w", raw, apperrors.ErrInvalidInput)
		}
		if a.perGroup[groupID] == nil {
			a.perGroup[groupID] = make(map[int64]bool)
		}
		a.perGroup[groupID][userID] = true
	}

	return a, nil
}

func (a *AdminList) IsElevated(_ context.Context, groupID, userID int64) (bool, error) {
	if a.global[userID] {
		return true, nil
	}
	return a.perGroup[groupID][userID], nil
}
