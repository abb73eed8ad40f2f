package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/studybot/internal/apperrors"
	"github.com/balkashynov/studybot/internal/models"
)

// LeaderboardStore accumulates study minutes per (group, participant)
type LeaderboardStore struct {
	db *gorm.DB
}

// NewLeaderboardStore wraps an opened database
func NewLeaderboardStore(db *gorm.DB) *LeaderboardStore {
	return &LeaderboardStore{db: db}
}

// Credit adds minutes to a participant's total, creating the entry if needed.
// The display name is overwritten with the latest value. It is the
// single-participant form of CreditAll.
func (s *LeaderboardStore) Credit(ctx context.Context, groupID, participantID int64, displayName string, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("credit of %d minutes: %w", minutes, apperrors.ErrInvalidInput)
	}
	return upsert(s.db.WithContext(ctx), groupID, participantID, displayName, minutes)
}

// CreditAll applies a batch of credits for one group in a single transaction:
// either every participant is credited or none is.
func (s *LeaderboardStore) CreditAll(ctx context.Context, groupID int64, credits []models.Credit) error {
	if len(credits) == 0 {
		return nil
	}
	for _, c := range credits {
		if c.Minutes <= 0 {
			return fmt.Errorf("credit of %d minutes: %w", c.Minutes, apperrors.ErrInvalidInput)
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range credits {
			if err := upsert(tx, groupID, c.ParticipantID, c.DisplayName, c.Minutes); err != nil {
				return fmt.Errorf("failed to credit participant %d: %w", c.ParticipantID, err)
			}
		}
		return nil
	})
}

// upsert is a single INSERT ... ON CONFLICT statement, atomic per key
func upsert(tx *gorm.DB, groupID, participantID int64, displayName string, minutes int) error {
	entry := models.LeaderboardEntry{
		GroupID:       groupID,
		ParticipantID: participantID,
		DisplayName:   displayName,
		TotalMinutes:  minutes,
	}

	updates := clause.AssignmentColumns([]string{"display_name", "updated_at"})
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "total_minutes"},
		Value:  gorm.Expr("total_minutes + excluded.total_minutes"),
	})

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "participant_id"}},
		DoUpdates: updates,
	}).Create(&entry).Error
}

// Top returns up to limit entries for a group ordered by total minutes.
// Ties keep the order in which entries were first created.
// A group with no history yields an empty slice.
func (s *LeaderboardStore) Top(ctx context.Context, groupID int64, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit %d: %w", limit, apperrors.ErrInvalidInput)
	}

	var entries []models.LeaderboardEntry
	err := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("total_minutes DESC").
		Order("rowid ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	return entries, nil
}

// Entry retrieves one participant's entry, the single-key form of Top
func (s *LeaderboardStore) Entry(ctx context.Context, groupID, participantID int64) (*models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry

	err := s.db.WithContext(ctx).
		Where("group_id = ? AND participant_id = ?", groupID, participantID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("participant %d in group %d: %w", participantID, groupID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// Ping checks that the database is reachable
func (s *LeaderboardStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
