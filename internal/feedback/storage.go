package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
	"github.com/mirrorday/mirrorday-platform/pkg/postgres"
)

// Event is one stored feedback submission. The detected emotion/theme and
// the style actually used are denormalized from the image row for audit.
type Event struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ImageID         uuid.UUID
	ResponseID      uuid.UUID
	Rating          Rating
	Comment         string
	DetectedEmotion emotion.EmotionLabel
	DetectedTheme   emotion.ThemeLabel
	StyleUsed       string
	CreatedAt       time.Time
}

// Store persists feedback events and (user, emotion) preference records.
type Store struct {
	db     postgres.Client
	logger *slog.Logger
}

// NewStore creates a new feedback store
func NewStore(db postgres.Client, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// SaveEvent stores one feedback submission, assigning ID and CreatedAt.
func (s *Store) SaveEvent(ctx context.Context, e *Event) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()

	var comment sql.NullString
	if e.Comment != "" {
		comment = sql.NullString{String: e.Comment, Valid: true}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO user_feedback
			(id, user_id, image_id, response_id, rating, comment,
			 detected_emotion, detected_theme, style_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.UserID, e.ImageID, e.ResponseID, e.Rating, comment,
		e.DetectedEmotion, e.DetectedTheme, e.StyleUsed, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save feedback event: %w", err)
	}

	s.logger.Debug("Stored feedback event",
		"image_id", e.ImageID,
		"rating", e.Rating,
		"emotion", e.DetectedEmotion)

	return nil
}

// GetPreference loads the preference record for a (user, emotion) pair.
// Returns (nil, nil) when no feedback has been recorded yet.
func (s *Store) GetPreference(ctx context.Context, userID uuid.UUID, label emotion.EmotionLabel) (*PreferenceRecord, error) {
	var record PreferenceRecord
	err := s.db.QueryRow(ctx, `
		SELECT user_id, emotion, preferred_style, preferred_palette,
		       positive_count, negative_count, updated_at
		FROM emotion_style_prefs
		WHERE user_id = $1 AND emotion = $2`, userID, label).Scan(
		&record.UserID, &record.Emotion, &record.PreferredStyle, &record.PreferredPalette,
		&record.PositiveCount, &record.NegativeCount, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preference record: %w", err)
	}

	return &record, nil
}

// SavePreference upserts a preference record keyed by (user, emotion).
func (s *Store) SavePreference(ctx context.Context, record *PreferenceRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO emotion_style_prefs
			(user_id, emotion, preferred_style, preferred_palette,
			 positive_count, negative_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, emotion) DO UPDATE SET
			preferred_style = EXCLUDED.preferred_style,
			preferred_palette = EXCLUDED.preferred_palette,
			positive_count = EXCLUDED.positive_count,
			negative_count = EXCLUDED.negative_count,
			updated_at = EXCLUDED.updated_at`,
		record.UserID, record.Emotion, record.PreferredStyle, record.PreferredPalette,
		record.PositiveCount, record.NegativeCount, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save preference record: %w", err)
	}

	return nil
}
