package reflection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorday/mirrorday-platform/internal/explain"
	"github.com/mirrorday/mirrorday-platform/pkg/postgres"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Storage persists reflections, generated images, explanations and
// telemetry in Postgres.
type Storage struct {
	db     postgres.Client
	logger *slog.Logger
}

// NewStorage creates a new reflection storage layer
func NewStorage(db postgres.Client, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// User is a stored user row. Email is empty for anonymous users.
type User struct {
	ID    uuid.UUID
	Email string
}

// FindOrCreateUser resolves an email to a user ID, creating the user on
// first contact. An empty email creates a fresh anonymous user.
func (s *Storage) FindOrCreateUser(ctx context.Context, email string) (uuid.UUID, error) {
	if email == "" {
		id := uuid.New()
		_, err := s.db.Exec(ctx,
			`INSERT INTO users (id, email, created_at) VALUES ($1, NULL, $2)`,
			id, time.Now().UTC())
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to create anonymous user: %w", err)
		}
		return id, nil
	}

	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}

	id = uuid.New()
	_, err = s.db.Exec(ctx,
		`INSERT INTO users (id, email, created_at) VALUES ($1, $2, $3)`,
		id, email, time.Now().UTC())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Created user", "user_id", id)

	return id, nil
}

// SaveReflection stores a daily response with its detection result,
// assigning ID and CreatedAt.
func (s *Storage) SaveReflection(ctx context.Context, r *Reflection) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()

	var secondary sql.NullString
	if r.Detection.SecondaryEmotion != "" {
		secondary = sql.NullString{String: string(r.Detection.SecondaryEmotion), Valid: true}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO daily_responses
			(id, user_id, activities, mood, challenges, achievements, visual_theme,
			 emotion, secondary_emotion, confidence, theme, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		r.ID, r.UserID,
		r.Answers.Activities, r.Answers.Mood, r.Answers.Challenges, r.Answers.Achievements,
		r.Answers.VisualTheme,
		r.Detection.Emotion, secondary, r.Detection.Confidence, r.Detection.Theme,
		r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save reflection: %w", err)
	}

	s.logger.Debug("Stored reflection",
		"response_id", r.ID,
		"emotion", r.Detection.Emotion,
		"theme", r.Detection.Theme)

	return nil
}

// SaveImage stores a generation outcome, assigning ID and CreatedAt.
func (s *Storage) SaveImage(ctx context.Context, img *GeneratedImage) error {
	img.ID = uuid.New()
	img.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(ctx, `
		INSERT INTO generated_images
			(id, user_id, response_id, image_url, prompt_used, generator, vibe,
			 emotion, theme, color_palette, mood_descriptor, lighting_style, atmosphere_note,
			 created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		img.ID, img.UserID, img.ResponseID, img.ImageURL, img.PromptUsed, img.Generator,
		img.Vibe, img.Emotion, img.Theme,
		img.ColorPalette, img.MoodDescriptor, img.LightingStyle, img.AtmosphereNote,
		img.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save generated image: %w", err)
	}

	return nil
}

// GetImage loads a generated image by ID
func (s *Storage) GetImage(ctx context.Context, imageID uuid.UUID) (*GeneratedImage, error) {
	var img GeneratedImage
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, response_id, image_url, prompt_used, generator, vibe,
		       emotion, theme, color_palette, mood_descriptor, lighting_style, atmosphere_note,
		       created_at
		FROM generated_images WHERE id = $1`, imageID).Scan(
		&img.ID, &img.UserID, &img.ResponseID, &img.ImageURL, &img.PromptUsed, &img.Generator,
		&img.Vibe, &img.Emotion, &img.Theme,
		&img.ColorPalette, &img.MoodDescriptor, &img.LightingStyle, &img.AtmosphereNote,
		&img.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("image %s: %w", imageID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	return &img, nil
}

// SaveExplanation stores the explanation for one generated image
func (s *Storage) SaveExplanation(ctx context.Context, imageID uuid.UUID, result explain.Result) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO explanations
			(id, image_id, input_summary, detected_emotion, detected_theme,
			 prompt_reasoning, style_reasoning, color_mood_reasoning, composition_notes,
			 created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.New(), imageID,
		result.InputSummary, result.DetectedEmotion, result.DetectedTheme,
		result.PromptReasoning, result.StyleReasoning, result.ColorMoodReasoning,
		result.CompositionNotes,
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save explanation: %w", err)
	}

	return nil
}

// GetExplanation loads the explanation for one generated image
func (s *Storage) GetExplanation(ctx context.Context, imageID uuid.UUID) (*explain.Result, error) {
	var result explain.Result
	err := s.db.QueryRow(ctx, `
		SELECT input_summary, detected_emotion, detected_theme,
		       prompt_reasoning, style_reasoning, color_mood_reasoning, composition_notes
		FROM explanations WHERE image_id = $1`, imageID).Scan(
		&result.InputSummary, &result.DetectedEmotion, &result.DetectedTheme,
		&result.PromptReasoning, &result.StyleReasoning, &result.ColorMoodReasoning,
		&result.CompositionNotes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("explanation for image %s: %w", imageID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load explanation: %w", err)
	}

	return &result, nil
}

// History returns the user's most recent reflections with their images,
// newest first.
func (s *Storage) History(ctx context.Context, userID uuid.UUID, limit int) ([]HistoryEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, i.id, i.image_url, i.vibe, i.emotion, i.theme, r.created_at
		FROM daily_responses r
		JOIN generated_images i ON i.response_id = r.id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ResponseID, &e.ImageID, &e.ImageURL, &e.Vibe,
			&e.Emotion, &e.Theme, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}

	return entries, nil
}

// UsersWithoutReflectionToday returns known users (those with an email) who
// have not submitted a reflection since the start of today. Used by the
// reminder job.
func (s *Storage) UsersWithoutReflectionToday(ctx context.Context, now time.Time) ([]User, error) {
	year, month, day := now.Date()
	todayStart := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).UTC()

	rows, err := s.db.Query(ctx, `
		SELECT u.id, u.email
		FROM users u
		WHERE u.email IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1 FROM daily_responses r
			WHERE r.user_id = u.id AND r.created_at >= $1
		  )`, todayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load inactive users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// ListUsers returns all known (email-bearing) users.
func (s *Storage) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT id, email FROM users WHERE email IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// LogTelemetry writes one telemetry row. Best-effort: errors are logged and
// swallowed so telemetry can never break a generation.
func (s *Storage) LogTelemetry(ctx context.Context, entry TelemetryEntry) {
	var errMsg sql.NullString
	if entry.ErrorMessage != "" {
		errMsg = sql.NullString{String: entry.ErrorMessage, Valid: true}
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO telemetry (user_id, generator, time_ms, success, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.UserID, entry.Generator, entry.TimeMs, entry.Success, errMsg,
		time.Now().UTC())
	if err != nil {
		s.logger.Warn("Failed to log telemetry", "error", err, "generator", entry.Generator)
	}
}
