// Package insights aggregates stored detections into periodic emotional
// summaries for the insights endpoint and the weekly summary job.
package insights

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
	"github.com/mirrorday/mirrorday-platform/pkg/postgres"
)

// Detection is one stored detection result, as read back for aggregation.
type Detection struct {
	Emotion    emotion.EmotionLabel
	Theme      emotion.ThemeLabel
	Confidence float64
	CreatedAt  time.Time
}

// Summary is the aggregate over one period of a user's reflections.
type Summary struct {
	TotalReflections    int                          `json:"total_reflections"`
	EmotionDistribution map[emotion.EmotionLabel]int `json:"emotion_distribution"`
	DominantEmotion     emotion.EmotionLabel         `json:"dominant_emotion"`
	DominantTheme       emotion.ThemeLabel           `json:"dominant_theme"`
	AverageConfidence   float64                      `json:"average_confidence"`
	PeriodStart         time.Time                    `json:"period_start"`
	PeriodEnd           time.Time                    `json:"period_end"`
}

// Summarize aggregates detections over [start, end). An empty period yields
// a zero-count summary with no dominant labels.
func Summarize(detections []Detection, start, end time.Time) Summary {
	summary := Summary{
		EmotionDistribution: make(map[emotion.EmotionLabel]int),
		PeriodStart:         start,
		PeriodEnd:           end,
	}

	themeCounts := make(map[emotion.ThemeLabel]int)
	var confidenceSum float64

	for _, d := range detections {
		summary.TotalReflections++
		summary.EmotionDistribution[d.Emotion]++
		themeCounts[d.Theme]++
		confidenceSum += d.Confidence
	}

	if summary.TotalReflections == 0 {
		return summary
	}

	summary.DominantEmotion = dominantEmotion(summary.EmotionDistribution)
	summary.DominantTheme = dominantTheme(themeCounts)
	summary.AverageConfidence = math.Round(confidenceSum/float64(summary.TotalReflections)*100) / 100

	return summary
}

// dominantEmotion picks the most frequent emotion; ties resolve in taxonomy
// declaration order so the summary is deterministic.
func dominantEmotion(counts map[emotion.EmotionLabel]int) emotion.EmotionLabel {
	var best emotion.EmotionLabel
	bestCount := 0
	for _, label := range emotion.AllEmotions {
		if counts[label] > bestCount {
			best = label
			bestCount = counts[label]
		}
	}
	return best
}

func dominantTheme(counts map[emotion.ThemeLabel]int) emotion.ThemeLabel {
	var best emotion.ThemeLabel
	bestCount := 0
	for _, label := range emotion.AllThemes {
		if counts[label] > bestCount {
			best = label
			bestCount = counts[label]
		}
	}
	return best
}

// Store reads stored detections for aggregation.
type Store struct {
	db postgres.Client
}

// NewStore creates a new insights store
func NewStore(db postgres.Client) *Store {
	return &Store{db: db}
}

// DetectionsSince returns the user's detections created at or after since,
// oldest first.
func (s *Store) DetectionsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]Detection, error) {
	rows, err := s.db.Query(ctx, `
		SELECT emotion, theme, confidence, created_at
		FROM daily_responses
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at ASC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load detections: %w", err)
	}
	defer rows.Close()

	var detections []Detection
	for rows.Next() {
		var d Detection
		if err := rows.Scan(&d.Emotion, &d.Theme, &d.Confidence, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan detection row: %w", err)
		}
		detections = append(detections, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate detection rows: %w", err)
	}

	return detections, nil
}

// WeeklySummary aggregates the user's last seven days.
func (s *Store) WeeklySummary(ctx context.Context, userID uuid.UUID, now time.Time) (Summary, error) {
	start := now.AddDate(0, 0, -7)

	detections, err := s.DetectionsSince(ctx, userID, start)
	if err != nil {
		return Summary{}, err
	}

	return Summarize(detections, start, now), nil
}
