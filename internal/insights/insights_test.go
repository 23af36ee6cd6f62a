package insights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
)

func TestSummarize_Empty(t *testing.T) {
	start := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	summary := Summarize(nil, start, end)

	assert.Equal(t, 0, summary.TotalReflections)
	assert.Empty(t, summary.DominantEmotion)
	assert.Empty(t, summary.DominantTheme)
	assert.Zero(t, summary.AverageConfidence)
	assert.Equal(t, start, summary.PeriodStart)
	assert.Equal(t, end, summary.PeriodEnd)
}

func TestSummarize_CountsAndDominants(t *testing.T) {
	detections := []Detection{
		{Emotion: emotion.Happy, Theme: emotion.ThemeWork, Confidence: 0.8},
		{Emotion: emotion.Happy, Theme: emotion.ThemeHealth, Confidence: 0.6},
		{Emotion: emotion.Tired, Theme: emotion.ThemeWork, Confidence: 0.4},
	}

	summary := Summarize(detections, time.Time{}, time.Time{})

	assert.Equal(t, 3, summary.TotalReflections)
	assert.Equal(t, 2, summary.EmotionDistribution[emotion.Happy])
	assert.Equal(t, 1, summary.EmotionDistribution[emotion.Tired])
	assert.Equal(t, emotion.Happy, summary.DominantEmotion)
	assert.Equal(t, emotion.ThemeWork, summary.DominantTheme)
	assert.InDelta(t, 0.6, summary.AverageConfidence, 0.001)
}

func TestSummarize_TieResolvesInDeclarationOrder(t *testing.T) {
	// Confident and Calm both appear once; Calm is declared earlier.
	detections := []Detection{
		{Emotion: emotion.Confident, Theme: emotion.ThemeSpiritual, Confidence: 0.5},
		{Emotion: emotion.Calm, Theme: emotion.ThemeLearning, Confidence: 0.5},
	}

	summary := Summarize(detections, time.Time{}, time.Time{})

	assert.Equal(t, emotion.Calm, summary.DominantEmotion)
	assert.Equal(t, emotion.ThemeLearning, summary.DominantTheme)
}

func TestSummarize_AverageConfidenceRounded(t *testing.T) {
	detections := []Detection{
		{Emotion: emotion.Happy, Theme: emotion.ThemeWork, Confidence: 0.333},
		{Emotion: emotion.Happy, Theme: emotion.ThemeWork, Confidence: 0.333},
		{Emotion: emotion.Happy, Theme: emotion.ThemeWork, Confidence: 0.333},
	}

	summary := Summarize(detections, time.Time{}, time.Time{})

	assert.Equal(t, 0.33, summary.AverageConfidence)
}
