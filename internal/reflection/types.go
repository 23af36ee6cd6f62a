// Package reflection runs the daily-reflection pipeline: detect the
// emotional signal, build style guidance, ask the generative model for an
// image concept, moderate and refine it, render the image, and persist the
// full decision trail.
package reflection

import (
	"time"

	"github.com/google/uuid"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
)

// Answers is one submitted daily reflection. The four text fields are
// required; email is optional and identifies a returning user.
type Answers struct {
	Activities   string `json:"activities"`
	Mood         string `json:"mood"`
	Challenges   string `json:"challenges"`
	Achievements string `json:"achievements"`
	VisualTheme  string `json:"theme"`
	Email        string `json:"email,omitempty"`
}

// DetectionInput converts the answers into detector input.
func (a Answers) DetectionInput() emotion.DetectionInput {
	return emotion.DetectionInput{
		Activities:   a.Activities,
		Mood:         a.Mood,
		Challenges:   a.Challenges,
		Achievements: a.Achievements,
	}
}

// Reflection is a stored daily response together with its detection result.
type Reflection struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Answers   Answers
	Detection emotion.DetectionResult
	CreatedAt time.Time
}

// GeneratedImage is a stored generation outcome. The style columns record
// what was actually used, overrides included; the feedback loop reads them
// back when a rating arrives.
type GeneratedImage struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ResponseID     uuid.UUID
	ImageURL       string
	PromptUsed     string
	Generator      string
	Vibe           string
	Emotion        emotion.EmotionLabel
	Theme          emotion.ThemeLabel
	ColorPalette   string
	MoodDescriptor string
	LightingStyle  string
	AtmosphereNote string
	CreatedAt      time.Time
}

// HistoryEntry is one row of a user's reflection history.
type HistoryEntry struct {
	ResponseID uuid.UUID            `json:"response_id"`
	ImageID    uuid.UUID            `json:"image_id"`
	ImageURL   string               `json:"image_url"`
	Vibe       string               `json:"vibe"`
	Emotion    emotion.EmotionLabel `json:"emotion"`
	Theme      emotion.ThemeLabel   `json:"theme"`
	CreatedAt  time.Time            `json:"created_at"`
}

// TelemetryEntry is one per-generation telemetry row. Writes are
// best-effort; failures must never break the pipeline.
type TelemetryEntry struct {
	UserID       uuid.UUID
	Generator    string
	TimeMs       int64
	Success      bool
	ErrorMessage string
}

// Generator names used in telemetry rows.
const (
	GeneratorGemini    = "Gemini"
	GeneratorDiffusion = "Stable-Diffusion"
)
