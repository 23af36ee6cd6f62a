package explain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
)

func newTestSynthesizer(t *testing.T) *Synthesizer {
	t.Helper()

	lex, err := emotion.Compile(emotion.DefaultData())
	require.NoError(t, err)

	return NewSynthesizer(lex)
}

func TestExplain_AllFieldsPopulated(t *testing.T) {
	synth := newTestSynthesizer(t)

	result := synth.Explain(Params{
		Input: emotion.DetectionInput{
			Activities:   "went for a long run in the park",
			Mood:         "feeling motivated and strong",
			Achievements: "finished my first 10k",
		},
		Emotion:         emotion.Motivated,
		Confidence:      0.75,
		Theme:           emotion.ThemeHealth,
		EmotionKeywords: []string{"motivated"},
		ThemeKeywords:   []string{"run"},
		FinalPrompt:     "a runner at dawn",
		VisualStyle:     "realistic",
	})

	assert.NotEmpty(t, result.InputSummary)
	assert.NotEmpty(t, result.DetectedEmotion)
	assert.NotEmpty(t, result.DetectedTheme)
	assert.NotEmpty(t, result.PromptReasoning)
	assert.NotEmpty(t, result.StyleReasoning)
	assert.NotEmpty(t, result.ColorMoodReasoning)
	assert.NotEmpty(t, result.CompositionNotes)

	assert.Contains(t, result.DetectedEmotion, "**motivated**")
	assert.Contains(t, result.DetectedEmotion, "(75% confidence)")
	assert.Contains(t, result.DetectedEmotion, `"motivated"`)
	assert.Contains(t, result.DetectedTheme, "**health**")
	assert.Contains(t, result.DetectedTheme, `"run"`)
	assert.Contains(t, result.PromptReasoning, "highlighting your achievements")
	assert.Contains(t, result.StyleReasoning, `"realistic"`)
	assert.Contains(t, result.CompositionNotes, "9:16")
}

func TestExplain_SecondaryEmotionMentioned(t *testing.T) {
	synth := newTestSynthesizer(t)

	result := synth.Explain(Params{
		Emotion:          emotion.Happy,
		Confidence:       0.6,
		SecondaryEmotion: emotion.Grateful,
		Theme:            emotion.ThemePersonal,
		VisualStyle:      "anime",
	})

	assert.Contains(t, result.DetectedEmotion, "undertones of **grateful**")
	assert.Contains(t, result.StyleReasoning, `"grateful"`)
}

func TestExplain_NoKeywordsFallback(t *testing.T) {
	synth := newTestSynthesizer(t)

	result := synth.Explain(Params{
		Emotion:     emotion.Neutral,
		Confidence:  0.3,
		Theme:       emotion.ThemePersonal,
		VisualStyle: "minimalist",
	})

	assert.Contains(t, result.DetectedEmotion, "No strong keyword signals")
	assert.Contains(t, result.DetectedTheme, "most likely theme based on overall context")
	assert.Contains(t, result.DetectedEmotion, "(30% confidence)")
}

func TestExplain_ChallengesWithoutAchievements(t *testing.T) {
	synth := newTestSynthesizer(t)

	result := synth.Explain(Params{
		Input: emotion.DetectionInput{
			Challenges: "deadline pressure all day",
		},
		Emotion:     emotion.Stressed,
		Confidence:  0.5,
		Theme:       emotion.ThemeWork,
		VisualStyle: "realistic",
	})

	assert.Contains(t, result.PromptReasoning, "acknowledging your challenges")
	assert.Contains(t, result.InputSummary, "Challenges faced")
	assert.NotContains(t, result.InputSummary, "Key achievements")
}

func TestExplain_InputSummaryOmitsEmptyFields(t *testing.T) {
	synth := newTestSynthesizer(t)

	result := synth.Explain(Params{
		Input: emotion.DetectionInput{
			Mood: "tired but okay",
		},
		Emotion:     emotion.Tired,
		Confidence:  0.4,
		Theme:       emotion.ThemePersonal,
		VisualStyle: "realistic",
	})

	assert.Contains(t, result.InputSummary, "tired but okay")
	assert.NotContains(t, result.InputSummary, "your day involved")
}

func TestExplain_KeywordListCapped(t *testing.T) {
	synth := newTestSynthesizer(t)

	keywords := []string{"one", "two", "three", "four", "five", "six", "seven"}
	result := synth.Explain(Params{
		Emotion:         emotion.Happy,
		Confidence:      0.9,
		Theme:           emotion.ThemePersonal,
		EmotionKeywords: keywords,
		VisualStyle:     "realistic",
	})

	assert.Contains(t, result.DetectedEmotion, `"five"`)
	assert.NotContains(t, result.DetectedEmotion, `"six"`)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 200)

	got := truncate(long, maxActivitiesLen)
	assert.Len(t, got, maxActivitiesLen)
	assert.True(t, strings.HasSuffix(got, "..."))

	short := "short"
	assert.Equal(t, short, truncate(short, maxActivitiesLen))
}

func TestExplain_ConfidenceRoundsToPercent(t *testing.T) {
	synth := newTestSynthesizer(t)

	result := synth.Explain(Params{
		Emotion:     emotion.Calm,
		Confidence:  0.666,
		Theme:       emotion.ThemeSpiritual,
		VisualStyle: "realistic",
	})

	assert.Contains(t, result.DetectedEmotion, "(67% confidence)")
}
