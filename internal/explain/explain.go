// Package explain turns detection output and the final generation prompt
// into a structured, human-readable rationale. Template-based, no model
// calls: the explanation must describe what actually happened, not what a
// model imagines happened.
package explain

import (
	"fmt"
	"math"
	"strings"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
)

// Truncation budgets for the input summary, per field.
const (
	maxActivitiesLen   = 120
	maxMoodLen         = 60
	maxChallengesLen   = 100
	maxAchievementsLen = 100
)

// maxListedKeywords caps how many matched keywords each rationale cites.
const maxListedKeywords = 5

// Result is the persisted explanation for one generated image: one narrative
// string per decision axis. Read-only after creation.
type Result struct {
	InputSummary       string `json:"input_summary"`
	DetectedEmotion    string `json:"detected_emotion"`
	DetectedTheme      string `json:"detected_theme"`
	PromptReasoning    string `json:"prompt_reasoning"`
	StyleReasoning     string `json:"style_reasoning"`
	ColorMoodReasoning string `json:"color_mood_reasoning"`
	CompositionNotes   string `json:"composition_notes"`
}

// Params bundles everything the synthesizer needs for one explanation.
type Params struct {
	Input            emotion.DetectionInput
	Emotion          emotion.EmotionLabel
	Confidence       float64
	SecondaryEmotion emotion.EmotionLabel
	Theme            emotion.ThemeLabel
	EmotionKeywords  []string
	ThemeKeywords    []string
	FinalPrompt      string
	VisualStyle      string
}

// Synthesizer builds explanations using the palette table for the
// color/mood rationale.
type Synthesizer struct {
	lexicon *emotion.Lexicon
}

// NewSynthesizer creates a synthesizer over the compiled lexicon.
func NewSynthesizer(lexicon *emotion.Lexicon) *Synthesizer {
	return &Synthesizer{lexicon: lexicon}
}

// Explain fills the seven rationale templates from the supplied values.
// Pure function; cannot fail given valid enum values.
func (s *Synthesizer) Explain(p Params) Result {
	palette := s.lexicon.Palette(p.Emotion)
	confidencePct := int(math.Round(p.Confidence * 100))

	return Result{
		InputSummary:       buildInputSummary(p.Input),
		DetectedEmotion:    buildEmotionRationale(p, confidencePct),
		DetectedTheme:      buildThemeRationale(p),
		PromptReasoning:    buildPromptRationale(p),
		StyleReasoning:     buildStyleRationale(p),
		ColorMoodReasoning: buildColorMoodRationale(p, palette),
		CompositionNotes:   buildCompositionNotes(p, palette),
	}
}

func buildInputSummary(input emotion.DetectionInput) string {
	var parts []string

	if strings.TrimSpace(input.Activities) != "" {
		parts = append(parts, fmt.Sprintf("You shared that your day involved: %q.", truncate(input.Activities, maxActivitiesLen)))
	}
	if strings.TrimSpace(input.Mood) != "" {
		parts = append(parts, fmt.Sprintf("You described your mood as: %q.", truncate(input.Mood, maxMoodLen)))
	}
	if strings.TrimSpace(input.Challenges) != "" {
		parts = append(parts, fmt.Sprintf("Challenges faced: %q.", truncate(input.Challenges, maxChallengesLen)))
	}
	if strings.TrimSpace(input.Achievements) != "" {
		parts = append(parts, fmt.Sprintf("Key achievements: %q.", truncate(input.Achievements, maxAchievementsLen)))
	}

	return strings.Join(parts, " ")
}

func buildEmotionRationale(p Params, confidencePct int) string {
	emotionStr := fmt.Sprintf("**%s** (%d%% confidence)", p.Emotion, confidencePct)
	if p.SecondaryEmotion != "" {
		emotionStr = fmt.Sprintf("**%s** (%d%% confidence) with undertones of **%s**", p.Emotion, confidencePct, p.SecondaryEmotion)
	}

	signals := "No strong keyword signals — defaulted from overall tone."
	if len(p.EmotionKeywords) > 0 {
		signals = fmt.Sprintf("Key signals: %s.", quoteKeywords(p.EmotionKeywords))
	}

	return fmt.Sprintf("Your reflection was analyzed for emotional tone. Primary detected emotion: %s. %s", emotionStr, signals)
}

func buildThemeRationale(p Params) string {
	inferred := "This was the most likely theme based on overall context."
	if len(p.ThemeKeywords) > 0 {
		inferred = fmt.Sprintf("This was inferred from mentions of: %s.", quoteKeywords(p.ThemeKeywords))
	}

	return fmt.Sprintf("The main theme of your day was identified as **%s**. %s", p.Theme, inferred)
}

func buildPromptRationale(p Params) string {
	emphasis := "while acknowledging your challenges."
	if strings.TrimSpace(p.Input.Achievements) != "" {
		emphasis = "while highlighting your achievements."
	}

	return fmt.Sprintf(
		"The image prompt was crafted to visually represent your %s-focused day with a %s emotional undertone. "+
			"The scene was designed to capture the essence of your activities %s "+
			"Visual style %q was selected to match your chosen theme preference.",
		p.Theme, p.Emotion, emphasis, p.VisualStyle)
}

func buildStyleRationale(p Params) string {
	rationale := fmt.Sprintf(
		"The **%s** visual style was applied because: 1) You selected it as your preferred theme, "+
			"2) It complements the %q emotional tone, 3) It creates the strongest visual impact for %q content.",
		p.VisualStyle, p.Emotion, p.Theme)

	if p.SecondaryEmotion != "" {
		rationale += fmt.Sprintf(" The secondary emotion %q added subtle depth to the composition.", p.SecondaryEmotion)
	}

	return rationale
}

func buildColorMoodRationale(p Params, palette emotion.Palette) string {
	return fmt.Sprintf(
		"Color palette: %s. This palette was chosen because %q emotions are best expressed through %s tones. "+
			"Lighting: %s — creating an atmosphere that feels %s. "+
			"The overall mood targets a %q feeling to mirror your emotional state.",
		palette.Colors, p.Emotion, palette.Mood, palette.Lighting, palette.Atmosphere, palette.Mood)
}

func buildCompositionNotes(p Params, palette emotion.Palette) string {
	return fmt.Sprintf(
		"The image was composed for vertical (9:16) wallpaper format. "+
			"Subject placement follows the rule of thirds with atmospheric depth. "+
			"The scene includes environmental elements related to %q wrapped in %s atmosphere. "+
			"Quality enhancers: cinematic composition, 8K resolution, professional lighting.",
		p.Theme, palette.Atmosphere)
}

// quoteKeywords renders up to maxListedKeywords keywords as a quoted,
// comma-separated list.
func quoteKeywords(keywords []string) string {
	if len(keywords) > maxListedKeywords {
		keywords = keywords[:maxListedKeywords]
	}

	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = fmt.Sprintf("%q", kw)
	}

	return strings.Join(quoted, ", ")
}

// truncate cuts s at the character budget, reserving room for the ellipsis
// so the result never exceeds maxLen.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
