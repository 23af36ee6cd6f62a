package style

import (
	"fmt"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
	"github.com/mirrorday/mirrorday-platform/internal/feedback"
)

// qualityTags is appended to every prompt suffix regardless of emotion or theme.
const qualityTags = "highly detailed, professional quality, cinematic composition, 8k resolution, masterpiece"

// negativePrompt is a fixed constant: it does not vary by emotion or theme.
const negativePrompt = "blurry, low quality, distorted, ugly, deformed, watermark, text, signature, duplicate, cropped"

// themeScenes maps each theme to the physical scene elements appropriate to
// it. Coverage over the theme taxonomy is asserted by tests.
var themeScenes = map[emotion.ThemeLabel]string{
	emotion.ThemeWork:      "professional workspace, laptop, documents, city view through window",
	emotion.ThemeLearning:  "study desk, open books, notebooks, warm desk lamp, knowledge atmosphere",
	emotion.ThemeHealth:    "nature trail, fitness elements, fresh air, vitality and movement",
	emotion.ThemePersonal:  "cozy home interior, personal space, comfort objects, warm ambiance",
	emotion.ThemeSocial:    "people together, cafe setting, warm social atmosphere, connection",
	emotion.ThemeCreative:  "art studio, creative tools, paint, music instruments, inspiration",
	emotion.ThemeFinance:   "organized desk, planning documents, growth charts, structured space",
	emotion.ThemeSpiritual: "sacred space, nature, morning light, meditative stillness, sky",
}

// Modifiers is the content guidance handed to prompt construction for one
// generation request. It is recomputed per request and never persisted as a
// whole; the palette/mood/lighting/atmosphere actually used are recorded on
// the generated-image row for auditability.
type Modifiers struct {
	ColorPalette   string `json:"color_palette"`
	MoodDescriptor string `json:"mood_descriptor"`
	LightingStyle  string `json:"lighting_style"`
	AtmosphereNote string `json:"atmosphere_note"`
	PromptPrefix   string `json:"prompt_prefix"`
	PromptSuffix   string `json:"prompt_suffix"`
	NegativePrompt string `json:"negative_prompt"`
}

// Builder derives style modifiers from a detected emotion and theme. Pure
// and stateless; safe for concurrent use.
type Builder struct {
	lexicon *emotion.Lexicon
}

// NewBuilder creates a builder over the compiled lexicon's palette table.
func NewBuilder(lexicon *emotion.Lexicon) *Builder {
	return &Builder{lexicon: lexicon}
}

// Build composes the style modifiers for one generation request.
//
// The user's requested visual theme (anime, realistic, ...) is accepted for
// signature parity with the downstream prompt constructor but does not alter
// the palette-derived guidance: renderer selection happens downstream.
// A feedback override replaces only the fields it carries; absent fields
// keep the palette defaults.
func (b *Builder) Build(label emotion.EmotionLabel, theme emotion.ThemeLabel, visualTheme string, override *feedback.Override) Modifiers {
	palette := b.lexicon.Palette(label)
	_ = visualTheme

	effectivePalette := palette.Colors
	if override != nil && override.PreferredPalette != nil && *override.PreferredPalette != "" {
		effectivePalette = *override.PreferredPalette
	}

	scene, ok := themeScenes[theme]
	if !ok {
		scene = themeScenes[emotion.DefaultTheme]
	}

	return Modifiers{
		ColorPalette:   effectivePalette,
		MoodDescriptor: palette.Mood,
		LightingStyle:  palette.Lighting,
		AtmosphereNote: palette.Atmosphere,
		PromptPrefix: fmt.Sprintf("[Emotion: %s, Theme: %s] A scene that feels %s, featuring %s, rendered with %s,",
			label, theme, palette.Mood, scene, effectivePalette),
		PromptSuffix:   fmt.Sprintf("%s, %s, %s", palette.Lighting, palette.Atmosphere, qualityTags),
		NegativePrompt: negativePrompt,
	}
}
