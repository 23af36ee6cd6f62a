package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
	"github.com/mirrorday/mirrorday-platform/internal/feedback"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()

	lex, err := emotion.Compile(emotion.DefaultData())
	require.NoError(t, err)

	return NewBuilder(lex)
}

func TestThemeScenes_CoverAllThemes(t *testing.T) {
	for _, theme := range emotion.AllThemes {
		assert.NotEmpty(t, themeScenes[theme], "theme %s has no scene entry", theme)
	}
}

func TestBuild_Defaults(t *testing.T) {
	builder := newTestBuilder(t)

	mods := builder.Build(emotion.Calm, emotion.ThemeLearning, "realistic", nil)

	assert.Equal(t, "soft blues, gentle lavenders, seafoam greens", mods.ColorPalette)
	assert.Equal(t, "serene and soothing", mods.MoodDescriptor)
	assert.Equal(t, "soft diffused ambient light, gentle glow", mods.LightingStyle)
	assert.Equal(t, "peaceful and still", mods.AtmosphereNote)

	assert.Contains(t, mods.PromptPrefix, "calm")
	assert.Contains(t, mods.PromptPrefix, "learning")
	assert.Contains(t, mods.PromptPrefix, "study desk")
	assert.Contains(t, mods.PromptPrefix, mods.ColorPalette)

	assert.True(t, strings.HasPrefix(mods.PromptSuffix, mods.LightingStyle))
	assert.Contains(t, mods.PromptSuffix, "masterpiece")
	assert.Contains(t, mods.NegativePrompt, "watermark")
}

func TestBuild_PaletteOverrideLeavesOtherFieldsAlone(t *testing.T) {
	builder := newTestBuilder(t)

	preferred := "neon magentas, chrome silvers"
	defaults := builder.Build(emotion.Calm, emotion.ThemeWork, "anime", nil)
	overridden := builder.Build(emotion.Calm, emotion.ThemeWork, "anime", &feedback.Override{
		PreferredPalette: &preferred,
	})

	assert.Equal(t, preferred, overridden.ColorPalette)
	assert.Contains(t, overridden.PromptPrefix, preferred)
	assert.Equal(t, defaults.MoodDescriptor, overridden.MoodDescriptor)
	assert.Equal(t, defaults.LightingStyle, overridden.LightingStyle)
	assert.Equal(t, defaults.AtmosphereNote, overridden.AtmosphereNote)
	assert.Equal(t, defaults.PromptSuffix, overridden.PromptSuffix)
}

func TestBuild_AbsentOverrideFieldsKeepDefaults(t *testing.T) {
	builder := newTestBuilder(t)

	// An override with no palette (style-only preference) must not change
	// the color output.
	styleOnly := "commanding and assured"
	mods := builder.Build(emotion.Happy, emotion.ThemeSocial, "realistic", &feedback.Override{
		PreferredStyle: &styleOnly,
	})

	assert.Equal(t, "warm golds, sunlit yellows, vibrant oranges", mods.ColorPalette)
}

func TestBuild_VisualThemeDoesNotChangeGuidance(t *testing.T) {
	builder := newTestBuilder(t)

	anime := builder.Build(emotion.Excited, emotion.ThemeCreative, "anime", nil)
	realistic := builder.Build(emotion.Excited, emotion.ThemeCreative, "realistic", nil)

	assert.Equal(t, anime, realistic)
}

func TestBuild_NegativePromptIsConstant(t *testing.T) {
	builder := newTestBuilder(t)

	for _, label := range emotion.AllEmotions {
		for _, theme := range emotion.AllThemes {
			mods := builder.Build(label, theme, "minimalist", nil)
			assert.Equal(t, negativePrompt, mods.NegativePrompt)
		}
	}
}
