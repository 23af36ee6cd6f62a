package emotion

// EmotionLabel is one of the closed set of emotional tones a reflection can carry.
type EmotionLabel string

const (
	Happy       EmotionLabel = "happy"
	Calm        EmotionLabel = "calm"
	Motivated   EmotionLabel = "motivated"
	Grateful    EmotionLabel = "grateful"
	Stressed    EmotionLabel = "stressed"
	Anxious     EmotionLabel = "anxious"
	Overwhelmed EmotionLabel = "overwhelmed"
	Tired       EmotionLabel = "tired"
	Sad         EmotionLabel = "sad"
	Frustrated  EmotionLabel = "frustrated"
	Neutral     EmotionLabel = "neutral"
	Confident   EmotionLabel = "confident"
	Excited     EmotionLabel = "excited"
	Reflective  EmotionLabel = "reflective"
)

// DefaultEmotion is the fallback when no keyword in the lexicon matches.
const DefaultEmotion = Neutral

// AllEmotions lists every emotion label in declaration order. The order is
// also the tie-break order during scoring, so it must stay stable.
var AllEmotions = []EmotionLabel{
	Happy, Calm, Motivated, Grateful,
	Stressed, Anxious, Overwhelmed, Tired,
	Sad, Frustrated, Neutral, Confident,
	Excited, Reflective,
}

// ThemeLabel is one of the closed set of life domains a reflection can focus on.
// This is distinct from the user's chosen visual art style.
type ThemeLabel string

const (
	ThemeWork      ThemeLabel = "work"
	ThemeLearning  ThemeLabel = "learning"
	ThemeHealth    ThemeLabel = "health"
	ThemePersonal  ThemeLabel = "personal"
	ThemeSocial    ThemeLabel = "social"
	ThemeCreative  ThemeLabel = "creative"
	ThemeFinance   ThemeLabel = "finance"
	ThemeSpiritual ThemeLabel = "spiritual"
)

// DefaultTheme is the fallback when no theme keyword matches, or when two
// themes tie for the top score.
const DefaultTheme = ThemePersonal

// AllThemes lists every theme label in declaration order.
var AllThemes = []ThemeLabel{
	ThemeWork, ThemeLearning, ThemeHealth, ThemePersonal,
	ThemeSocial, ThemeCreative, ThemeFinance, ThemeSpiritual,
}

// ValidEmotion reports whether s is a member of the emotion taxonomy.
func ValidEmotion(s string) bool {
	for _, label := range AllEmotions {
		if string(label) == s {
			return true
		}
	}
	return false
}

// ValidTheme reports whether s is a member of the theme taxonomy.
func ValidTheme(s string) bool {
	for _, label := range AllThemes {
		if string(label) == s {
			return true
		}
	}
	return false
}
