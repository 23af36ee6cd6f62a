package emotion

import (
	"math"
	"sort"
	"strings"
)

// zeroSignalConfidence is reported when no keyword anywhere matched: no
// strong signal, best guess is neutral.
const zeroSignalConfidence = 0.3

// moodWeight is how many times the mood field is repeated in the scoring
// blob relative to the other fields.
const moodWeight = 3

// DetectionInput carries the four free-text fields of one reflection.
type DetectionInput struct {
	Activities   string `json:"activities"`
	Mood         string `json:"mood"`
	Challenges   string `json:"challenges"`
	Achievements string `json:"achievements"`
}

// DetectionResult is the detector's output for one reflection. It is derived
// once per submission and persisted alongside the reflection record.
type DetectionResult struct {
	Emotion          EmotionLabel `json:"emotion"`
	Confidence       float64      `json:"confidence"`
	SecondaryEmotion EmotionLabel `json:"secondary_emotion,omitempty"`
	Theme            ThemeLabel   `json:"theme"`
	EmotionKeywords  []string     `json:"emotion_keywords"`
	ThemeKeywords    []string     `json:"theme_keywords"`
}

// Detector scores reflection text against a compiled lexicon. It is a pure
// function of its input and the lexicon: no I/O, no randomness, safe for
// concurrent use.
type Detector struct {
	lexicon *Lexicon
}

// NewDetector creates a detector over the given compiled lexicon.
func NewDetector(lexicon *Lexicon) *Detector {
	return &Detector{lexicon: lexicon}
}

// labelScore accumulates the match count and distinct matched keywords for
// one label during a scoring pass.
type labelScore struct {
	score    int
	keywords []string
}

// Detect analyzes the reflection text and returns the detected emotion,
// confidence, optional secondary emotion, theme, and the keyword evidence
// behind the winning labels.
func (d *Detector) Detect(input DetectionInput) DetectionResult {
	// Mood is repeated to triple-weight it against the other fields.
	emotionBlob := strings.ToLower(strings.Join([]string{
		input.Mood, input.Mood, input.Mood,
		input.Activities,
		input.Challenges,
		input.Achievements,
	}, " "))

	type rankedEmotion struct {
		label EmotionLabel
		labelScore
	}

	ranked := make([]rankedEmotion, 0, len(AllEmotions))
	totalScore := 0
	for _, label := range AllEmotions {
		score := scoreLabel(emotionBlob, d.lexicon.emotions[label])
		totalScore += score.score
		ranked = append(ranked, rankedEmotion{label: label, labelScore: score})
	}

	// Stable sort keeps taxonomy declaration order among equal scores, so
	// identical input always produces identical output.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	primary := DefaultEmotion
	confidence := zeroSignalConfidence
	var primaryKeywords []string
	if ranked[0].score > 0 {
		primary = ranked[0].label
		primaryKeywords = ranked[0].keywords
		confidence = roundConfidence(math.Min(float64(ranked[0].score)/float64(totalScore), 1))
	}

	var secondary EmotionLabel
	if ranked[1].score > 0 {
		secondary = ranked[1].label
	}

	theme, themeKeywords := d.detectTheme(input)

	return DetectionResult{
		Emotion:          primary,
		Confidence:       confidence,
		SecondaryEmotion: secondary,
		Theme:            theme,
		EmotionKeywords:  primaryKeywords,
		ThemeKeywords:    themeKeywords,
	}
}

// detectTheme runs the scoring pass over the non-mood fields against the
// theme lexicon. The highest-scoring theme wins; a zero top score or a tie
// for the top score falls back to the default theme. Themes carry no
// numeric confidence.
func (d *Detector) detectTheme(input DetectionInput) (ThemeLabel, []string) {
	blob := strings.ToLower(strings.Join([]string{
		input.Activities,
		input.Challenges,
		input.Achievements,
	}, " "))

	scores := make(map[ThemeLabel]labelScore, len(AllThemes))
	best := DefaultTheme
	bestScore := 0
	tied := false
	for _, label := range AllThemes {
		score := scoreLabel(blob, d.lexicon.themes[label])
		scores[label] = score

		if score.score > bestScore {
			best = label
			bestScore = score.score
			tied = false
		} else if score.score == bestScore && score.score > 0 && label != best {
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return DefaultTheme, scores[DefaultTheme].keywords
	}

	return best, scores[best].keywords
}

// scoreLabel counts every keyword occurrence for one label and records the
// distinct keywords that matched. A keyword occurring twice counts twice.
func scoreLabel(blob string, patterns []keywordPattern) labelScore {
	var result labelScore

	for _, p := range patterns {
		matches := p.re.FindAllStringIndex(blob, -1)
		if len(matches) == 0 {
			continue
		}
		result.score += len(matches)
		result.keywords = append(result.keywords, p.keyword)
	}

	return result
}

// roundConfidence rounds to two decimal places.
func roundConfidence(v float64) float64 {
	return math.Round(v*100) / 100
}
