package emotion

import (
	"fmt"
	"regexp"
	"strings"
)

// keywordPattern pairs a trigger keyword with its precompiled word-boundary
// matcher. Patterns are built once when the lexicon is compiled, never per
// detection call.
type keywordPattern struct {
	keyword string
	re      *regexp.Regexp
}

// Lexicon is the compiled, read-only form of the lexicon configuration.
// It is safe for concurrent use; nothing mutates it after Compile returns.
type Lexicon struct {
	emotions map[EmotionLabel][]keywordPattern
	themes   map[ThemeLabel][]keywordPattern
	palettes map[EmotionLabel]Palette
}

// Compile validates the configuration and precompiles every keyword into a
// word-boundary matcher. A label existing in the taxonomy without a lexicon
// or palette entry is a configuration error; callers must treat it as fatal
// at startup.
func Compile(data Data) (*Lexicon, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	lex := &Lexicon{
		emotions: make(map[EmotionLabel][]keywordPattern, len(AllEmotions)),
		themes:   make(map[ThemeLabel][]keywordPattern, len(AllThemes)),
		palettes: make(map[EmotionLabel]Palette, len(AllEmotions)),
	}

	for _, label := range AllEmotions {
		patterns, err := compileKeywords(data.Emotions[label])
		if err != nil {
			return nil, fmt.Errorf("emotion %q: %w", label, err)
		}
		lex.emotions[label] = patterns
		lex.palettes[label] = data.Palettes[label]
	}

	for _, label := range AllThemes {
		patterns, err := compileKeywords(data.Themes[label])
		if err != nil {
			return nil, fmt.Errorf("theme %q: %w", label, err)
		}
		lex.themes[label] = patterns
	}

	return lex, nil
}

// validate enforces the total-function invariant: every label in the closed
// taxonomies has a non-empty lexicon entry, and every emotion has a complete
// palette.
func validate(data Data) error {
	for _, label := range AllEmotions {
		if len(data.Emotions[label]) == 0 {
			return fmt.Errorf("emotion %q has no lexicon entry", label)
		}
		palette, ok := data.Palettes[label]
		if !ok {
			return fmt.Errorf("emotion %q has no palette entry", label)
		}
		if palette.Colors == "" || palette.Mood == "" || palette.Lighting == "" || palette.Atmosphere == "" {
			return fmt.Errorf("emotion %q has an incomplete palette entry", label)
		}
	}

	for _, label := range AllThemes {
		if len(data.Themes[label]) == 0 {
			return fmt.Errorf("theme %q has no lexicon entry", label)
		}
	}

	for label := range data.Emotions {
		if !ValidEmotion(string(label)) {
			return fmt.Errorf("unknown emotion label %q in lexicon", label)
		}
	}
	for label := range data.Themes {
		if !ValidTheme(string(label)) {
			return fmt.Errorf("unknown theme label %q in lexicon", label)
		}
	}
	for label := range data.Palettes {
		if !ValidEmotion(string(label)) {
			return fmt.Errorf("unknown emotion label %q in palette table", label)
		}
	}

	return nil
}

// compileKeywords builds one word-boundary matcher per keyword. Keywords are
// matched against an already-lowercased text blob, so patterns are compiled
// from the lowercased keyword without a case-insensitivity flag.
func compileKeywords(keywords []string) ([]keywordPattern, error) {
	patterns := make([]keywordPattern, 0, len(keywords))

	for _, kw := range keywords {
		normalized := strings.ToLower(strings.TrimSpace(kw))
		if normalized == "" {
			continue
		}

		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(normalized) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("failed to compile keyword %q: %w", kw, err)
		}

		patterns = append(patterns, keywordPattern{keyword: normalized, re: re})
	}

	if len(patterns) == 0 {
		return nil, fmt.Errorf("no usable keywords")
	}

	return patterns, nil
}

// Palette returns the palette for the given emotion. The compile-time
// completeness check guarantees an entry exists for every taxonomy member;
// unknown labels fall back to the neutral palette.
func (l *Lexicon) Palette(label EmotionLabel) Palette {
	if palette, ok := l.palettes[label]; ok {
		return palette
	}
	return l.palettes[DefaultEmotion]
}
