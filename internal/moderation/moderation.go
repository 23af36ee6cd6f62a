// Package moderation screens generation prompts for unsafe content before
// they reach the image model. Screening is a local blocklist pass; flagged
// prompts get one model-backed rewrite attempt and are re-screened.
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Blocklist categories. Matching is case-insensitive substring search: a
// term inside a longer word still flags, which is deliberate for this
// vocabulary.
var blockedTerms = map[string][]string{
	"public_figures": {
		"trump", "biden", "obama", "putin", "xi jinping", "modi", "macron", "trudeau",
		"taylor swift", "beyonce", "kardashian", "elon musk", "bill gates", "jeff bezos",
		"kanye", "drake", "rihanna", "ariana grande", "selena gomez",
		"hitler", "stalin", "mao", "mussolini",
	},
	"explicit_content": {
		"nude", "naked", "porn", "sex", "xxx", "nsfw", "explicit", "erotic",
		"sexual", "provocative", "seductive", "topless", "underwear", "lingerie",
	},
	"violent_content": {
		"blood", "gore", "violent", "murder", "kill", "dead", "death", "weapon",
		"gun", "knife", "sword", "torture", "brutal", "attack", "war", "bomb",
		"explosion", "shooting", "stabbing", "assault",
	},
	"hateful_content": {
		"racist", "nazi", "kkk", "hate", "supremacy", "slur", "offensive",
	},
}

// categoryOrder keeps screening output deterministic; map iteration is not.
var categoryOrder = []string{"public_figures", "explicit_content", "violent_content", "hateful_content"}

// Result is the outcome of one blocklist screening pass.
type Result struct {
	Safe           bool     `json:"safe"`
	FlaggedTerms   []string `json:"flagged_terms"`
	Categories     []string `json:"categories"`
	OriginalPrompt string   `json:"original_prompt"`
}

// Screen checks a prompt against the blocklist and reports every matched
// term and the categories they belong to.
func Screen(prompt string) Result {
	lower := strings.ToLower(prompt)

	result := Result{
		Safe:           true,
		OriginalPrompt: prompt,
	}

	for _, category := range categoryOrder {
		matched := false
		for _, term := range blockedTerms[category] {
			if strings.Contains(lower, term) {
				result.FlaggedTerms = append(result.FlaggedTerms, term)
				matched = true
			}
		}
		if matched {
			result.Categories = append(result.Categories, category)
		}
	}

	result.Safe = len(result.FlaggedTerms) == 0

	return result
}

// Rewriter rewrites a flagged prompt into a safe equivalent that preserves
// the original scene intent.
type Rewriter interface {
	RewritePrompt(ctx context.Context, prompt string, flaggedTerms []string) (string, error)
}

// CleanResult is the outcome of validation: the prompt that should be used
// for generation, and whether a rewrite happened.
type CleanResult struct {
	CleanedPrompt  string `json:"cleaned_prompt"`
	WasCleaned     bool   `json:"was_cleaned"`
	OriginalPrompt string `json:"original_prompt"`
}

// Validator runs the screen-rewrite-rescreen sequence.
type Validator struct {
	rewriter Rewriter
	logger   *slog.Logger
}

// NewValidator creates a validator over the given rewriter.
func NewValidator(rewriter Rewriter, logger *slog.Logger) *Validator {
	return &Validator{
		rewriter: rewriter,
		logger:   logger,
	}
}

// ValidateAndClean screens the prompt, rewrites it once if flagged, and
// re-screens the rewrite. A rewrite that still flags is rejected: the caller
// must not generate from it.
func (v *Validator) ValidateAndClean(ctx context.Context, prompt string) (*CleanResult, error) {
	screening := Screen(prompt)
	if screening.Safe {
		return &CleanResult{
			CleanedPrompt:  prompt,
			WasCleaned:     false,
			OriginalPrompt: prompt,
		}, nil
	}

	v.logger.Warn("prompt flagged by moderation",
		"categories", strings.Join(screening.Categories, ","),
		"flagged_terms", strings.Join(screening.FlaggedTerms, ","))

	cleaned, err := v.rewriter.RewritePrompt(ctx, prompt, screening.FlaggedTerms)
	if err != nil {
		return nil, fmt.Errorf("rewriting flagged prompt: %w", err)
	}

	rescreen := Screen(cleaned)
	if !rescreen.Safe {
		return nil, fmt.Errorf("unable to produce a safe prompt, rewrite still flagged for %s",
			strings.Join(rescreen.Categories, ", "))
	}

	return &CleanResult{
		CleanedPrompt:  cleaned,
		WasCleaned:     true,
		OriginalPrompt: prompt,
	}, nil
}
