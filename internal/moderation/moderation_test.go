package moderation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRewriter struct {
	result string
	err    error
	calls  int
}

func (s *stubRewriter) RewritePrompt(_ context.Context, _ string, _ []string) (string, error) {
	s.calls++
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScreen_SafePrompt(t *testing.T) {
	result := Screen("a peaceful mountain lake at golden hour, soft mist")

	assert.True(t, result.Safe)
	assert.Empty(t, result.FlaggedTerms)
	assert.Empty(t, result.Categories)
}

func TestScreen_FlagsByCategory(t *testing.T) {
	tests := []struct {
		name         string
		prompt       string
		wantTerm     string
		wantCategory string
	}{
		{"public figure", "a portrait in the style of taylor swift", "taylor swift", "public_figures"},
		{"explicit", "an explicit scene", "explicit", "explicit_content"},
		{"violent", "a battlefield covered in blood", "blood", "violent_content"},
		{"hateful", "nazi imagery", "nazi", "hateful_content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Screen(tt.prompt)

			assert.False(t, result.Safe)
			assert.Contains(t, result.FlaggedTerms, tt.wantTerm)
			assert.Contains(t, result.Categories, tt.wantCategory)
			assert.Equal(t, tt.prompt, result.OriginalPrompt)
		})
	}
}

func TestScreen_CaseInsensitiveSubstring(t *testing.T) {
	// Substring matching is intentional: "GUNmetal" still flags "gun".
	result := Screen("a GUNmetal grey skyline")

	assert.False(t, result.Safe)
	assert.Contains(t, result.FlaggedTerms, "gun")
}

func TestScreen_MultipleCategoriesDeduplicated(t *testing.T) {
	result := Screen("a violent murder scene with a gun")

	assert.False(t, result.Safe)
	assert.Equal(t, []string{"violent_content"}, result.Categories)
	assert.ElementsMatch(t, []string{"violent", "murder", "gun"}, result.FlaggedTerms)
}

func TestValidateAndClean_SafePassthrough(t *testing.T) {
	rewriter := &stubRewriter{}
	validator := NewValidator(rewriter, discardLogger())

	result, err := validator.ValidateAndClean(context.Background(), "a quiet forest path")
	require.NoError(t, err)

	assert.False(t, result.WasCleaned)
	assert.Equal(t, "a quiet forest path", result.CleanedPrompt)
	assert.Zero(t, rewriter.calls, "safe prompts must not hit the model")
}

func TestValidateAndClean_RewritesFlaggedPrompt(t *testing.T) {
	rewriter := &stubRewriter{result: "a dramatic stormy battlefield of clouds"}
	validator := NewValidator(rewriter, discardLogger())

	result, err := validator.ValidateAndClean(context.Background(), "a war scene with explosions")
	require.NoError(t, err)

	assert.True(t, result.WasCleaned)
	assert.Equal(t, "a dramatic stormy battlefield of clouds", result.CleanedPrompt)
	assert.Equal(t, "a war scene with explosions", result.OriginalPrompt)
	assert.Equal(t, 1, rewriter.calls)
}

func TestValidateAndClean_RejectsStillUnsafeRewrite(t *testing.T) {
	rewriter := &stubRewriter{result: "an even more violent scene"}
	validator := NewValidator(rewriter, discardLogger())

	_, err := validator.ValidateAndClean(context.Background(), "a violent scene")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still flagged")
}

func TestValidateAndClean_RewriterError(t *testing.T) {
	rewriter := &stubRewriter{err: errors.New("model unavailable")}
	validator := NewValidator(rewriter, discardLogger())

	_, err := validator.ValidateAndClean(context.Background(), "a violent scene")
	require.Error(t, err)
	assert.ErrorContains(t, err, "rewriting flagged prompt")
}
