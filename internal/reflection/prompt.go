package reflection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mirrorday/mirrorday-platform/internal/style"
	"github.com/mirrorday/mirrorday-platform/pkg/gemini"
)

// conceptSystemPrompt frames the first model call: turn a reflection into a
// structured image concept.
const conceptSystemPrompt = `You are a reflection agent that turns a user's daily reflection into an image concept.

Use the input JSON to understand their mood, activities, and the vibe of their day.
Return only a JSON object:

{
  "prompt": "Detailed image description (2-4 cinematic sentences, emotional, 9:16 wallpaper)",
  "style": "anime" | "realistic" | "cyberpunk" | "minimalist",
  "size": "2048x3620",
  "vibe": "short summary like 'hopeful and calm'"
}

Rules:
- Create original characters (no copyrighted likeness).
- Include lighting, emotion, setting, and colors.
Output ONLY JSON, no markdown, no explanation.`

// refinementPromptTemplate frames the second model call. Refinement failure
// is non-fatal; the caller falls back to the unrefined prompt.
const refinementPromptTemplate = `Refine this image prompt for higher cinematic detail and emotional tone, max 3 sentences, 9:16 mobile wallpaper:
%s
Output only the refined prompt.`

// rewritePromptTemplate frames the moderation rewrite call.
const rewritePromptTemplate = `The following image prompt was flagged for unsafe terms (%s).
Rewrite it so it keeps the same scene, mood and composition but contains no unsafe content, no public figures and no violence.
Prompt: %s
Output only the rewritten prompt, nothing else.`

// Concept is the structured image concept returned by the model.
type Concept struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
	Size   string `json:"size"`
	Vibe   string `json:"vibe"`
}

// BuildConceptPrompt composes the full first-call prompt: the system
// framing, the raw reflection, and the style guidance derived from
// detection.
func BuildConceptPrompt(answers Answers, mods style.Modifiers) (string, error) {
	input, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("failed to marshal reflection: %w", err)
	}

	return fmt.Sprintf("%s\n\nUser reflection: %s\n\nStyle guidance: %s ... %s",
		conceptSystemPrompt, string(input), mods.PromptPrefix, mods.PromptSuffix), nil
}

// ParseConcept extracts the concept JSON from a model response, tolerating
// markdown code fences.
func ParseConcept(response string) (*Concept, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var concept Concept
	if err := json.Unmarshal([]byte(cleaned), &concept); err != nil {
		return nil, fmt.Errorf("failed to parse concept JSON: %w", err)
	}
	if concept.Prompt == "" {
		return nil, fmt.Errorf("concept is missing a prompt")
	}

	return &concept, nil
}

// PromptRewriter adapts the Gemini client to the moderation rewrite hook.
type PromptRewriter struct {
	model gemini.Client
}

// NewPromptRewriter creates a rewriter over the given model client.
func NewPromptRewriter(model gemini.Client) *PromptRewriter {
	return &PromptRewriter{model: model}
}

// RewritePrompt asks the model for a safe version of a flagged prompt.
func (r *PromptRewriter) RewritePrompt(ctx context.Context, prompt string, flaggedTerms []string) (string, error) {
	response, err := r.model.GenerateContent(ctx,
		fmt.Sprintf(rewritePromptTemplate, strings.Join(flaggedTerms, ", "), prompt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(response), nil
}
