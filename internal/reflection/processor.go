package reflection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
	"github.com/mirrorday/mirrorday-platform/internal/explain"
	"github.com/mirrorday/mirrorday-platform/internal/feedback"
	"github.com/mirrorday/mirrorday-platform/internal/moderation"
	"github.com/mirrorday/mirrorday-platform/internal/style"
	"github.com/mirrorday/mirrorday-platform/pkg/diffusion"
	"github.com/mirrorday/mirrorday-platform/pkg/gemini"
	"github.com/mirrorday/mirrorday-platform/pkg/mqtt"
)

// ErrMissingFields is returned when a submission lacks a required field
var ErrMissingFields = errors.New("missing required fields: activities, mood, challenges, achievements, theme")

// ErrUnsafePrompt is returned when moderation rejects the generation
var ErrUnsafePrompt = errors.New("content moderation rejected the prompt")

// DailyLimitError carries the reset time alongside the limit rejection.
type DailyLimitError struct {
	NextAvailableAt time.Time
}

func (e *DailyLimitError) Error() string {
	return "daily generation limit reached"
}

// Output dimensions for the 9:16 wallpaper format.
const (
	imageWidth    = 768
	imageHeight   = 1344
	imageSteps    = 30
	guidanceScale = 7.5
)

// Store is the persistence surface the processor needs.
type Store interface {
	FindOrCreateUser(ctx context.Context, email string) (uuid.UUID, error)
	SaveReflection(ctx context.Context, r *Reflection) error
	SaveImage(ctx context.Context, img *GeneratedImage) error
	GetImage(ctx context.Context, imageID uuid.UUID) (*GeneratedImage, error)
	SaveExplanation(ctx context.Context, imageID uuid.UUID, result explain.Result) error
	LogTelemetry(ctx context.Context, entry TelemetryEntry)
}

// PreferenceStore is the feedback persistence surface the processor needs.
type PreferenceStore interface {
	GetPreference(ctx context.Context, userID uuid.UUID, label emotion.EmotionLabel) (*feedback.PreferenceRecord, error)
	SavePreference(ctx context.Context, record *feedback.PreferenceRecord) error
	SaveEvent(ctx context.Context, e *feedback.Event) error
}

// Limiter reserves daily generation slots.
type Limiter interface {
	Reserve(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}

// Processor runs the reflection-to-image pipeline.
type Processor struct {
	detector  *emotion.Detector
	styles    *style.Builder
	synth     *explain.Synthesizer
	validator *moderation.Validator
	model     gemini.Client
	renderer  diffusion.Client
	store     Store
	prefs     PreferenceStore
	limiter   Limiter
	images    ImageSink
	bus       mqtt.Client
	logger    *slog.Logger
}

// NewProcessor wires the pipeline dependencies together.
func NewProcessor(
	detector *emotion.Detector,
	styles *style.Builder,
	synth *explain.Synthesizer,
	validator *moderation.Validator,
	model gemini.Client,
	renderer diffusion.Client,
	store Store,
	prefs PreferenceStore,
	limiter Limiter,
	images ImageSink,
	bus mqtt.Client,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		detector:  detector,
		styles:    styles,
		synth:     synth,
		validator: validator,
		model:     model,
		renderer:  renderer,
		store:     store,
		prefs:     prefs,
		limiter:   limiter,
		images:    images,
		bus:       bus,
		logger:    logger,
	}
}

// Result is the outcome of one successful submission.
type Result struct {
	ImageID              uuid.UUID               `json:"image_id"`
	ResponseID           uuid.UUID               `json:"response_id"`
	ImageURL             string                  `json:"image_url"`
	Vibe                 string                  `json:"vibe"`
	Detection            emotion.DetectionResult `json:"detection"`
	RemainingGenerations int                     `json:"remaining_generations"`
}

// Process runs the full pipeline for one submitted reflection.
func (p *Processor) Process(ctx context.Context, answers Answers) (*Result, error) {
	if answers.Activities == "" || answers.Mood == "" || answers.Challenges == "" ||
		answers.Achievements == "" || answers.VisualTheme == "" {
		return nil, ErrMissingFields
	}

	userID, err := p.store.FindOrCreateUser(ctx, answers.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	remaining, err := p.limiter.Reserve(ctx, userID, now)
	if err != nil {
		if errors.Is(err, ErrDailyLimitReached) {
			return nil, &DailyLimitError{NextAvailableAt: NextAvailableAt(now)}
		}
		return nil, err
	}

	detection := p.detector.Detect(answers.DetectionInput())

	p.logger.Info("Detected emotional signal",
		"user_id", userID,
		"emotion", detection.Emotion,
		"confidence", detection.Confidence,
		"theme", detection.Theme)

	var override *feedback.Override
	record, err := p.prefs.GetPreference(ctx, userID, detection.Emotion)
	if err != nil {
		// Preferences are an enhancement; fall back to defaults.
		p.logger.Warn("Failed to load preference record", "error", err)
	} else {
		override = feedback.ShouldOverride(record)
	}

	mods := p.styles.Build(detection.Emotion, detection.Theme, answers.VisualTheme, override)

	reflection := &Reflection{
		UserID:    userID,
		Answers:   answers,
		Detection: detection,
	}
	if err := p.store.SaveReflection(ctx, reflection); err != nil {
		return nil, err
	}

	concept, err := p.generateConcept(ctx, userID, answers, mods)
	if err != nil {
		return nil, err
	}

	basePrompt := fmt.Sprintf("%s %s %s", mods.PromptPrefix, concept.Prompt, mods.PromptSuffix)

	cleaned, err := p.validator.ValidateAndClean(ctx, basePrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsafePrompt, err)
	}

	finalPrompt := p.refinePrompt(ctx, cleaned.CleanedPrompt)

	imageBytes, err := p.renderImage(ctx, userID, finalPrompt, mods.NegativePrompt)
	if err != nil {
		p.publishFailure(userID, err)
		return nil, err
	}

	imageURL, err := p.images.Save(fmt.Sprintf("img-%d.png", now.UnixMilli()), imageBytes)
	if err != nil {
		return nil, err
	}

	img := &GeneratedImage{
		UserID:         userID,
		ResponseID:     reflection.ID,
		ImageURL:       imageURL,
		PromptUsed:     finalPrompt,
		Generator:      GeneratorDiffusion,
		Vibe:           concept.Vibe,
		Emotion:        detection.Emotion,
		Theme:          detection.Theme,
		ColorPalette:   mods.ColorPalette,
		MoodDescriptor: mods.MoodDescriptor,
		LightingStyle:  mods.LightingStyle,
		AtmosphereNote: mods.AtmosphereNote,
	}
	if err := p.store.SaveImage(ctx, img); err != nil {
		return nil, err
	}

	explanation := p.synth.Explain(explain.Params{
		Input:            answers.DetectionInput(),
		Emotion:          detection.Emotion,
		Confidence:       detection.Confidence,
		SecondaryEmotion: detection.SecondaryEmotion,
		Theme:            detection.Theme,
		EmotionKeywords:  detection.EmotionKeywords,
		ThemeKeywords:    detection.ThemeKeywords,
		FinalPrompt:      finalPrompt,
		VisualStyle:      answers.VisualTheme,
	})
	if err := p.store.SaveExplanation(ctx, img.ID, explanation); err != nil {
		return nil, err
	}

	p.publishGenerated(userID, img)

	p.logger.Info("Reflection processed",
		"user_id", userID,
		"image_id", img.ID,
		"vibe", img.Vibe)

	return &Result{
		ImageID:              img.ID,
		ResponseID:           reflection.ID,
		ImageURL:             imageURL,
		Vibe:                 concept.Vibe,
		Detection:            detection,
		RemainingGenerations: remaining,
	}, nil
}

// generateConcept runs the first model call and parses the concept JSON.
func (p *Processor) generateConcept(ctx context.Context, userID uuid.UUID, answers Answers, mods style.Modifiers) (*Concept, error) {
	prompt, err := BuildConceptPrompt(answers, mods)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := p.model.GenerateContent(ctx, prompt)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		p.store.LogTelemetry(ctx, TelemetryEntry{
			UserID: userID, Generator: GeneratorGemini, TimeMs: elapsed,
			Success: false, ErrorMessage: err.Error(),
		})
		return nil, fmt.Errorf("concept generation failed: %w", err)
	}

	concept, err := ParseConcept(response)
	if err != nil {
		p.store.LogTelemetry(ctx, TelemetryEntry{
			UserID: userID, Generator: GeneratorGemini, TimeMs: elapsed,
			Success: false, ErrorMessage: "failed to parse concept response",
		})
		return nil, err
	}

	p.store.LogTelemetry(ctx, TelemetryEntry{
		UserID: userID, Generator: GeneratorGemini, TimeMs: elapsed, Success: true,
	})

	return concept, nil
}

// refinePrompt runs the refinement call; failure falls back to the input.
func (p *Processor) refinePrompt(ctx context.Context, prompt string) string {
	refined, err := p.model.GenerateContent(ctx, fmt.Sprintf(refinementPromptTemplate, prompt))
	if err != nil {
		p.logger.Warn("Prompt refinement failed, using unrefined prompt", "error", err)
		return prompt
	}

	refined = strings.TrimSpace(refined)
	if refined == "" {
		return prompt
	}
	return refined
}

// renderImage runs the diffusion call with telemetry.
func (p *Processor) renderImage(ctx context.Context, userID uuid.UUID, prompt, negativePrompt string) ([]byte, error) {
	start := time.Now()
	imageBytes, err := p.renderer.Render(ctx, diffusion.RenderRequest{
		Prompt:         prompt,
		NegativePrompt: negativePrompt,
		Width:          imageWidth,
		Height:         imageHeight,
		Steps:          imageSteps,
		GuidanceScale:  guidanceScale,
	})
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		p.store.LogTelemetry(ctx, TelemetryEntry{
			UserID: userID, Generator: GeneratorDiffusion, TimeMs: elapsed,
			Success: false, ErrorMessage: err.Error(),
		})
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	p.store.LogTelemetry(ctx, TelemetryEntry{
		UserID: userID, Generator: GeneratorDiffusion, TimeMs: elapsed, Success: true,
	})

	return imageBytes, nil
}

// generatedEvent is the payload published when an image is ready.
type generatedEvent struct {
	ImageID    uuid.UUID `json:"image_id"`
	ResponseID uuid.UUID `json:"response_id"`
	ImageURL   string    `json:"image_url"`
	Vibe       string    `json:"vibe"`
	Emotion    string    `json:"emotion"`
	Theme      string    `json:"theme"`
}

func (p *Processor) publishGenerated(userID uuid.UUID, img *GeneratedImage) {
	if p.bus == nil {
		return
	}

	payload, err := json.Marshal(generatedEvent{
		ImageID:    img.ID,
		ResponseID: img.ResponseID,
		ImageURL:   img.ImageURL,
		Vibe:       img.Vibe,
		Emotion:    string(img.Emotion),
		Theme:      string(img.Theme),
	})
	if err != nil {
		p.logger.Warn("Failed to marshal generated event", "error", err)
		return
	}

	if err := p.bus.Publish(mqtt.ImageGeneratedTopic(userID.String()), 1, false, payload); err != nil {
		p.logger.Warn("Failed to publish generated event", "error", err)
	}
}

func (p *Processor) publishFailure(userID uuid.UUID, cause error) {
	if p.bus == nil {
		return
	}

	payload, _ := json.Marshal(map[string]string{"error": cause.Error()})
	if err := p.bus.Publish(mqtt.ImageFailedTopic(userID.String()), 1, false, payload); err != nil {
		p.logger.Warn("Failed to publish failure event", "error", err)
	}
}

// Feedback response messages, keyed by rating.
var feedbackMessages = map[feedback.Rating]string{
	feedback.RatingYes:       "Thanks! Your preference has been learned for future generations.",
	feedback.RatingPartially: "Got it — we'll refine the style next time.",
	feedback.RatingNo:        "Noted — we'll try a different approach next time.",
}

// ProcessFeedback records a rating for a generated image and applies the
// preference update policy. Returns the user-facing acknowledgement.
func (p *Processor) ProcessFeedback(ctx context.Context, imageID, responseID uuid.UUID, rating feedback.Rating, comment string) (string, error) {
	if !feedback.ValidRating(string(rating)) {
		return "", fmt.Errorf("rating must be 'yes', 'partially', or 'no'")
	}

	img, err := p.store.GetImage(ctx, imageID)
	if err != nil {
		return "", err
	}

	event := &feedback.Event{
		UserID:          img.UserID,
		ImageID:         img.ID,
		ResponseID:      responseID,
		Rating:          rating,
		Comment:         comment,
		DetectedEmotion: img.Emotion,
		DetectedTheme:   img.Theme,
		StyleUsed:       img.ColorPalette,
	}
	if err := p.prefs.SaveEvent(ctx, event); err != nil {
		return "", err
	}

	record, err := p.prefs.GetPreference(ctx, img.UserID, img.Emotion)
	if err != nil {
		return "", err
	}

	record, err = feedback.ApplyRating(record, img.UserID, img.Emotion, rating,
		img.MoodDescriptor, img.ColorPalette)
	if err != nil {
		return "", err
	}

	if err := p.prefs.SavePreference(ctx, record); err != nil {
		return "", err
	}

	p.logger.Info("Recorded feedback",
		"image_id", imageID,
		"rating", rating,
		"positive_count", record.PositiveCount,
		"negative_count", record.NegativeCount)

	return feedbackMessages[rating], nil
}
