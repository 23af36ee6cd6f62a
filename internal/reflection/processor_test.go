package reflection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
	"github.com/mirrorday/mirrorday-platform/internal/explain"
	"github.com/mirrorday/mirrorday-platform/internal/feedback"
	"github.com/mirrorday/mirrorday-platform/internal/moderation"
	"github.com/mirrorday/mirrorday-platform/internal/style"
	"github.com/mirrorday/mirrorday-platform/pkg/diffusion"
	"github.com/mirrorday/mirrorday-platform/pkg/gemini"
	"github.com/mirrorday/mirrorday-platform/pkg/mqtt"
)

// ---- mocks ----

type mockStore struct {
	userID       uuid.UUID
	reflections  []*Reflection
	images       []*GeneratedImage
	explanations map[uuid.UUID]explain.Result
	telemetry    []TelemetryEntry
	imageByID    map[uuid.UUID]*GeneratedImage
}

func newMockStore() *mockStore {
	return &mockStore{
		userID:       uuid.New(),
		explanations: make(map[uuid.UUID]explain.Result),
		imageByID:    make(map[uuid.UUID]*GeneratedImage),
	}
}

func (m *mockStore) FindOrCreateUser(_ context.Context, _ string) (uuid.UUID, error) {
	return m.userID, nil
}

func (m *mockStore) SaveReflection(_ context.Context, r *Reflection) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now().UTC()
	m.reflections = append(m.reflections, r)
	return nil
}

func (m *mockStore) SaveImage(_ context.Context, img *GeneratedImage) error {
	img.ID = uuid.New()
	img.CreatedAt = time.Now().UTC()
	m.images = append(m.images, img)
	m.imageByID[img.ID] = img
	return nil
}

func (m *mockStore) GetImage(_ context.Context, imageID uuid.UUID) (*GeneratedImage, error) {
	img, ok := m.imageByID[imageID]
	if !ok {
		return nil, fmt.Errorf("image %s: %w", imageID, ErrNotFound)
	}
	return img, nil
}

func (m *mockStore) SaveExplanation(_ context.Context, imageID uuid.UUID, result explain.Result) error {
	m.explanations[imageID] = result
	return nil
}

func (m *mockStore) LogTelemetry(_ context.Context, entry TelemetryEntry) {
	m.telemetry = append(m.telemetry, entry)
}

type mockPrefs struct {
	records map[string]*feedback.PreferenceRecord
	events  []*feedback.Event
}

func newMockPrefs() *mockPrefs {
	return &mockPrefs{records: make(map[string]*feedback.PreferenceRecord)}
}

func (m *mockPrefs) key(userID uuid.UUID, label emotion.EmotionLabel) string {
	return userID.String() + "/" + string(label)
}

func (m *mockPrefs) GetPreference(_ context.Context, userID uuid.UUID, label emotion.EmotionLabel) (*feedback.PreferenceRecord, error) {
	return m.records[m.key(userID, label)], nil
}

func (m *mockPrefs) SavePreference(_ context.Context, record *feedback.PreferenceRecord) error {
	m.records[m.key(record.UserID, record.Emotion)] = record
	return nil
}

func (m *mockPrefs) SaveEvent(_ context.Context, e *feedback.Event) error {
	m.events = append(m.events, e)
	return nil
}

type mockLimiter struct {
	remaining int
	err       error
}

func (m *mockLimiter) Reserve(_ context.Context, _ uuid.UUID, _ time.Time) (int, error) {
	return m.remaining, m.err
}

type mockSink struct {
	saved map[string][]byte
}

func (m *mockSink) Save(name string, data []byte) (string, error) {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[name] = data
	return "/api/images/" + name, nil
}

type mockBus struct {
	published map[string][][]byte
}

func (m *mockBus) Connect(_ context.Context) error { return nil }
func (m *mockBus) Disconnect()                     {}
func (m *mockBus) Subscribe(_ string, _ byte, _ mqtt.MessageHandler) error {
	return nil
}
func (m *mockBus) Publish(topic string, _ byte, _ bool, payload []byte) error {
	if m.published == nil {
		m.published = make(map[string][][]byte)
	}
	m.published[topic] = append(m.published[topic], payload)
	return nil
}
func (m *mockBus) IsConnected() bool { return true }

// ---- fixtures ----

const conceptJSON = `{"prompt": "A runner silhouetted on a misty forest trail at sunrise, golden light breaking through the canopy.", "style": "realistic", "size": "2048x3620", "vibe": "determined and fresh"}`

func conceptAwareModel(refineErr error) *gemini.MockClient {
	return &gemini.MockClient{
		GenerateContentFunc: func(_ context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Refine this image prompt") {
				if refineErr != nil {
					return "", refineErr
				}
				return "A lone runner on a glowing forest trail, cinematic sunrise haze.", nil
			}
			return conceptJSON, nil
		},
	}
}

func validAnswers() Answers {
	return Answers{
		Activities:   "went for a long run in the park",
		Mood:         "feeling motivated and strong",
		Challenges:   "early start was difficult",
		Achievements: "finished my first 10k",
		VisualTheme:  "realistic",
	}
}

func newTestProcessor(t *testing.T, model gemini.Client, renderer diffusion.Client, store *mockStore, prefs *mockPrefs, limiter Limiter, bus mqtt.Client) *Processor {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	lex, err := emotion.Compile(emotion.DefaultData())
	require.NoError(t, err)

	return NewProcessor(
		emotion.NewDetector(lex),
		style.NewBuilder(lex),
		explain.NewSynthesizer(lex),
		moderation.NewValidator(NewPromptRewriter(model), logger),
		model,
		renderer,
		store,
		prefs,
		limiter,
		&mockSink{},
		bus,
		logger,
	)
}

// ---- tests ----

func TestProcess_FullPipeline(t *testing.T) {
	store := newMockStore()
	prefs := newMockPrefs()
	bus := &mockBus{}
	model := conceptAwareModel(nil)
	renderer := diffusion.NewMockClient()

	proc := newTestProcessor(t, model, renderer, store, prefs, &mockLimiter{remaining: 1}, bus)

	result, err := proc.Process(context.Background(), validAnswers())
	require.NoError(t, err)

	assert.Equal(t, emotion.Motivated, result.Detection.Emotion)
	assert.Equal(t, emotion.ThemeHealth, result.Detection.Theme)
	assert.Equal(t, "determined and fresh", result.Vibe)
	assert.Equal(t, 1, result.RemainingGenerations)
	assert.True(t, strings.HasPrefix(result.ImageURL, "/api/images/img-"))

	require.Len(t, store.reflections, 1)
	require.Len(t, store.images, 1)

	img := store.images[0]
	assert.Equal(t, result.ImageID, img.ID)
	assert.Equal(t, store.reflections[0].ID, img.ResponseID)
	assert.Equal(t, GeneratorDiffusion, img.Generator)
	assert.NotEmpty(t, img.ColorPalette)
	assert.NotEmpty(t, img.PromptUsed)

	explanation, ok := store.explanations[img.ID]
	require.True(t, ok)
	assert.Contains(t, explanation.DetectedEmotion, "motivated")

	topic := mqtt.ImageGeneratedTopic(store.userID.String())
	require.Len(t, bus.published[topic], 1)

	// One telemetry row per model call plus one for the render.
	var successes int
	for _, entry := range store.telemetry {
		if entry.Success {
			successes++
		}
	}
	assert.Equal(t, 2, successes)
}

func TestProcess_MissingFields(t *testing.T) {
	store := newMockStore()
	proc := newTestProcessor(t, conceptAwareModel(nil), diffusion.NewMockClient(),
		store, newMockPrefs(), &mockLimiter{remaining: 1}, &mockBus{})

	answers := validAnswers()
	answers.Mood = ""

	_, err := proc.Process(context.Background(), answers)
	require.ErrorIs(t, err, ErrMissingFields)
	assert.Empty(t, store.reflections)
}

func TestProcess_DailyLimit(t *testing.T) {
	proc := newTestProcessor(t, conceptAwareModel(nil), diffusion.NewMockClient(),
		newMockStore(), newMockPrefs(), &mockLimiter{err: ErrDailyLimitReached}, &mockBus{})

	_, err := proc.Process(context.Background(), validAnswers())

	var limitErr *DailyLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.True(t, limitErr.NextAvailableAt.After(time.Now()))
}

func TestProcess_ModerationRejectsUnsafeConcept(t *testing.T) {
	// Concept and rewrite both contain blocked terms; the pipeline must stop.
	model := &gemini.MockClient{
		GenerateContentFunc: func(_ context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Rewrite it") {
				return "an even more violent scene", nil
			}
			return `{"prompt": "a violent battlefield with blood", "style": "realistic", "size": "2048x3620", "vibe": "dark"}`, nil
		},
	}

	store := newMockStore()
	proc := newTestProcessor(t, model, diffusion.NewMockClient(),
		store, newMockPrefs(), &mockLimiter{remaining: 1}, &mockBus{})

	_, err := proc.Process(context.Background(), validAnswers())
	require.ErrorIs(t, err, ErrUnsafePrompt)
	assert.Empty(t, store.images)
}

func TestProcess_RefinementFailureFallsBack(t *testing.T) {
	store := newMockStore()
	proc := newTestProcessor(t, conceptAwareModel(errors.New("model overloaded")),
		diffusion.NewMockClient(), store, newMockPrefs(), &mockLimiter{remaining: 1}, &mockBus{})

	result, err := proc.Process(context.Background(), validAnswers())
	require.NoError(t, err)

	// Unrefined prompt carries the style prefix the refinement would have
	// rewritten away.
	img := store.imageByID[result.ImageID]
	assert.Contains(t, img.PromptUsed, "[Emotion: motivated, Theme: health]")
}

func TestProcess_RenderFailurePublishesFailure(t *testing.T) {
	store := newMockStore()
	bus := &mockBus{}
	renderer := &diffusion.MockClient{
		RenderFunc: func(_ context.Context, _ diffusion.RenderRequest) ([]byte, error) {
			return nil, errors.New("model loading")
		},
	}

	proc := newTestProcessor(t, conceptAwareModel(nil), renderer,
		store, newMockPrefs(), &mockLimiter{remaining: 1}, bus)

	_, err := proc.Process(context.Background(), validAnswers())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image generation failed")

	topic := mqtt.ImageFailedTopic(store.userID.String())
	require.Len(t, bus.published[topic], 1)

	var renderFailures int
	for _, entry := range store.telemetry {
		if entry.Generator == GeneratorDiffusion && !entry.Success {
			renderFailures++
		}
	}
	assert.Equal(t, 1, renderFailures)
}

func TestProcess_PreferenceOverrideChangesPalette(t *testing.T) {
	store := newMockStore()
	prefs := newMockPrefs()

	preferred := "neon magentas, chrome silvers"
	prefStyle := "commanding and assured"
	prefs.records[prefs.key(store.userID, emotion.Motivated)] = &feedback.PreferenceRecord{
		UserID:           store.userID,
		Emotion:          emotion.Motivated,
		PreferredStyle:   &prefStyle,
		PreferredPalette: &preferred,
		PositiveCount:    2,
		NegativeCount:    0,
	}

	proc := newTestProcessor(t, conceptAwareModel(errors.New("skip refinement")),
		diffusion.NewMockClient(), store, prefs, &mockLimiter{remaining: 1}, &mockBus{})

	result, err := proc.Process(context.Background(), validAnswers())
	require.NoError(t, err)

	img := store.imageByID[result.ImageID]
	assert.Equal(t, preferred, img.ColorPalette)
	assert.Contains(t, img.PromptUsed, preferred)
}

func TestProcessFeedback_PositiveLearnsPreference(t *testing.T) {
	store := newMockStore()
	prefs := newMockPrefs()
	proc := newTestProcessor(t, conceptAwareModel(nil), diffusion.NewMockClient(),
		store, prefs, &mockLimiter{remaining: 1}, &mockBus{})

	result, err := proc.Process(context.Background(), validAnswers())
	require.NoError(t, err)

	msg, err := proc.ProcessFeedback(context.Background(), result.ImageID, result.ResponseID,
		feedback.RatingYes, "love it")
	require.NoError(t, err)
	assert.Equal(t, "Thanks! Your preference has been learned for future generations.", msg)

	require.Len(t, prefs.events, 1)
	assert.Equal(t, emotion.Motivated, prefs.events[0].DetectedEmotion)

	record := prefs.records[prefs.key(store.userID, emotion.Motivated)]
	require.NotNil(t, record)
	assert.Equal(t, 1, record.PositiveCount)
	require.NotNil(t, record.PreferredPalette)
	assert.Equal(t, store.imageByID[result.ImageID].ColorPalette, *record.PreferredPalette)
}

func TestProcessFeedback_UnknownImage(t *testing.T) {
	proc := newTestProcessor(t, conceptAwareModel(nil), diffusion.NewMockClient(),
		newMockStore(), newMockPrefs(), &mockLimiter{remaining: 1}, &mockBus{})

	_, err := proc.ProcessFeedback(context.Background(), uuid.New(), uuid.New(),
		feedback.RatingYes, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProcessFeedback_InvalidRating(t *testing.T) {
	proc := newTestProcessor(t, conceptAwareModel(nil), diffusion.NewMockClient(),
		newMockStore(), newMockPrefs(), &mockLimiter{remaining: 1}, &mockBus{})

	_, err := proc.ProcessFeedback(context.Background(), uuid.New(), uuid.New(),
		feedback.Rating("maybe"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating must be")
}
