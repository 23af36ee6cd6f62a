package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
	"github.com/mirrorday/mirrorday-platform/internal/insights"
	"github.com/mirrorday/mirrorday-platform/internal/reflection"
	"github.com/mirrorday/mirrorday-platform/pkg/mqtt"
)

type stubUsers struct {
	inactive []reflection.User
	all      []reflection.User
}

func (s *stubUsers) UsersWithoutReflectionToday(_ context.Context, _ time.Time) ([]reflection.User, error) {
	return s.inactive, nil
}

func (s *stubUsers) ListUsers(_ context.Context) ([]reflection.User, error) {
	return s.all, nil
}

type stubSummaries struct {
	summaries map[uuid.UUID]insights.Summary
}

func (s *stubSummaries) WeeklySummary(_ context.Context, userID uuid.UUID, _ time.Time) (insights.Summary, error) {
	return s.summaries[userID], nil
}

type recordingBus struct {
	published map[string]int
}

func (b *recordingBus) Connect(_ context.Context) error                       { return nil }
func (b *recordingBus) Disconnect()                                           {}
func (b *recordingBus) Subscribe(_ string, _ byte, _ mqtt.MessageHandler) error { return nil }
func (b *recordingBus) Publish(topic string, _ byte, _ bool, _ []byte) error {
	if b.published == nil {
		b.published = make(map[string]int)
	}
	b.published[topic]++
	return nil
}
func (b *recordingBus) IsConnected() bool { return true }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTick_ReminderFiresOncePerDay(t *testing.T) {
	users := &stubUsers{inactive: []reflection.User{
		{ID: uuid.New(), Email: "a@example.com"},
		{ID: uuid.New(), Email: "b@example.com"},
	}}
	bus := &recordingBus{}

	sched := NewScheduler(users, &stubSummaries{}, bus, 20, time.Sunday, 18, discardLogger())

	// 2026-08-31 is a Monday: no weekly summary interference.
	evening := time.Date(2026, 8, 31, 20, 5, 0, 0, time.UTC)
	sched.Tick(context.Background(), evening)
	require.Equal(t, 2, bus.published[mqtt.TopicReminder])

	// Later the same evening: no re-fire.
	sched.Tick(context.Background(), evening.Add(time.Hour))
	assert.Equal(t, 2, bus.published[mqtt.TopicReminder])

	// Next day fires again.
	sched.Tick(context.Background(), evening.AddDate(0, 0, 1))
	assert.Equal(t, 4, bus.published[mqtt.TopicReminder])
}

func TestTick_ReminderWaitsForConfiguredHour(t *testing.T) {
	users := &stubUsers{inactive: []reflection.User{{ID: uuid.New(), Email: "a@example.com"}}}
	bus := &recordingBus{}

	sched := NewScheduler(users, &stubSummaries{}, bus, 20, time.Sunday, 18, discardLogger())

	morning := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	sched.Tick(context.Background(), morning)
	assert.Zero(t, bus.published[mqtt.TopicReminder])
}

func TestTick_WeeklySummarySkipsEmptyWeeks(t *testing.T) {
	active := reflection.User{ID: uuid.New(), Email: "active@example.com"}
	idle := reflection.User{ID: uuid.New(), Email: "idle@example.com"}

	users := &stubUsers{all: []reflection.User{active, idle}}
	summaries := &stubSummaries{summaries: map[uuid.UUID]insights.Summary{
		active.ID: {
			TotalReflections: 4,
			DominantEmotion:  emotion.Happy,
			DominantTheme:    emotion.ThemeWork,
		},
	}}
	bus := &recordingBus{}

	sched := NewScheduler(users, summaries, bus, 23, time.Sunday, 18, discardLogger())

	// 2026-08-30 is a Sunday.
	sunday := time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC)
	sched.Tick(context.Background(), sunday)

	assert.Equal(t, 1, bus.published[mqtt.WeeklySummaryTopic(active.ID.String())])
	assert.Zero(t, bus.published[mqtt.WeeklySummaryTopic(idle.ID.String())])
}

func TestTick_WeeklySummaryOnlyOnConfiguredDay(t *testing.T) {
	user := reflection.User{ID: uuid.New(), Email: "a@example.com"}
	users := &stubUsers{all: []reflection.User{user}}
	summaries := &stubSummaries{summaries: map[uuid.UUID]insights.Summary{
		user.ID: {TotalReflections: 1},
	}}
	bus := &recordingBus{}

	sched := NewScheduler(users, summaries, bus, 23, time.Sunday, 18, discardLogger())

	monday := time.Date(2026, 8, 31, 19, 0, 0, 0, time.UTC)
	sched.Tick(context.Background(), monday)

	assert.Zero(t, bus.published[mqtt.WeeklySummaryTopic(user.ID.String())])
}
