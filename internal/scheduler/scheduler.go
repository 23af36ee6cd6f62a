// Package scheduler drives the time-based jobs: the daily reflection
// reminder and the weekly emotional summary. Both are published as events
// on the bus; the external notification dispatcher handles delivery.
package scheduler

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorday/mirrorday-platform/internal/insights"
	"github.com/mirrorday/mirrorday-platform/internal/reflection"
	"github.com/mirrorday/mirrorday-platform/pkg/mqtt"
)

// UserSource supplies the user sets the jobs act on.
type UserSource interface {
	UsersWithoutReflectionToday(ctx context.Context, now time.Time) ([]reflection.User, error)
	ListUsers(ctx context.Context) ([]reflection.User, error)
}

// SummarySource produces the weekly aggregate for one user.
type SummarySource interface {
	WeeklySummary(ctx context.Context, userID uuid.UUID, now time.Time) (insights.Summary, error)
}

// Scheduler fires the reminder and weekly-summary jobs at their configured
// times. Tick is expected to be called at least once per hour; each job
// fires at most once per day.
type Scheduler struct {
	users     UserSource
	summaries SummarySource
	bus       mqtt.Client
	logger    *slog.Logger

	reminderHour int
	weeklyDay    time.Weekday
	weeklyHour   int

	lastReminderDate string
	lastSummaryDate  string
}

// NewScheduler creates a scheduler with the given firing times.
func NewScheduler(users UserSource, summaries SummarySource, bus mqtt.Client,
	reminderHour int, weeklyDay time.Weekday, weeklyHour int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		users:        users,
		summaries:    summaries,
		bus:          bus,
		logger:       logger,
		reminderHour: reminderHour,
		weeklyDay:    weeklyDay,
		weeklyHour:   weeklyHour,
	}
}

// Run ticks the scheduler until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Scheduler started",
		"reminder_hour", s.reminderHour,
		"weekly_day", s.weeklyDay.String(),
		"weekly_hour", s.weeklyHour)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick runs any job whose firing time has been reached today.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	date := now.Format("2006-01-02")

	if now.Hour() >= s.reminderHour && s.lastReminderDate != date {
		s.lastReminderDate = date
		s.runReminder(ctx, now)
	}

	if now.Weekday() == s.weeklyDay && now.Hour() >= s.weeklyHour && s.lastSummaryDate != date {
		s.lastSummaryDate = date
		s.runWeeklySummary(ctx, now)
	}
}

// reminderEvent is published for each user who has not reflected today.
type reminderEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Date   string    `json:"date"`
}

func (s *Scheduler) runReminder(ctx context.Context, now time.Time) {
	users, err := s.users.UsersWithoutReflectionToday(ctx, now)
	if err != nil {
		s.logger.Error("Reminder job failed to load users", "error", err)
		return
	}

	for _, user := range users {
		payload, err := json.Marshal(reminderEvent{
			UserID: user.ID,
			Email:  user.Email,
			Date:   now.Format("2006-01-02"),
		})
		if err != nil {
			s.logger.Warn("Failed to marshal reminder event", "error", err)
			continue
		}

		if err := s.bus.Publish(mqtt.TopicReminder, 1, false, payload); err != nil {
			s.logger.Warn("Failed to publish reminder", "user_id", user.ID, "error", err)
		}
	}

	s.logger.Info("Reminder job finished", "users_reminded", len(users))
}

// weeklySummaryEvent carries one user's aggregate for notification delivery.
type weeklySummaryEvent struct {
	UserID  uuid.UUID        `json:"user_id"`
	Email   string           `json:"email"`
	Summary insights.Summary `json:"summary"`
}

func (s *Scheduler) runWeeklySummary(ctx context.Context, now time.Time) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error("Weekly summary job failed to load users", "error", err)
		return
	}

	published := 0
	for _, user := range users {
		summary, err := s.summaries.WeeklySummary(ctx, user.ID, now)
		if err != nil {
			s.logger.Warn("Failed to build weekly summary", "user_id", user.ID, "error", err)
			continue
		}
		if summary.TotalReflections == 0 {
			// Nothing to say this week.
			continue
		}

		payload, err := json.Marshal(weeklySummaryEvent{
			UserID:  user.ID,
			Email:   user.Email,
			Summary: summary,
		})
		if err != nil {
			s.logger.Warn("Failed to marshal weekly summary event", "error", err)
			continue
		}

		if err := s.bus.Publish(mqtt.WeeklySummaryTopic(user.ID.String()), 1, false, payload); err != nil {
			s.logger.Warn("Failed to publish weekly summary", "user_id", user.ID, "error", err)
			continue
		}
		published++
	}

	s.logger.Info("Weekly summary job finished", "summaries_published", published)
}
