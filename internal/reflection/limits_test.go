package reflection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRedis struct {
	counters map[string]int64
	expiries map[string]time.Duration
}

func newMockRedis() *mockRedis {
	return &mockRedis{
		counters: make(map[string]int64),
		expiries: make(map[string]time.Duration),
	}
}

func (m *mockRedis) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	return nil
}
func (m *mockRedis) Get(_ context.Context, _ string) (string, error) { return "", nil }
func (m *mockRedis) Incr(_ context.Context, key string) (int64, error) {
	m.counters[key]++
	return m.counters[key], nil
}
func (m *mockRedis) Del(_ context.Context, key string) error {
	delete(m.counters, key)
	return nil
}
func (m *mockRedis) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.expiries[key] = ttl
	return nil
}
func (m *mockRedis) Ping(_ context.Context) error { return nil }
func (m *mockRedis) Close() error                 { return nil }

func TestDailyLimiter_Reserve(t *testing.T) {
	rdb := newMockRedis()
	limiter := NewDailyLimiter(rdb, 2)
	userID := uuid.New()
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	remaining, err := limiter.Reserve(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	remaining, err = limiter.Reserve(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	_, err = limiter.Reserve(context.Background(), userID, now)
	require.ErrorIs(t, err, ErrDailyLimitReached)

	// The counter key expires at midnight, set on first reservation only.
	assert.Len(t, rdb.expiries, 1)
}

func TestDailyLimiter_SeparateUsersAndDays(t *testing.T) {
	rdb := newMockRedis()
	limiter := NewDailyLimiter(rdb, 1)
	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)

	first := uuid.New()
	second := uuid.New()

	_, err := limiter.Reserve(context.Background(), first, now)
	require.NoError(t, err)
	_, err = limiter.Reserve(context.Background(), first, now)
	require.ErrorIs(t, err, ErrDailyLimitReached)

	// A different user is unaffected.
	_, err = limiter.Reserve(context.Background(), second, now)
	require.NoError(t, err)

	// A new day gives the first user a fresh budget.
	_, err = limiter.Reserve(context.Background(), first, now.AddDate(0, 0, 1))
	require.NoError(t, err)
}

func TestNextAvailableAt(t *testing.T) {
	now := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)

	next := NextAvailableAt(now)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), next)
}

func TestParseConcept(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  bool
	}{
		{
			name:     "plain JSON",
			response: `{"prompt": "a quiet lake", "style": "realistic", "size": "2048x3620", "vibe": "calm"}`,
		},
		{
			name:     "fenced JSON",
			response: "```json\n{\"prompt\": \"a quiet lake\", \"style\": \"anime\", \"size\": \"2048x3620\", \"vibe\": \"calm\"}\n```",
		},
		{
			name:     "not JSON",
			response: "Sorry, I cannot help with that.",
			wantErr:  true,
		},
		{
			name:     "missing prompt",
			response: `{"style": "realistic", "vibe": "calm"}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			concept, err := ParseConcept(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a quiet lake", concept.Prompt)
		})
	}
}
