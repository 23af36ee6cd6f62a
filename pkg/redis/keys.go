package redis

import "fmt"

// Key construction helpers

// DailyCountKey returns the key for a user's per-day generation counter (string)
// Pattern: limit:daily:{user_id}:{date}, date formatted YYYY-MM-DD
func DailyCountKey(userID, date string) string {
	return fmt.Sprintf("limit:daily:%s:%s", userID, date)
}

// PreferenceKey returns the cache key for a (user, emotion) preference record (string, JSON)
// Pattern: pref:{user_id}:{emotion}
func PreferenceKey(userID, emotion string) string {
	return fmt.Sprintf("pref:%s:%s", userID, emotion)
}

// ExplanationKey returns the cache key for a generated image's explanation (string, JSON)
// Pattern: explain:{image_id}
func ExplanationKey(imageID string) string {
	return fmt.Sprintf("explain:%s", imageID)
}
