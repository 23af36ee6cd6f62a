package mqtt

import "fmt"

// Topic constants for platform events
const (
	// Image generation lifecycle (output of the reflection agent)
	TopicImageGeneratedBase = "mirrorday/image/generated"
	TopicImageGeneratedAll  = "mirrorday/image/generated/+"
	TopicImageFailedBase    = "mirrorday/image/failed"

	// Notification events (output of the scheduler agent)
	TopicReminder          = "mirrorday/notify/reminder"
	TopicWeeklySummaryBase = "mirrorday/notify/weekly"
	TopicWeeklySummaryAll  = "mirrorday/notify/weekly/+"
)

// ImageGeneratedTopic constructs the per-user topic announcing a finished image
// Pattern: mirrorday/image/generated/{user_id}
func ImageGeneratedTopic(userID string) string {
	return fmt.Sprintf("%s/%s", TopicImageGeneratedBase, userID)
}

// ImageFailedTopic constructs the per-user topic announcing a failed generation
// Pattern: mirrorday/image/failed/{user_id}
func ImageFailedTopic(userID string) string {
	return fmt.Sprintf("%s/%s", TopicImageFailedBase, userID)
}

// WeeklySummaryTopic constructs the per-user topic carrying the weekly insight summary
// Pattern: mirrorday/notify/weekly/{user_id}
func WeeklySummaryTopic(userID string) string {
	return fmt.Sprintf("%s/%s", TopicWeeklySummaryBase, userID)
}
