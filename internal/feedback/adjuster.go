package feedback

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorday/mirrorday-platform/internal/emotion"
)

// Rating is a user's verdict on one generated image.
type Rating string

const (
	RatingYes       Rating = "yes"
	RatingPartially Rating = "partially"
	RatingNo        Rating = "no"
)

// ValidRating reports whether s is one of the accepted rating values.
func ValidRating(s string) bool {
	switch Rating(s) {
	case RatingYes, RatingPartially, RatingNo:
		return true
	}
	return false
}

// PreferenceRecord accumulates feedback for one (user, emotion) pair.
// Preferred style and palette are only captured from positively rated images.
type PreferenceRecord struct {
	UserID           uuid.UUID            `json:"user_id"`
	Emotion          emotion.EmotionLabel `json:"emotion"`
	PreferredStyle   *string              `json:"preferred_style,omitempty"`
	PreferredPalette *string              `json:"preferred_palette,omitempty"`
	PositiveCount    int                  `json:"positive_count"`
	NegativeCount    int                  `json:"negative_count"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// Override carries learned style preferences into the style builder. A nil
// field means "leave that default unchanged"; the distinction between absent
// and empty matters, which is why both fields are pointers.
type Override struct {
	PreferredStyle   *string
	PreferredPalette *string
}

// ShouldOverride decides whether accumulated feedback justifies overriding
// the default style mapping. Majority rule: positives must strictly exceed
// negatives. Returns nil when no record exists or the majority test fails.
func ShouldOverride(record *PreferenceRecord) *Override {
	if record == nil {
		return nil
	}
	if record.PositiveCount <= record.NegativeCount {
		return nil
	}

	return &Override{
		PreferredStyle:   record.PreferredStyle,
		PreferredPalette: record.PreferredPalette,
	}
}

// ApplyRating applies one rating event to a preference record and returns
// the updated record. A nil record means no feedback exists yet for the
// (user, emotion) pair; a fresh record is seeded from this rating.
//
// Positive ratings increment the positive count and capture the style and
// palette actually used for the rated image. Negative ratings increment the
// negative count and leave preferences alone. "partially" is recorded for
// audit upstream but is a neutral signal here: neither counter moves.
func ApplyRating(record *PreferenceRecord, userID uuid.UUID, label emotion.EmotionLabel, rating Rating, styleUsed, paletteUsed string) (*PreferenceRecord, error) {
	if !ValidRating(string(rating)) {
		return nil, fmt.Errorf("invalid rating %q", rating)
	}

	if record == nil {
		record = &PreferenceRecord{
			UserID:  userID,
			Emotion: label,
		}
	}

	switch rating {
	case RatingYes:
		record.PositiveCount++
		if styleUsed != "" {
			record.PreferredStyle = &styleUsed
		}
		if paletteUsed != "" {
			record.PreferredPalette = &paletteUsed
		}
	case RatingNo:
		record.NegativeCount++
	case RatingPartially:
		// Neutral signal: audited by the caller, no counter change.
	}

	record.UpdatedAt = time.Now().UTC()

	return record, nil
}
