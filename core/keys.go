package core

import (
	"encoding/json"
	"strconv"
)

// Legacy storage key layout, preserved for compatibility with the original
// browser-storage schema.
const (
	KeyQuizCompleted   = "quizCompleted"
	KeySurveyCompleted = "surveyCompleted"
	KeyChallenges      = "manualDelMarChallenges"
	KeyTasks           = "abcAdventureTasks"
	KeyBadges          = "userBadges"
	KeyRankName        = "userRankName"
	KeyPoints          = "userPoints"
)

// ParseFlag decodes the presence+string boolean encoding ("true"/absent).
func ParseFlag(raw string) bool {
	return raw == "true"
}

// FormatFlag encodes a boolean flag in the legacy string encoding.
func FormatFlag(v bool) string {
	if v {
		return "true"
	}
	return ""
}

// ParseChallenges decodes a challenge list. Malformed input degrades to an
// empty list, never an error.
func ParseChallenges(raw string) []Challenge {
	if raw == "" {
		return nil
	}
	var out []Challenge
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// ParseTasks decodes a learning-task list, degrading to empty on bad input.
// Out-of-range ratings are clamped to unrated rather than trusted.
func ParseTasks(raw string) []LearningTask {
	if raw == "" {
		return nil
	}
	var out []LearningTask
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	for i := range out {
		if ValidateRating(out[i].Rating) != nil {
			out[i].Rating = 0
		}
	}
	return out
}

// ParseBadgeRecords decodes the persisted badge list, degrading to empty.
func ParseBadgeRecords(raw string) []BadgeRecord {
	if raw == "" {
		return nil
	}
	var out []BadgeRecord
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// ParsePoints decodes the decimal string score encoding, degrading to 0.
func ParsePoints(raw string) int64 {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// FormatPoints encodes a score as a decimal string.
func FormatPoints(v int64) string {
	return strconv.FormatInt(v, 10)
}

// EncodeChallenges marshals a challenge list for storage.
func EncodeChallenges(cs []Challenge) string {
	b, err := json.Marshal(cs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// EncodeTasks marshals a learning-task list for storage.
func EncodeTasks(ts []LearningTask) string {
	b, err := json.Marshal(ts)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// EncodeBadgeRecords marshals the badge list for storage.
func EncodeBadgeRecords(rs []BadgeRecord) string {
	b, err := json.Marshal(rs)
	if err != nil {
		return "[]"
	}
	return string(b)
}
