package domain

import (
	"strings"
	"time"
)

// FeedbackLabel is a thumbs up or down rating.
type FeedbackLabel string

// Feedback labels.
const (
	FeedbackUp   FeedbackLabel = "up"
	FeedbackDown FeedbackLabel = "down"
)

// IsValid returns true if the label is recognised.
func (l FeedbackLabel) IsValid() bool {
	return l == FeedbackUp || l == FeedbackDown
}

// MaxFeedbackAnswerRunes bounds the answer text stored with feedback.
const MaxFeedbackAnswerRunes = 200

// RecentFeedbackLimit is how many records FeedbackStats.Recent holds.
const RecentFeedbackLimit = 5

// FeedbackRecord is one append-only feedback entry.
type FeedbackRecord struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Label         FeedbackLabel `json:"label"`
	Question      string        `json:"question"`
	Answer        string        `json:"answer"`
	UsedRetrieval bool          `json:"used_rag"`
	Sources       []string      `json:"sources"`
}

// SourcesField returns the sources joined by "|".
func (r FeedbackRecord) SourcesField() string {
	return strings.Join(r.Sources, "|")
}

// SplitSourcesField is the inverse of SourcesField.
func SplitSourcesField(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}

// NewFeedbackRecord builds a record from an interaction, truncating the answer.
func NewFeedbackRecord(id string, at time.Time, label FeedbackLabel, in Interaction) FeedbackRecord {
	return FeedbackRecord{
		ID:            id,
		Timestamp:     at,
		Label:         label,
		Question:      in.Question,
		Answer:        TruncateRunes(in.Answer, MaxFeedbackAnswerRunes),
		UsedRetrieval: in.UsedRetrieval,
		Sources:       append([]string(nil), in.Sources...),
	}
}

// FeedbackStats aggregates stored feedback.
type FeedbackStats struct {
	Total  int              `json:"total"`
	Ups    int              `json:"up"`
	Downs  int              `json:"down"`
	Recent []FeedbackRecord `json:"recent"`
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
