package md2doc

import (
	"time"

	"github.com/google/uuid"
)

// PreviewLength is the number of characters of input kept as a preview.
const PreviewLength = 50

// previewEllipsis marks a truncated preview.
const previewEllipsis = "..."

// HistoryRecord captures one conversion for later redisplay or re-export.
// The converter never stores records; callers decide whether to persist
// them.
type HistoryRecord struct {
	ID        string
	Timestamp time.Time
	Preview   string
	Input     string
	HTML      string
	CharCount int
}

// NewHistoryRecord builds a record from the input text and its conversion
// result. The ID is a random UUID.
func NewHistoryRecord(input string, res *ConvertResult, now time.Time) HistoryRecord {
	rec := HistoryRecord{
		ID:        uuid.NewString(),
		Timestamp: now,
		Preview:   Preview(input),
		Input:     input,
	}
	if res != nil {
		rec.HTML = res.HTML
		rec.CharCount = res.CharCount
	}
	return rec
}

// Preview returns the first PreviewLength characters of text, followed by
// "..." when text is longer.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + previewEllipsis
}
