package validate

import (
	"errors"
	"fmt"
	"strings"

	"prepsearch/internal/domain"
)

// DefaultMinTextLength is the minimum body length a record must have to be
// worth chunking.
const DefaultMinTextLength = 50

var (
	ErrMissingField  = errors.New("missing required field")
	ErrRemovedBody   = errors.New("body is removed, deleted, or empty")
	ErrTitleEchoBody = errors.New("title and body are identical")
	ErrBodyTooShort  = errors.New("body below minimum length")
)

var removalMarkers = map[string]struct{}{
	"[removed]": {},
	"[deleted]": {},
	"":          {},
}

// Check reports why a record must not enter the pipeline, or nil if it may.
// It keeps no state; callers log the reason and drop the record.
func Check(rec domain.Record, minTextLength int) error {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	required := []struct {
		name  string
		value string
	}{
		{"id", rec.ID},
		{"title", rec.Title},
		{"text", rec.Text},
		{"origin", rec.Origin},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	text := strings.TrimSpace(rec.Text)
	lowered := strings.ToLower(text)
	if _, removed := removalMarkers[lowered]; removed {
		return ErrRemovedBody
	}
	if strings.ToLower(strings.TrimSpace(rec.Title)) == lowered {
		return ErrTitleEchoBody
	}
	if len(text) < minTextLength {
		return fmt.Errorf("%w: %d < %d", ErrBodyTooShort, len(text), minTextLength)
	}
	return nil
}

// OK is the boolean form of Check for callers that do not need the reason.
func OK(rec domain.Record, minTextLength int) bool {
	return Check(rec, minTextLength) == nil
}
