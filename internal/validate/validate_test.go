package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepsearch/internal/domain"
)

func validRecord() domain.Record {
	return domain.Record{
		ID:     "abc123",
		Title:  "How I prepared for my systems interview",
		Text:   strings.Repeat("Practice a lot. ", 10),
		Origin: "cscareerquestions",
	}
}

func TestCheckAcceptsWellFormedRecord(t *testing.T) {
	require.NoError(t, Check(validRecord(), 0))
}

func TestCheckMissingFields(t *testing.T) {
	for name, mutate := range map[string]func(*domain.Record){
		"id":     func(r *domain.Record) { r.ID = "" },
		"title":  func(r *domain.Record) { r.Title = "" },
		"text":   func(r *domain.Record) { r.Text = "" },
		"origin": func(r *domain.Record) { r.Origin = "" },
	} {
		t.Run(name, func(t *testing.T) {
			rec := validRecord()
			mutate(&rec)
			assert.ErrorIs(t, Check(rec, 0), ErrMissingField)
		})
	}
}

func TestCheckRemovedBody(t *testing.T) {
	for _, body := range []string{"[removed]", "[deleted]", "  [Removed]  ", "   "} {
		rec := validRecord()
		rec.Text = body
		assert.ErrorIs(t, Check(rec, 0), ErrRemovedBody, "body %q", body)
	}
}

func TestCheckTitleEchoesBody(t *testing.T) {
	rec := validRecord()
	rec.Title = "Interview Tips"
	rec.Text = "  interview tips "
	assert.ErrorIs(t, Check(rec, 0), ErrTitleEchoBody)
}

func TestCheckBodyTooShort(t *testing.T) {
	rec := validRecord()
	rec.Text = strings.Repeat("x", 49)
	assert.ErrorIs(t, Check(rec, 50), ErrBodyTooShort)

	rec.Text = strings.Repeat("x", 51)
	assert.NoError(t, Check(rec, 50))
}

func TestCheckRemovedBodyRegardlessOfOtherFields(t *testing.T) {
	rec := domain.Record{
		ID:      "id",
		Title:   "a perfectly fine title",
		Text:    "[removed]",
		Origin:  "r",
		Role:    "SWE",
		Company: "Initech",
	}
	assert.ErrorIs(t, Check(rec, 0), ErrRemovedBody)
}

func TestOK(t *testing.T) {
	assert.True(t, OK(validRecord(), 0))
	rec := validRecord()
	rec.Text = "[deleted]"
	assert.False(t, OK(rec, 0))
}
