package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/safetube/safetube-backend/internal/models"
)

// fakeRows feeds canned row values through the pgxRows seam. Each inner slice
// is one row's scan destinations, in column order.
type fakeRows struct {
	rows [][]any
	pos  int
	err  error
}

func (f *fakeRows) Next() bool {
	if f.pos >= len(f.rows) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.pos-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[i].(int64)
		case *string:
			*p = row[i].(string)
		case *bool:
			*p = row[i].(bool)
		case *time.Time:
			*p = row[i].(time.Time)
		case **string:
			if row[i] == nil {
				*p = nil
			} else {
				s := row[i].(string)
				*p = &s
			}
		}
	}
	return nil
}

func (f *fakeRows) Err() error { return f.err }

func TestScanKeywords_NormalizesMatchType(t *testing.T) {
	now := time.Now()
	rows := &fakeRows{rows: [][]any{
		{int64(1), "news", "EXACT_WORD", true, now},
		{int64(2), "scary", "CONTAINS", true, now},
		// A corrupted column degrades to CONTAINS rather than failing the set.
		{int64(3), "odd", "LEGACY_VALUE", false, now},
	}}

	keywords, err := scanKeywords(rows)
	if err != nil {
		t.Fatalf("scanKeywords: %v", err)
	}
	if len(keywords) != 3 {
		t.Fatalf("got %d keywords, want 3", len(keywords))
	}

	want := []models.MatchType{models.MatchExactWord, models.MatchContains, models.MatchContains}
	for i, k := range keywords {
		if k.MatchType != want[i] {
			t.Errorf("keyword %d match type = %q, want %q", k.ID, k.MatchType, want[i])
		}
	}
}

func TestScanChannels_NullThumbnail(t *testing.T) {
	now := time.Now()
	rows := &fakeRows{rows: [][]any{
		{int64(1), "UC1", "Some Channel", nil, true, now},
		{int64(2), "UC2", "Other Channel", "https://example.com/t.jpg", true, now},
	}}

	channels, err := scanChannels(rows)
	if err != nil {
		t.Fatalf("scanChannels: %v", err)
	}
	if channels[0].ChannelThumbnail != nil {
		t.Errorf("channel UC1 thumbnail = %v, want nil", *channels[0].ChannelThumbnail)
	}
	if channels[1].ChannelThumbnail == nil || *channels[1].ChannelThumbnail != "https://example.com/t.jpg" {
		t.Errorf("channel UC2 thumbnail not preserved: %v", channels[1].ChannelThumbnail)
	}
}

func TestScanTerms_RowError(t *testing.T) {
	wantErr := errors.New("connection reset")
	rows := &fakeRows{
		rows: [][]any{{int64(1), "violence", true, time.Now()}},
		err:  wantErr,
	}

	if _, err := scanTerms(rows); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
