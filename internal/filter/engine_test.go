package filter

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/safetube/safetube-backend/internal/models"
)

// fakeRules is an in-memory RuleSource. Like the real store, it only hands
// out enabled rules.
type fakeRules struct {
	terms    []models.BlockedTerm
	keywords []models.BlockedKeyword
	channels []models.BlockedChannel

	termsErr    error
	keywordsErr error
	channelsErr error
}

func (f *fakeRules) ActiveTerms(ctx context.Context) ([]models.BlockedTerm, error) {
	if f.termsErr != nil {
		return nil, f.termsErr
	}
	var out []models.BlockedTerm
	for _, t := range f.terms {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRules) ActiveKeywords(ctx context.Context) ([]models.BlockedKeyword, error) {
	if f.keywordsErr != nil {
		return nil, f.keywordsErr
	}
	var out []models.BlockedKeyword
	for _, k := range f.keywords {
		if k.Enabled {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeRules) ActiveChannels(ctx context.Context) ([]models.BlockedChannel, error) {
	if f.channelsErr != nil {
		return nil, f.channelsErr
	}
	var out []models.BlockedChannel
	for _, c := range f.channels {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out, nil
}

func video(id, title, description, channelID string) models.Video {
	return models.Video{ID: id, Title: title, Description: description, ChannelID: channelID}
}

func videoIDs(videos []models.Video) []string {
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestEngine_FilterVideos(t *testing.T) {
	rules := &fakeRules{
		keywords: []models.BlockedKeyword{
			{Keyword: "scary", MatchType: models.MatchContains, Enabled: true},
			{Keyword: "gore", MatchType: models.MatchExactWord, Enabled: true},
			{Keyword: "disabled", MatchType: models.MatchContains, Enabled: false},
		},
		channels: []models.BlockedChannel{
			{ChannelID: "UC1", Enabled: true},
			{ChannelID: "UC9", Enabled: false},
		},
	}
	engine := NewEngine(rules, NewMatcher())

	videos := []models.Video{
		video("v1", "fun cartoons", "", "UC1"),          // blocked channel
		video("v2", "more fun cartoons", "", "UC2"),     // survives
		video("v3", "Scary stories", "", "UC2"),         // title CONTAINS
		video("v4", "nature show", "lots of gore", "UC2"), // description EXACT_WORD
		video("v5", "gorefest recap", "", "UC2"),        // "gore" inside a word: not exact
		video("v6", "science hour", "a scary bit", "UC2"), // CONTAINS does not apply to descriptions
		video("v7", "totally disabled fun", "", "UC9"),  // disabled rules are inert
	}

	got, err := engine.FilterVideos(context.Background(), videos)
	if err != nil {
		t.Fatalf("FilterVideos: %v", err)
	}

	want := []string{"v2", "v5", "v6", "v7"}
	if !reflect.DeepEqual(videoIDs(got), want) {
		t.Errorf("kept %v, want %v", videoIDs(got), want)
	}
}

func TestEngine_FilterVideosPreservesOrder(t *testing.T) {
	rules := &fakeRules{
		keywords: []models.BlockedKeyword{
			{Keyword: "drop", MatchType: models.MatchContains, Enabled: true},
		},
	}
	engine := NewEngine(rules, NewMatcher())

	videos := []models.Video{
		video("a", "keep one", "", "UC1"),
		video("b", "drop this", "", "UC1"),
		video("c", "keep two", "", "UC1"),
		video("d", "keep three", "", "UC1"),
	}

	got, err := engine.FilterVideos(context.Background(), videos)
	if err != nil {
		t.Fatalf("FilterVideos: %v", err)
	}
	if want := []string{"a", "c", "d"}; !reflect.DeepEqual(videoIDs(got), want) {
		t.Errorf("kept %v, want %v", videoIDs(got), want)
	}

	// Filtering an already-filtered batch changes nothing.
	again, err := engine.FilterVideos(context.Background(), got)
	if err != nil {
		t.Fatalf("FilterVideos (second pass): %v", err)
	}
	if !reflect.DeepEqual(videoIDs(again), videoIDs(got)) {
		t.Errorf("second pass kept %v, want %v", videoIDs(again), videoIDs(got))
	}
}

func TestEngine_FilterVideosNoRules(t *testing.T) {
	engine := NewEngine(&fakeRules{}, NewMatcher())

	videos := []models.Video{
		video("a", "anything", "goes", "UC1"),
		video("b", "at all", "", "UC2"),
	}
	got, err := engine.FilterVideos(context.Background(), videos)
	if err != nil {
		t.Fatalf("FilterVideos: %v", err)
	}
	if !reflect.DeepEqual(got, videos) {
		t.Errorf("empty rule set must pass everything through, got %v", videoIDs(got))
	}
}

func TestEngine_FilterVideosFailsClosed(t *testing.T) {
	wantErr := errors.New("store down")

	tests := []struct {
		name  string
		rules *fakeRules
	}{
		{"keyword load fails", &fakeRules{keywordsErr: wantErr}},
		{"channel load fails", &fakeRules{channelsErr: wantErr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.rules, NewMatcher())
			got, err := engine.FilterVideos(context.Background(), []models.Video{video("a", "x", "", "UC1")})
			if !errors.Is(err, wantErr) {
				t.Fatalf("err = %v, want wrapped %v", err, wantErr)
			}
			if got != nil {
				t.Errorf("expected no videos on rule-load failure, got %v", videoIDs(got))
			}
		})
	}
}

func TestEngine_IsSearchTermBlocked(t *testing.T) {
	rules := &fakeRules{
		terms: []models.BlockedTerm{
			{Term: "violence", Enabled: true},
			{Term: "Casino", Enabled: true},
			{Term: "retired", Enabled: false},
		},
	}
	engine := NewEngine(rules, NewMatcher())

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"direct hit", "violence", true},
		{"substring inside query", "cartoon violence compilation", true},
		{"trimmed and lowercased", "  Violence News Today  ", true},
		{"stored term lowercased too", "best casino runs", true},
		{"inside a longer word", "casinos explained", true},
		{"disabled term ignored", "retired athletes", false},
		{"clean query", "wholesome crafts", false},
		{"empty query", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.IsSearchTermBlocked(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("IsSearchTermBlocked(%q): %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("IsSearchTermBlocked(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestEngine_IsSearchTermBlockedFailsClosed(t *testing.T) {
	wantErr := errors.New("store down")
	engine := NewEngine(&fakeRules{termsErr: wantErr}, NewMatcher())

	if _, err := engine.IsSearchTermBlocked(context.Background(), "anything"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped %v", err, wantErr)
	}
}

func TestEngine_Stats(t *testing.T) {
	rules := &fakeRules{
		terms: []models.BlockedTerm{
			{Term: "a", Enabled: true},
			{Term: "b", Enabled: false},
		},
		keywords: []models.BlockedKeyword{
			{Keyword: "c", MatchType: models.MatchContains, Enabled: true},
			{Keyword: "d", MatchType: models.MatchExactWord, Enabled: true},
		},
		channels: []models.BlockedChannel{
			{ChannelID: "UC1", Enabled: true},
		},
	}
	engine := NewEngine(rules, NewMatcher())

	got, err := engine.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := models.FilterStats{ActiveTerms: 1, ActiveKeywords: 2, ActiveChannels: 1}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}
