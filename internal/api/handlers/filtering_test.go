package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/safetube/safetube-backend/internal/filter"
	"github.com/safetube/safetube-backend/internal/models"
)

type stubRules struct {
	terms    []models.BlockedTerm
	keywords []models.BlockedKeyword
	channels []models.BlockedChannel
	err      error
}

func (s *stubRules) ActiveTerms(ctx context.Context) ([]models.BlockedTerm, error) {
	return s.terms, s.err
}

func (s *stubRules) ActiveKeywords(ctx context.Context) ([]models.BlockedKeyword, error) {
	return s.keywords, s.err
}

func (s *stubRules) ActiveChannels(ctx context.Context) ([]models.BlockedChannel, error) {
	return s.channels, s.err
}

func filterHandler(rules *stubRules) *FilterHandler {
	return NewFilterHandler(filter.NewEngine(rules, filter.NewMatcher()), nil)
}

func decodeFilterResponse(t *testing.T, rec *httptest.ResponseRecorder) (bool, []models.Video) {
	t.Helper()
	var resp struct {
		Blocked bool           `json:"blocked"`
		Videos  []models.Video `json:"videos"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Blocked, resp.Videos
}

func TestFilterVideos(t *testing.T) {
	h := filterHandler(&stubRules{
		keywords: []models.BlockedKeyword{
			{Keyword: "scary", MatchType: models.MatchContains, Enabled: true},
		},
		channels: []models.BlockedChannel{
			{ChannelID: "UC-blocked", Enabled: true},
		},
	})

	body := `{"videos":[
		{"id":"v1","title":"fun cartoons","channel_id":"UC-ok"},
		{"id":"v2","title":"scary stories","channel_id":"UC-ok"},
		{"id":"v3","title":"fine title","channel_id":"UC-blocked"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/filter/videos", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.FilterVideos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	blocked, videos := decodeFilterResponse(t, rec)
	if blocked {
		t.Error("blocked = true for a request without a query")
	}
	if len(videos) != 1 || videos[0].ID != "v1" {
		t.Errorf("kept %+v, want only v1", videos)
	}
}

func TestFilterVideos_BlockedQueryShortCircuits(t *testing.T) {
	h := filterHandler(&stubRules{
		terms: []models.BlockedTerm{{Term: "violence", Enabled: true}},
	})

	body := `{"query":"cartoon violence","videos":[{"id":"v1","title":"anything","channel_id":"UC-ok"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/filter/videos", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.FilterVideos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	blocked, videos := decodeFilterResponse(t, rec)
	if !blocked {
		t.Error("blocked = false for a blocked query")
	}
	if len(videos) != 0 {
		t.Errorf("a blocked query must return no videos, got %+v", videos)
	}
}

func TestFilterVideos_InvalidBody(t *testing.T) {
	h := filterHandler(&stubRules{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/filter/videos", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.FilterVideos(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFilterVideos_RuleLoadFailureFailsClosed(t *testing.T) {
	h := filterHandler(&stubRules{err: errors.New("store down")})

	body := `{"videos":[{"id":"v1","title":"anything","channel_id":"UC-ok"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/filter/videos", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.FilterVideos(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 (client must not see the unfiltered batch)", rec.Code)
	}
}

func TestCheckSearch(t *testing.T) {
	h := filterHandler(&stubRules{
		terms: []models.BlockedTerm{{Term: "casino", Enabled: true}},
	})

	tests := []struct {
		name    string
		query   string
		blocked bool
	}{
		{"blocked term in query", "best casino runs", true},
		{"clean query", "wholesome crafts", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"query": tt.query})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/filter/search", strings.NewReader(string(body)))
			rec := httptest.NewRecorder()
			h.CheckSearch(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var resp map[string]bool
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp["blocked"] != tt.blocked {
				t.Errorf("blocked = %v, want %v", resp["blocked"], tt.blocked)
			}
		})
	}
}

func TestStats(t *testing.T) {
	h := filterHandler(&stubRules{
		terms:    []models.BlockedTerm{{Term: "a", Enabled: true}},
		keywords: []models.BlockedKeyword{{Keyword: "b", MatchType: models.MatchContains, Enabled: true}},
		channels: []models.BlockedChannel{{ChannelID: "UC1", Enabled: true}, {ChannelID: "UC2", Enabled: true}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/filter/stats", nil)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats models.FilterStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := models.FilterStats{ActiveTerms: 1, ActiveKeywords: 1, ActiveChannels: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
