package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/safetube/safetube-backend/internal/filter"
	"github.com/safetube/safetube-backend/internal/models"
)

// FilterHandler serves the device-facing filtering endpoints. These are the
// hot path: the client calls them once per fetched batch and once per search
// query.
type FilterHandler struct {
	engine *filter.Engine
	store  *filter.Store
}

func NewFilterHandler(engine *filter.Engine, store *filter.Store) *FilterHandler {
	return &FilterHandler{engine: engine, store: store}
}

type filterVideosResponse struct {
	// Blocked distinguishes "query was blocked" from "filtering left
	// nothing": a blocked search must render differently than empty results.
	Blocked bool           `json:"blocked"`
	Videos  []models.Video `json:"videos"`
}

// FilterVideos filters a batch of videos against the active rules. When the
// optional query is present and blocked, the batch is not evaluated at all
// and an empty blocked result is returned.
func (h *FilterHandler) FilterVideos(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Videos []models.Video `json:"videos"`
		Query  string         `json:"query,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query != "" {
		blocked, err := h.engine.IsSearchTermBlocked(r.Context(), req.Query)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "filter rules unavailable")
			return
		}
		if blocked {
			writeJSON(w, http.StatusOK, filterVideosResponse{Blocked: true, Videos: []models.Video{}})
			return
		}
	}

	filtered, err := h.engine.FilterVideos(r.Context(), req.Videos)
	if err != nil {
		// Fail closed: the client must not fall back to the unfiltered batch.
		writeError(w, http.StatusServiceUnavailable, "filter rules unavailable")
		return
	}

	writeJSON(w, http.StatusOK, filterVideosResponse{Blocked: false, Videos: filtered})
}

// CheckSearch reports whether a query is blocked, so the client can skip the
// remote search call entirely for blocked queries.
func (h *FilterHandler) CheckSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	blocked, err := h.engine.IsSearchTermBlocked(r.Context(), req.Query)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "filter rules unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"blocked": blocked})
}

// Stats returns the active rule counts.
func (h *FilterHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "filter rules unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ChannelBlocked reports whether an enabled block exists for the external
// channel id, driving the "already blocked" state in the client UI.
func (h *FilterHandler) ChannelBlocked(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	if channelID == "" {
		writeError(w, http.StatusBadRequest, "channel id required")
		return
	}

	blocked, err := h.store.IsChannelBlocked(r.Context(), channelID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "filter rules unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"blocked": blocked})
}
