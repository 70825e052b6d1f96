package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/safetube/safetube-backend/internal/filter"
	"github.com/safetube/safetube-backend/internal/models"
)

// RulesHandler serves the parent-facing rule management endpoints.
type RulesHandler struct {
	rules *filter.Service
}

func NewRulesHandler(rules *filter.Service) *RulesHandler {
	return &RulesHandler{rules: rules}
}

// ---- Terms ----

func (h *RulesHandler) ListTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.rules.Store().ListTerms(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list terms")
		return
	}
	if terms == nil {
		terms = []models.BlockedTerm{}
	}
	writeJSON(w, http.StatusOK, terms)
}

func (h *RulesHandler) CreateTerm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term string `json:"term"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Term == "" {
		writeError(w, http.StatusBadRequest, "term required")
		return
	}

	term, err := h.rules.AddTerm(r.Context(), req.Term, clientIP(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create term")
		return
	}
	writeJSON(w, http.StatusCreated, term)
}

func (h *RulesHandler) UpdateTerm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Term    string `json:"term"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Term == "" {
		writeError(w, http.StatusBadRequest, "term required")
		return
	}

	err := h.rules.UpdateTerm(r.Context(), models.BlockedTerm{ID: id, Term: req.Term, Enabled: req.Enabled}, clientIP(r))
	if errors.Is(err, filter.ErrNotFound) {
		writeError(w, http.StatusNotFound, "term not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update term")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RulesHandler) DeleteTerm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.rules.DeleteTerm(r.Context(), id, clientIP(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete term")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RulesHandler) SetTermEnabled(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, h.rules.SetTermEnabled)
}

// ---- Keywords ----

func (h *RulesHandler) ListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.rules.Store().ListKeywords(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list keywords")
		return
	}
	if keywords == nil {
		keywords = []models.BlockedKeyword{}
	}
	writeJSON(w, http.StatusOK, keywords)
}

func (h *RulesHandler) CreateKeyword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword   string `json:"keyword"`
		MatchType string `json:"match_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword required")
		return
	}
	matchType, ok := requestMatchType(req.MatchType)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid match_type")
		return
	}

	keyword, err := h.rules.AddKeyword(r.Context(), req.Keyword, matchType, clientIP(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create keyword")
		return
	}
	writeJSON(w, http.StatusCreated, keyword)
}

func (h *RulesHandler) UpdateKeyword(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Keyword   string `json:"keyword"`
		MatchType string `json:"match_type"`
		Enabled   bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword required")
		return
	}
	matchType, ok := requestMatchType(req.MatchType)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid match_type")
		return
	}

	err := h.rules.UpdateKeyword(r.Context(), models.BlockedKeyword{
		ID:        id,
		Keyword:   req.Keyword,
		MatchType: matchType,
		Enabled:   req.Enabled,
	}, clientIP(r))
	if errors.Is(err, filter.ErrNotFound) {
		writeError(w, http.StatusNotFound, "keyword not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update keyword")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RulesHandler) DeleteKeyword(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.rules.DeleteKeyword(r.Context(), id, clientIP(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete keyword")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RulesHandler) SetKeywordEnabled(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, h.rules.SetKeywordEnabled)
}

// ---- Channels ----

func (h *RulesHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.rules.Store().ListChannels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list channels")
		return
	}
	if channels == nil {
		channels = []models.BlockedChannel{}
	}
	writeJSON(w, http.StatusOK, channels)
}

func (h *RulesHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID        string  `json:"channel_id"`
		ChannelName      string  `json:"channel_name"`
		ChannelThumbnail *string `json:"channel_thumbnail,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChannelID == "" || req.ChannelName == "" {
		writeError(w, http.StatusBadRequest, "channel_id and channel_name required")
		return
	}

	channel, err := h.rules.AddChannel(r.Context(), req.ChannelID, req.ChannelName, req.ChannelThumbnail, clientIP(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to block channel")
		return
	}
	writeJSON(w, http.StatusCreated, channel)
}

func (h *RulesHandler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.rules.DeleteChannel(r.Context(), id, clientIP(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unblock channel")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RulesHandler) DeleteChannelByChannelID(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	if channelID == "" {
		writeError(w, http.StatusBadRequest, "channel id required")
		return
	}
	if err := h.rules.DeleteChannelByChannelID(r.Context(), channelID, clientIP(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unblock channel")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RulesHandler) SetChannelEnabled(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, h.rules.SetChannelEnabled)
}

// ---- Helpers ----

func (h *RulesHandler) setEnabled(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, id int64, enabled bool, ip string) error) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := set(r.Context(), id, req.Enabled, clientIP(r))
	if errors.Is(err, filter.ErrNotFound) {
		writeError(w, http.StatusNotFound, "rule not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to toggle rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requestMatchType validates the match type in a create/update request. An
// empty value defaults to CONTAINS; anything else must name a known type.
// The silent ParseMatchType fallback is reserved for persisted rows.
func requestMatchType(raw string) (models.MatchType, bool) {
	if raw == "" {
		return models.MatchContains, true
	}
	parsed := models.ParseMatchType(raw)
	if string(parsed) != raw {
		return "", false
	}
	return parsed, true
}
