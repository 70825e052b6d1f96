package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/safetube/safetube-backend/internal/models"
)

// RuleSource provides point-in-time snapshots of the active (enabled) rules.
// The pgx Store implements it directly; CachedSource wraps it with a redis
// snapshot cache.
type RuleSource interface {
	ActiveTerms(ctx context.Context) ([]models.BlockedTerm, error)
	ActiveKeywords(ctx context.Context) ([]models.BlockedKeyword, error)
	ActiveChannels(ctx context.Context) ([]models.BlockedChannel, error)
}

// Engine decides whether videos and search queries are suppressed by the
// active rule set. It is stateless and safe for concurrent use; each call
// loads one snapshot per rule kind and then evaluates purely in memory.
//
// Rule-load failures always propagate. Treating a failed load as "no rules
// active" would silently disable a safety feature; callers are expected to
// fail closed (return fewer results rather than unfiltered ones).
type Engine struct {
	rules   RuleSource
	matcher *Matcher
}

func NewEngine(rules RuleSource, matcher *Matcher) *Engine {
	return &Engine{rules: rules, matcher: matcher}
}

// FilterVideos returns the videos that survive the active keyword and
// channel rules, preserving input order. A video is removed when its channel
// is blocked, its title matches any active keyword, or its description
// matches an active EXACT_WORD keyword.
func (e *Engine) FilterVideos(ctx context.Context, videos []models.Video) ([]models.Video, error) {
	keywords, err := e.rules.ActiveKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active keywords: %w", err)
	}
	channels, err := e.rules.ActiveChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active channels: %w", err)
	}

	blockedChannels := make(map[string]struct{}, len(channels))
	for _, c := range channels {
		blockedChannels[c.ChannelID] = struct{}{}
	}

	kept := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if _, blocked := blockedChannels[v.ChannelID]; blocked {
			continue
		}
		if e.titleBlocked(v.Title, keywords) {
			continue
		}
		if e.descriptionBlocked(v.Description, keywords) {
			continue
		}
		kept = append(kept, v)
	}
	return kept, nil
}

// IsSearchTermBlocked reports whether the query contains any active blocked
// term. The check is substring containment on the trimmed, lowercased query;
// blocked terms carry no match type. A true result must gate the search
// upstream: the blocked query should never reach the remote platform.
func (e *Engine) IsSearchTermBlocked(ctx context.Context, query string) (bool, error) {
	terms, err := e.rules.ActiveTerms(ctx)
	if err != nil {
		return false, fmt.Errorf("load active terms: %w", err)
	}

	normalized := strings.ToLower(strings.TrimSpace(query))
	for _, t := range terms {
		if strings.Contains(normalized, strings.ToLower(t.Term)) {
			return true, nil
		}
	}
	return false, nil
}

// Stats returns the number of active rules per kind.
func (e *Engine) Stats(ctx context.Context) (models.FilterStats, error) {
	terms, err := e.rules.ActiveTerms(ctx)
	if err != nil {
		return models.FilterStats{}, fmt.Errorf("load active terms: %w", err)
	}
	keywords, err := e.rules.ActiveKeywords(ctx)
	if err != nil {
		return models.FilterStats{}, fmt.Errorf("load active keywords: %w", err)
	}
	channels, err := e.rules.ActiveChannels(ctx)
	if err != nil {
		return models.FilterStats{}, fmt.Errorf("load active channels: %w", err)
	}

	return models.FilterStats{
		ActiveTerms:    len(terms),
		ActiveKeywords: len(keywords),
		ActiveChannels: len(channels),
	}, nil
}

func (e *Engine) titleBlocked(title string, keywords []models.BlockedKeyword) bool {
	for _, k := range keywords {
		if e.matcher.Matches(title, k) {
			return true
		}
	}
	return false
}

// descriptionBlocked only considers EXACT_WORD keywords: descriptions are
// long and noisy, so CONTAINS and STARTS_WITH rules would over-suppress.
func (e *Engine) descriptionBlocked(description string, keywords []models.BlockedKeyword) bool {
	for _, k := range keywords {
		if k.MatchType != models.MatchExactWord {
			continue
		}
		if e.matcher.Matches(description, k) {
			return true
		}
	}
	return false
}
