package models

import "time"

// MatchType defines how a blocked keyword is compared against video text.
type MatchType string

const (
	// MatchExactWord matches only complete words.
	// Example: "news" matches "News" but not "newscaster".
	MatchExactWord MatchType = "EXACT_WORD"

	// MatchContains matches the keyword anywhere in the text.
	// Example: "news" matches "newscaster", "fake news", etc.
	MatchContains MatchType = "CONTAINS"

	// MatchStartsWith matches if any word starts with the keyword.
	// Example: "news" matches "newscaster" but not "breaking-news".
	MatchStartsWith MatchType = "STARTS_WITH"
)

// ParseMatchType maps a persisted match-type string to a MatchType.
// Unknown values fall back to CONTAINS instead of erroring: a corrupted
// match_type column should degrade one rule's strictness, not break the
// whole active set.
func ParseMatchType(raw string) MatchType {
	switch MatchType(raw) {
	case MatchExactWord, MatchContains, MatchStartsWith:
		return MatchType(raw)
	default:
		return MatchContains
	}
}

// BlockedTerm is a fully blocked search query substring. Any search query
// containing the term (case-insensitive) is rejected before it reaches the
// remote video platform.
type BlockedTerm struct {
	ID        int64     `json:"id" db:"id"`
	Term      string    `json:"term" db:"term"`
	Enabled   bool      `json:"enabled" db:"enabled"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BlockedKeyword suppresses videos whose title or description matches the
// keyword under the configured match type.
type BlockedKeyword struct {
	ID        int64     `json:"id" db:"id"`
	Keyword   string    `json:"keyword" db:"keyword"`
	MatchType MatchType `json:"match_type" db:"match_type"`
	Enabled   bool      `json:"enabled" db:"enabled"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BlockedChannel suppresses every video from a channel. ChannelID is the
// video platform's opaque channel identifier and is unique per row.
type BlockedChannel struct {
	ID               int64     `json:"id" db:"id"`
	ChannelID        string    `json:"channel_id" db:"channel_id"`
	ChannelName      string    `json:"channel_name" db:"channel_name"`
	ChannelThumbnail *string   `json:"channel_thumbnail,omitempty" db:"channel_thumbnail"`
	Enabled          bool      `json:"enabled" db:"enabled"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// FilterStats reports how many rules of each kind are currently active.
type FilterStats struct {
	ActiveTerms    int `json:"active_terms"`
	ActiveKeywords int `json:"active_keywords"`
	ActiveChannels int `json:"active_channels"`
}
