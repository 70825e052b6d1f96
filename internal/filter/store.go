package filter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safetube/safetube-backend/internal/models"
)

// Store persists the three rule kinds in Postgres. Active queries only see
// committed rows; enabled rules are the only ones the engine acts on.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ---- Blocked terms ----

func (s *Store) ListTerms(ctx context.Context) ([]models.BlockedTerm, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, term, enabled, created_at
		 FROM blocked_terms ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	defer rows.Close()
	return scanTerms(rows)
}

func (s *Store) ActiveTerms(ctx context.Context) ([]models.BlockedTerm, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, term, enabled, created_at
		 FROM blocked_terms WHERE enabled ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("active terms: %w", err)
	}
	defer rows.Close()
	return scanTerms(rows)
}

func (s *Store) AddTerm(ctx context.Context, term string) (*models.BlockedTerm, error) {
	var t models.BlockedTerm
	err := s.db.QueryRow(ctx,
		`INSERT INTO blocked_terms (term) VALUES ($1)
		 RETURNING id, term, enabled, created_at`,
		term,
	).Scan(&t.ID, &t.Term, &t.Enabled, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert term: %w", err)
	}
	return &t, nil
}

func (s *Store) UpdateTerm(ctx context.Context, t models.BlockedTerm) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE blocked_terms SET term = $1, enabled = $2 WHERE id = $3`,
		t.Term, t.Enabled, t.ID)
	if err != nil {
		return fmt.Errorf("update term: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTerm(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM blocked_terms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete term: %w", err)
	}
	return nil
}

func (s *Store) SetTermEnabled(ctx context.Context, id int64, enabled bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE blocked_terms SET enabled = $1 WHERE id = $2`, enabled, id)
	if err != nil {
		return fmt.Errorf("set term enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- Blocked keywords ----

func (s *Store) ListKeywords(ctx context.Context) ([]models.BlockedKeyword, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, keyword, match_type, enabled, created_at
		 FROM blocked_keywords ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()
	return scanKeywords(rows)
}

func (s *Store) ActiveKeywords(ctx context.Context) ([]models.BlockedKeyword, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, keyword, match_type, enabled, created_at
		 FROM blocked_keywords WHERE enabled ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("active keywords: %w", err)
	}
	defer rows.Close()
	return scanKeywords(rows)
}

func (s *Store) AddKeyword(ctx context.Context, keyword string, matchType models.MatchType) (*models.BlockedKeyword, error) {
	var k models.BlockedKeyword
	var rawType string
	err := s.db.QueryRow(ctx,
		`INSERT INTO blocked_keywords (keyword, match_type) VALUES ($1, $2)
		 RETURNING id, keyword, match_type, enabled, created_at`,
		keyword, string(matchType),
	).Scan(&k.ID, &k.Keyword, &rawType, &k.Enabled, &k.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert keyword: %w", err)
	}
	k.MatchType = models.ParseMatchType(rawType)
	return &k, nil
}

func (s *Store) UpdateKeyword(ctx context.Context, k models.BlockedKeyword) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE blocked_keywords SET keyword = $1, match_type = $2, enabled = $3 WHERE id = $4`,
		k.Keyword, string(k.MatchType), k.Enabled, k.ID)
	if err != nil {
		return fmt.Errorf("update keyword: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteKeyword(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM blocked_keywords WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete keyword: %w", err)
	}
	return nil
}

func (s *Store) SetKeywordEnabled(ctx context.Context, id int64, enabled bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE blocked_keywords SET enabled = $1 WHERE id = $2`, enabled, id)
	if err != nil {
		return fmt.Errorf("set keyword enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- Blocked channels ----

func (s *Store) ListChannels(ctx context.Context) ([]models.BlockedChannel, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, channel_id, channel_name, channel_thumbnail, enabled, created_at
		 FROM blocked_channels ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()
	return scanChannels(rows)
}

func (s *Store) ActiveChannels(ctx context.Context) ([]models.BlockedChannel, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, channel_id, channel_name, channel_thumbnail, enabled, created_at
		 FROM blocked_channels WHERE enabled ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("active channels: %w", err)
	}
	defer rows.Close()
	return scanChannels(rows)
}

// AddChannel blocks a channel. Blocking an already-blocked channel is
// idempotent: the row is keyed on the external channel_id and refreshed in
// place rather than duplicated.
func (s *Store) AddChannel(ctx context.Context, channelID, channelName string, thumbnail *string) (*models.BlockedChannel, error) {
	var c models.BlockedChannel
	err := s.db.QueryRow(ctx,
		`INSERT INTO blocked_channels (channel_id, channel_name, channel_thumbnail)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (channel_id) DO UPDATE
		 SET channel_name = EXCLUDED.channel_name,
		     channel_thumbnail = EXCLUDED.channel_thumbnail,
		     enabled = true
		 RETURNING id, channel_id, channel_name, channel_thumbnail, enabled, created_at`,
		channelID, channelName, thumbnail,
	).Scan(&c.ID, &c.ChannelID, &c.ChannelName, &c.ChannelThumbnail, &c.Enabled, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert channel: %w", err)
	}
	return &c, nil
}

func (s *Store) DeleteChannel(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM blocked_channels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

// DeleteChannelByChannelID unblocks by the external platform identifier,
// the handle the client has when viewing a video.
func (s *Store) DeleteChannelByChannelID(ctx context.Context, channelID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM blocked_channels WHERE channel_id = $1`, channelID)
	if err != nil {
		return fmt.Errorf("delete channel by channel_id: %w", err)
	}
	return nil
}

func (s *Store) SetChannelEnabled(ctx context.Context, id int64, enabled bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE blocked_channels SET enabled = $1 WHERE id = $2`, enabled, id)
	if err != nil {
		return fmt.Errorf("set channel enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsChannelBlocked reports whether an enabled block exists for the external
// channel id. Drives the "already blocked" state in the client UI.
func (s *Store) IsChannelBlocked(ctx context.Context, channelID string) (bool, error) {
	var blocked bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM blocked_channels WHERE channel_id = $1 AND enabled)`,
		channelID,
	).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("channel blocked check: %w", err)
	}
	return blocked, nil
}

// ---- Scan helpers ----

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTerms(rows pgxRows) ([]models.BlockedTerm, error) {
	var terms []models.BlockedTerm
	for rows.Next() {
		var t models.BlockedTerm
		if err := rows.Scan(&t.ID, &t.Term, &t.Enabled, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

func scanKeywords(rows pgxRows) ([]models.BlockedKeyword, error) {
	var keywords []models.BlockedKeyword
	for rows.Next() {
		var k models.BlockedKeyword
		var rawType string
		if err := rows.Scan(&k.ID, &k.Keyword, &rawType, &k.Enabled, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		k.MatchType = models.ParseMatchType(rawType)
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

func scanChannels(rows pgxRows) ([]models.BlockedChannel, error) {
	var channels []models.BlockedChannel
	for rows.Next() {
		var c models.BlockedChannel
		if err := rows.Scan(&c.ID, &c.ChannelID, &c.ChannelName, &c.ChannelThumbnail, &c.Enabled, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}
