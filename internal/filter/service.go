package filter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/safetube/safetube-backend/internal/audit"
	"github.com/safetube/safetube-backend/internal/models"
)

// EventRulesChanged is emitted on every rule mutation. Subscribed endpoints
// (a companion dashboard, a second guardian's device) re-sync on receipt.
const EventRulesChanged = "filter.rules_changed"

// invalidator drops cached rule snapshots after a mutation.
type invalidator interface {
	Invalidate(ctx context.Context)
}

// notifier fans a rule-change event out to subscribed endpoints.
type notifier interface {
	Dispatch(ctx context.Context, event string, payload interface{}) error
}

// Service is the management surface for filter rules: every mutation goes
// through the store, then invalidates the active-rule snapshots, records an
// audit entry and notifies webhook subscribers. Audit and notification
// failures are logged, not returned; the mutation itself already committed.
type Service struct {
	store    *Store
	cache    invalidator
	audit    *audit.Service
	notifier notifier
}

func NewService(store *Store, cache invalidator, auditSvc *audit.Service, n notifier) *Service {
	return &Service{store: store, cache: cache, audit: auditSvc, notifier: n}
}

// Store exposes the underlying read paths for list endpoints.
func (s *Service) Store() *Store {
	return s.store
}

// ---- Terms ----

func (s *Service) AddTerm(ctx context.Context, term, ip string) (*models.BlockedTerm, error) {
	t, err := s.store.AddTerm(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, err
	}
	s.ruleChanged(ctx, "term.created", "blocked_term", &t.ID, map[string]interface{}{"term": t.Term}, ip)
	return t, nil
}

func (s *Service) UpdateTerm(ctx context.Context, t models.BlockedTerm, ip string) error {
	if err := s.store.UpdateTerm(ctx, t); err != nil {
		return err
	}
	s.ruleChanged(ctx, "term.updated", "blocked_term", &t.ID, map[string]interface{}{"term": t.Term, "enabled": t.Enabled}, ip)
	return nil
}

func (s *Service) DeleteTerm(ctx context.Context, id int64, ip string) error {
	if err := s.store.DeleteTerm(ctx, id); err != nil {
		return err
	}
	s.ruleChanged(ctx, "term.deleted", "blocked_term", &id, nil, ip)
	return nil
}

func (s *Service) SetTermEnabled(ctx context.Context, id int64, enabled bool, ip string) error {
	if err := s.store.SetTermEnabled(ctx, id, enabled); err != nil {
		return err
	}
	s.ruleChanged(ctx, "term.toggled", "blocked_term", &id, map[string]interface{}{"enabled": enabled}, ip)
	return nil
}

// ---- Keywords ----

func (s *Service) AddKeyword(ctx context.Context, keyword string, matchType models.MatchType, ip string) (*models.BlockedKeyword, error) {
	k, err := s.store.AddKeyword(ctx, strings.TrimSpace(keyword), matchType)
	if err != nil {
		return nil, err
	}
	s.ruleChanged(ctx, "keyword.created", "blocked_keyword", &k.ID,
		map[string]interface{}{"keyword": k.Keyword, "match_type": string(k.MatchType)}, ip)
	return k, nil
}

func (s *Service) UpdateKeyword(ctx context.Context, k models.BlockedKeyword, ip string) error {
	if err := s.store.UpdateKeyword(ctx, k); err != nil {
		return err
	}
	s.ruleChanged(ctx, "keyword.updated", "blocked_keyword", &k.ID,
		map[string]interface{}{"keyword": k.Keyword, "match_type": string(k.MatchType), "enabled": k.Enabled}, ip)
	return nil
}

func (s *Service) DeleteKeyword(ctx context.Context, id int64, ip string) error {
	if err := s.store.DeleteKeyword(ctx, id); err != nil {
		return err
	}
	s.ruleChanged(ctx, "keyword.deleted", "blocked_keyword", &id, nil, ip)
	return nil
}

func (s *Service) SetKeywordEnabled(ctx context.Context, id int64, enabled bool, ip string) error {
	if err := s.store.SetKeywordEnabled(ctx, id, enabled); err != nil {
		return err
	}
	s.ruleChanged(ctx, "keyword.toggled", "blocked_keyword", &id, map[string]interface{}{"enabled": enabled}, ip)
	return nil
}

// ---- Channels ----

func (s *Service) AddChannel(ctx context.Context, channelID, channelName string, thumbnail *string, ip string) (*models.BlockedChannel, error) {
	c, err := s.store.AddChannel(ctx, channelID, channelName, thumbnail)
	if err != nil {
		return nil, err
	}
	s.ruleChanged(ctx, "channel.created", "blocked_channel", &c.ID,
		map[string]interface{}{"channel_id": c.ChannelID, "channel_name": c.ChannelName}, ip)
	return c, nil
}

func (s *Service) DeleteChannel(ctx context.Context, id int64, ip string) error {
	if err := s.store.DeleteChannel(ctx, id); err != nil {
		return err
	}
	s.ruleChanged(ctx, "channel.deleted", "blocked_channel", &id, nil, ip)
	return nil
}

func (s *Service) DeleteChannelByChannelID(ctx context.Context, channelID, ip string) error {
	if err := s.store.DeleteChannelByChannelID(ctx, channelID); err != nil {
		return err
	}
	s.ruleChanged(ctx, "channel.deleted", "blocked_channel", nil, map[string]interface{}{"channel_id": channelID}, ip)
	return nil
}

func (s *Service) SetChannelEnabled(ctx context.Context, id int64, enabled bool, ip string) error {
	if err := s.store.SetChannelEnabled(ctx, id, enabled); err != nil {
		return err
	}
	s.ruleChanged(ctx, "channel.toggled", "blocked_channel", &id, map[string]interface{}{"enabled": enabled}, ip)
	return nil
}

func (s *Service) ruleChanged(ctx context.Context, action, resourceType string, resourceID *int64, details map[string]interface{}, ip string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.audit != nil {
		if err := s.audit.Log(ctx, audit.LogEntry{
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Details:      details,
			IPAddress:    ip,
		}); err != nil {
			slog.Warn("audit log failed", "action", action, "error", err)
		}
	}
	if s.notifier != nil {
		payload := map[string]interface{}{"action": action, "resource_type": resourceType}
		if resourceID != nil {
			payload["resource_id"] = *resourceID
		}
		if err := s.notifier.Dispatch(ctx, EventRulesChanged, payload); err != nil {
			slog.Warn("rule change notification failed", "action", action, "error", err)
		}
	}
}
