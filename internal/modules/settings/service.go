// README: Settings service: Redis-backed JSON document with env defaults.
package settings

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"

	"chauffeur/internal/config"
	"chauffeur/internal/logger"
)

const settingsKey = "app:settings"

// Service reads and writes the application settings document. Settings
// are a free-form JSON object so the admin dashboard can evolve without
// schema migrations; typed accessors live at the call sites.
type Service struct {
	redis *redis.Client
	cfg   config.Config
	log   logger.ILogger
}

func NewService(redisClient *redis.Client, cfg config.Config, log logger.ILogger) *Service {
	return &Service{redis: redisClient, cfg: cfg, log: log}
}

// Defaults builds the settings document used when no admin overrides exist.
func (s *Service) Defaults() map[string]any {
	return map[string]any{
		"business": map[string]any{
			"name":  s.cfg.Business.Name,
			"phone": s.cfg.Business.Phone,
		},
		"pricingTeam": map[string]any{
			"phone": s.cfg.PricingTeam.Phone,
		},
		"quotes": map[string]any{
			"validityHours":      s.cfg.Quote.ValidityHours,
			"distanceFormat":     "km",
			"autoSendToCustomer": true,
		},
	}
}

// All returns the full settings document, falling back to defaults when
// Redis is empty or unavailable.
func (s *Service) All(ctx context.Context) map[string]any {
	raw, err := s.redis.Get(ctx, settingsKey).Result()
	if err == redis.Nil {
		defaults := s.Defaults()
		if data, merr := json.Marshal(defaults); merr == nil {
			_ = s.redis.Set(ctx, settingsKey, data, 0).Err()
		}
		return defaults
	}
	if err != nil {
		s.log.Error("settings read failed, using defaults", logger.Error(err))
		return s.Defaults()
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		s.log.Error("settings document corrupt, using defaults", logger.Error(err))
		return s.Defaults()
	}
	return doc
}

// Get resolves a dot-separated path ("pricingTeam.phone") in the
// settings document. Missing paths return nil.
func (s *Service) Get(ctx context.Context, path string) (any, error) {
	var value any = s.All(ctx)
	for _, key := range strings.Split(path, ".") {
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, nil
		}
		value = obj[key]
	}
	return value, nil
}

// GetString resolves a path to a string, or def when unset/not a string.
func (s *Service) GetString(ctx context.Context, path, def string) string {
	v, err := s.Get(ctx, path)
	if err != nil || v == nil {
		return def
	}
	str, err := cast.ToStringE(v)
	if err != nil || str == "" {
		return def
	}
	return str
}

// Update merges top-level sections into the stored document and returns
// the result. Nested keys within a replaced section are overwritten.
func (s *Service) Update(ctx context.Context, updates map[string]any) (map[string]any, error) {
	doc := s.All(ctx)
	for k, v := range updates {
		doc[k] = v
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, settingsKey, data, 0).Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
