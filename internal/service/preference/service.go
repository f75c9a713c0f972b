package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/faithbridge/notify/internal/model"
	prefrepo "github.com/faithbridge/notify/internal/repository/preference"
)

type preferenceRepo interface {
	Get(ctx context.Context, recipientID string) (model.Preferences, error)
	Upsert(ctx context.Context, recipientID string, prefs model.Preferences) error
}

type cache interface {
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
}

// Service is the authoritative read/write path for recipient
// preferences, with a redis read-through cache in front of the store.
type Service struct {
	repo     preferenceRepo
	cache    cache
	strategy retry.Strategy
}

func NewService(repo preferenceRepo, cache cache, strategy retry.Strategy) *Service {
	return &Service{repo: repo, cache: cache, strategy: strategy}
}

func cacheKey(recipientID string) string {
	return "prefs:" + recipientID
}

// Get returns the recipient's preferences. A recipient who never stored
// any gets the fully-specified default record; this is the named
// fallback path, never a silent side effect of an error handler.
func (s *Service) Get(ctx context.Context, recipientID string) (model.Preferences, error) {
	if s.cache != nil {
		raw, err := s.cache.GetWithRetry(ctx, s.strategy, cacheKey(recipientID))
		if err != nil && !errors.Is(err, redis.Nil) {
			zlog.Logger.Warn().Err(err).Str("recipient", recipientID).Msg("preference cache read failed")
		}
		if err == nil {
			var prefs model.Preferences
			if jsonErr := json.Unmarshal([]byte(raw), &prefs); jsonErr == nil {
				return prefs, nil
			}
		}
	}

	prefs, err := s.repo.Get(ctx, recipientID)
	if errors.Is(err, prefrepo.ErrPreferencesNotFound) {
		return model.DefaultPreferences(), nil
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}

	s.cacheSet(ctx, recipientID, prefs)

	return prefs, nil
}

// Update merges a partial change into the stored record and persists
// the result. Absent stored preferences merge into the default record.
func (s *Service) Update(ctx context.Context, recipientID string, update model.PreferencesUpdate) (model.Preferences, error) {
	current, err := s.repo.Get(ctx, recipientID)
	if errors.Is(err, prefrepo.ErrPreferencesNotFound) {
		current = model.DefaultPreferences()
	} else if err != nil {
		return model.Preferences{}, fmt.Errorf("load preferences for update: %w", err)
	}

	merged := update.Apply(current)

	if err := s.repo.Upsert(ctx, recipientID, merged); err != nil {
		return model.Preferences{}, fmt.Errorf("store preferences: %w", err)
	}

	s.cacheSet(ctx, recipientID, merged)

	return merged, nil
}

func (s *Service) cacheSet(ctx context.Context, recipientID string, prefs model.Preferences) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return
	}

	if err := s.cache.SetWithRetry(ctx, s.strategy, cacheKey(recipientID), string(raw)); err != nil {
		zlog.Logger.Warn().Err(err).Str("recipient", recipientID).Msg("preference cache write failed")
	}
}
