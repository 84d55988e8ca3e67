package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"appointment-scheduler/core/cache"
	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/logger"
	"appointment-scheduler/core/metrics"
	"appointment-scheduler/modules/auth/entity"
	"appointment-scheduler/modules/auth/repository"

	"github.com/google/uuid"
)

type cachedToken struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenStore keeps issued tokens in the database with a read-through cache in front.
// Cache failures degrade to database lookups. When a revoked token could not be
// evicted, cache hits are verified against the database until every entry written
// before the failure has expired.
type TokenStore struct {
	repo     repository.TokenRepositoryInterface
	cache    cache.Cache
	cacheTTL time.Duration
	now      func() time.Time

	mu          sync.Mutex
	verifyUntil time.Time
}

func NewTokenStore(repo repository.TokenRepositoryInterface, c cache.Cache, cacheTTL time.Duration) *TokenStore {
	if c == nil {
		c = cache.NewNoopCache()
	}
	return &TokenStore{repo: repo, cache: c, cacheTTL: cacheTTL, now: time.Now}
}

func (s *TokenStore) Save(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	if err := s.repo.Add(ctx, &entity.Token{Token: token, UserID: userID, ExpiresAt: expiresAt}); err != nil {
		return err
	}
	s.writeCache(ctx, token, cachedToken{UserID: userID, ExpiresAt: expiresAt})
	return nil
}

// Lookup returns the owner of a live token, or uuid.Nil when the token is unknown or expired.
func (s *TokenStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	now := s.now()

	raw, cached := s.cache.Get(ctx, constants.RedisKeyToken+token)
	if cached {
		var ct cachedToken
		valid := json.Unmarshal([]byte(raw), &ct) == nil && ct.ExpiresAt.After(now)
		switch {
		case !valid:
			s.cache.Delete(ctx, constants.RedisKeyToken+token)
			cached = false
		case !s.verifying(now):
			metrics.TokenCacheLookups.WithLabelValues("cache").Inc()
			return ct.UserID, nil
		}
	}

	stored, err := s.repo.FindValid(ctx, token, now)
	if err != nil {
		return uuid.Nil, err
	}
	if stored == nil {
		if cached {
			s.cache.Delete(ctx, constants.RedisKeyToken+token)
		}
		metrics.TokenCacheLookups.WithLabelValues("miss").Inc()
		return uuid.Nil, nil
	}

	metrics.TokenCacheLookups.WithLabelValues("store").Inc()
	s.writeCache(ctx, token, cachedToken{UserID: stored.UserID, ExpiresAt: stored.ExpiresAt})
	return stored.UserID, nil
}

// Revoke deletes the token row first so a concurrent lookup cannot re-cache it.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, token); err != nil {
		return err
	}
	s.evict(ctx, token)
	return nil
}

// RevokeUser deletes every token owned by userID and evicts them from the cache.
func (s *TokenStore) RevokeUser(ctx context.Context, userID uuid.UUID) (int, error) {
	tokens, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, token := range tokens {
		s.evict(ctx, token)
	}
	return len(tokens), nil
}

func (s *TokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func (s *TokenStore) evict(ctx context.Context, token string) {
	if s.cache.Delete(ctx, constants.RedisKeyToken+token) {
		return
	}

	window := s.cacheTTL
	if window <= 0 {
		window = constants.TokenTTL
	}
	until := s.now().Add(window)

	s.mu.Lock()
	if until.After(s.verifyUntil) {
		s.verifyUntil = until
	}
	s.mu.Unlock()
	logger.Warn("TokenStore:Evict", "verify_until", until)
}

func (s *TokenStore) verifying(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Before(s.verifyUntil)
}

func (s *TokenStore) writeCache(ctx context.Context, token string, ct cachedToken) {
	ttl := ct.ExpiresAt.Sub(s.now())
	if s.cacheTTL > 0 && s.cacheTTL < ttl {
		ttl = s.cacheTTL
	}
	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(ct)
	if err != nil {
		logger.Warn("TokenStore:WriteCache:Marshal", "error", err)
		return
	}
	s.cache.Set(ctx, constants.RedisKeyToken+token, string(raw), ttl)
}
