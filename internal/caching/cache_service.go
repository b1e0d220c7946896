package caching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dojohub/internal/logging"
	"dojohub/internal/models"
)

const keyPrefix = "dojohub:"

type CacheService interface {
	// Branding caching, keyed by academy slug for the public login page
	GetPublicBranding(ctx context.Context, slug string) (*models.PublicBranding, error)
	SetPublicBranding(ctx context.Context, slug string, branding *models.PublicBranding, ttl time.Duration) error
	DeletePublicBranding(ctx context.Context, slug string) error

	// Dashboard caching
	GetDashboard(ctx context.Context, academyID uuid.UUID) (*models.Dashboard, error)
	SetDashboard(ctx context.Context, academyID uuid.UUID, dashboard *models.Dashboard, ttl time.Duration) error
	DeleteDashboard(ctx context.Context, academyID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	ResetRateLimit(ctx context.Context, key string) error

	// ClaimOnce sets key only if absent and reports whether this call won.
	ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logging.Warn().Err(pingErr).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	} else {
		logging.Debug().Str("addr", parsedAddr).Msg("redis connection established")
	}

	return &redisCacheService{client: client}
}

func brandingKey(slug string) string {
	return fmt.Sprintf("%sbranding:%s", keyPrefix, slug)
}

func dashboardKey(academyID uuid.UUID) string {
	return fmt.Sprintf("%sdashboard:%s", keyPrefix, academyID.String())
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("%sratelimit:%s", keyPrefix, key)
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetPublicBranding(ctx context.Context, slug string) (*models.PublicBranding, error) {
	var branding models.PublicBranding
	found, err := r.getJSON(ctx, brandingKey(slug), &branding)
	if err != nil || !found {
		return nil, err
	}
	return &branding, nil
}

func (r *redisCacheService) SetPublicBranding(ctx context.Context, slug string, branding *models.PublicBranding, ttl time.Duration) error {
	return r.setJSON(ctx, brandingKey(slug), branding, ttl)
}

func (r *redisCacheService) DeletePublicBranding(ctx context.Context, slug string) error {
	return r.client.Del(ctx, brandingKey(slug)).Err()
}

func (r *redisCacheService) GetDashboard(ctx context.Context, academyID uuid.UUID) (*models.Dashboard, error) {
	var dashboard models.Dashboard
	found, err := r.getJSON(ctx, dashboardKey(academyID), &dashboard)
	if err != nil || !found {
		return nil, err
	}
	return &dashboard, nil
}

func (r *redisCacheService) SetDashboard(ctx context.Context, academyID uuid.UUID, dashboard *models.Dashboard, ttl time.Duration) error {
	return r.setJSON(ctx, dashboardKey(academyID), dashboard, ttl)
}

func (r *redisCacheService) DeleteDashboard(ctx context.Context, academyID uuid.UUID) error {
	return r.client.Del(ctx, dashboardKey(academyID)).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := rateLimitKey(key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		if err := r.client.Expire(ctx, cacheKey, window).Err(); err != nil {
			// a counter without a TTL would never reset
			if delErr := r.client.Del(ctx, cacheKey).Err(); delErr != nil {
				logging.Ctx(ctx).Error().Err(delErr).Str("key", cacheKey).Msg("failed to drop rate limit counter")
			}
			return false, fmt.Errorf("set rate limit window: %w", err)
		}
		return count > int64(limit), nil
	}

	limited := count > int64(limit)
	if limited {
		// heal counters whose first EXPIRE was lost
		if ttl, err := r.client.TTL(ctx, cacheKey).Result(); err == nil && ttl == -1 {
			if err := r.client.Expire(ctx, cacheKey, window).Err(); err != nil {
				return limited, fmt.Errorf("set rate limit window: %w", err)
			}
		}
	}
	return limited, nil
}

func (r *redisCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return r.client.Del(ctx, rateLimitKey(key)).Err()
}

func (r *redisCacheService) ClaimOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, keyPrefix+key, "1", ttl).Result()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
