package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gavin100305/Auraflix-sub000/internal/models"
)

// CachedSuggestions is the canonical suggestion list plus the metadata needed
// to distrust it: a version bumped on every successful upstream refresh and
// the time the entry was written. Readers holding an older version re-fetch.
type CachedSuggestions struct {
	Version     int64               `json:"version"`
	CachedAt    time.Time           `json:"cached_at"`
	Influencers []models.Influencer `json:"influencers"`
}

type CacheService interface {
	// Suggestion caching
	GetSuggestions(ctx context.Context, businessID uuid.UUID) (*CachedSuggestions, error)
	SetSuggestions(ctx context.Context, businessID uuid.UUID, influencers []models.Influencer, ttl time.Duration) error
	InvalidateSuggestions(ctx context.Context, businessID uuid.UUID) error

	// Connectivity probe for health checks
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port URLs as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func suggestionsKey(businessID uuid.UUID) string {
	return fmt.Sprintf("auraflix:suggestions:%s", businessID.String())
}

func versionKey(businessID uuid.UUID) string {
	return fmt.Sprintf("auraflix:suggestions:version:%s", businessID.String())
}

func (r *redisCacheService) GetSuggestions(ctx context.Context, businessID uuid.UUID) (*CachedSuggestions, error) {
	data, err := r.client.Get(ctx, suggestionsKey(businessID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var cached CachedSuggestions
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	// A newer version means a refresh landed after this entry was written;
	// treat it as a miss so the caller reloads from the store.
	current, err := r.client.Get(ctx, versionKey(businessID)).Int64()
	if err == nil && current > cached.Version {
		return nil, nil
	}

	return &cached, nil
}

func (r *redisCacheService) SetSuggestions(ctx context.Context, businessID uuid.UUID, influencers []models.Influencer, ttl time.Duration) error {
	version, err := r.client.Get(ctx, versionKey(businessID)).Int64()
	if err != nil && err != redis.Nil {
		return err
	}

	cached := CachedSuggestions{
		Version:     version,
		CachedAt:    time.Now().UTC(),
		Influencers: influencers,
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, suggestionsKey(businessID), data, ttl).Err()
}

// InvalidateSuggestions bumps the version and drops the cached entry. Called
// whenever a fresh upstream fetch succeeds.
func (r *redisCacheService) InvalidateSuggestions(ctx context.Context, businessID uuid.UUID) error {
	if err := r.client.Incr(ctx, versionKey(businessID)).Err(); err != nil {
		return err
	}
	return r.client.Del(ctx, suggestionsKey(businessID)).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
