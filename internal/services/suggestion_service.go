package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gavin100305/Auraflix-sub000/internal/caching"
	"github.com/gavin100305/Auraflix-sub000/internal/models"
	"github.com/gavin100305/Auraflix-sub000/internal/repositories"
	"github.com/gavin100305/Auraflix-sub000/internal/suggestions"
)

const suggestionCacheTTL = 15 * time.Minute

// SuggestionService serves canonical suggestion lists and keeps the stored
// payload fresh.
type SuggestionService interface {
	// GetForBusiness returns the canonical list for a business, rewriting
	// the stored payload to canonical form the first time it is read raw.
	GetForBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Influencer, error)

	// Refresh re-fetches suggestions from the recommender. The stored
	// payload is only replaced on upstream success.
	Refresh(ctx context.Context, user *models.BusinessUser) error
}

type suggestionService struct {
	userRepo    repositories.BusinessUserRepository
	recommender RecommenderClient
	cache       caching.CacheService
	archive     ArchiveService
}

// NewSuggestionService creates a new suggestion service. Cache and archive
// are optional: a nil archive skips payload archiving, a nil cache disables
// the read cache.
func NewSuggestionService(userRepo repositories.BusinessUserRepository, recommender RecommenderClient, cache caching.CacheService, archive ArchiveService) SuggestionService {
	return &suggestionService{
		userRepo:    userRepo,
		recommender: recommender,
		cache:       cache,
		archive:     archive,
	}
}

func (s *suggestionService) GetForBusiness(ctx context.Context, businessID uuid.UUID) ([]models.Influencer, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSuggestions(ctx, businessID)
		if err != nil {
			log.Printf("WARN: suggestion cache read failed for %s: %v", businessID, err)
		} else if cached != nil {
			return cached.Influencers, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	normalized := suggestions.Normalize(user.SuggestedInfluencers)

	// First read of a raw payload: archive the original and persist the
	// canonical form so later reads skip the conversion.
	kind := suggestions.Classify(user.SuggestedInfluencers)
	if kind != suggestions.KindCanonical && kind != suggestions.KindEmpty {
		s.archiveRaw(ctx, businessID, user)
		if err := s.userRepo.UpdateSuggestions(ctx, businessID, suggestions.Marshal(normalized)); err != nil {
			log.Printf("WARN: failed to persist normalized suggestions for %s: %v", businessID, err)
		}
	}

	if s.cache != nil {
		if err := s.cache.SetSuggestions(ctx, businessID, normalized, suggestionCacheTTL); err != nil {
			log.Printf("WARN: suggestion cache write failed for %s: %v", businessID, err)
		}
	}

	return normalized, nil
}

func (s *suggestionService) Refresh(ctx context.Context, user *models.BusinessUser) error {
	raw, err := s.recommender.FetchSuggestions(ctx, user.Profile())
	if err != nil {
		// Keep last known good: the stored payload is untouched.
		return fmt.Errorf("suggestion refresh: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	s.archiveRaw(ctx, user.ID, &models.BusinessUser{ID: user.ID, SuggestedInfluencers: raw})

	if err := s.userRepo.UpdateSuggestions(ctx, user.ID, raw); err != nil {
		return fmt.Errorf("suggestion refresh: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateSuggestions(ctx, user.ID); err != nil {
			log.Printf("WARN: suggestion cache invalidation failed for %s: %v", user.ID, err)
		}
	}
	return nil
}

func (s *suggestionService) archiveRaw(ctx context.Context, businessID uuid.UUID, user *models.BusinessUser) {
	if s.archive == nil {
		return
	}
	if err := s.archive.ArchivePayload(ctx, businessID, user.SuggestedInfluencers); err != nil {
		log.Printf("WARN: failed to archive raw payload for %s: %v", businessID, err)
	}
}
