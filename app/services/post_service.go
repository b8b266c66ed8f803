package services

import (
	"context"
	"fmt"
	"log"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
)

// PostService serves the shipping directory reads. The directory only moves
// on sync runs, so the entries carry no TTL and are dropped wholesale after
// a successful sync.
type PostService struct {
	postRepo repositories.PostRepositoryImpl
	cache    Cache
}

func NewPostService(postRepo repositories.PostRepositoryImpl, cache Cache) *PostService {
	return &PostService{postRepo: postRepo, cache: cache}
}

func (s *PostService) GetRegions(ctx context.Context) ([]models.Region, error) {
	cacheKey := CacheKeyRegions()
	var cached []models.Region
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("PostService: cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return cached, nil
	}

	regions, err := s.postRepo.GetRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, regions, 0); err != nil {
		log.Printf("PostService: cache write failed for %s: %v", cacheKey, err)
	}
	return regions, nil
}

func (s *PostService) GetSettlements(ctx context.Context, regionID uint) ([]models.Settlement, error) {
	region, err := s.postRepo.GetRegionByID(ctx, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve region: %w", err)
	}
	if region == nil {
		return nil, apperrors.ErrRegionNotFound
	}

	cacheKey := CacheKeySettlements(regionID)
	var cached []models.Settlement
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("PostService: cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return cached, nil
	}

	settlements, err := s.postRepo.GetSettlementsByRegion(ctx, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, settlements, 0); err != nil {
		log.Printf("PostService: cache write failed for %s: %v", cacheKey, err)
	}
	return settlements, nil
}

// GetOffices lists the working offices of a settlement. Offices that went
// out of service stay persisted but are never offered for checkout.
func (s *PostService) GetOffices(ctx context.Context, settlementID uint) ([]models.PostOffice, error) {
	settlement, err := s.postRepo.GetSettlementByID(ctx, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve settlement: %w", err)
	}
	if settlement == nil {
		return nil, apperrors.ErrSettlementNotFound
	}

	cacheKey := CacheKeyOffices(settlementID)
	var cached []models.PostOffice
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("PostService: cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return cached, nil
	}

	offices, err := s.postRepo.GetWorkingOffices(ctx, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, offices, 0); err != nil {
		log.Printf("PostService: cache write failed for %s: %v", cacheKey, err)
	}
	return offices, nil
}
