package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ostapdev/go-shop/app/repositories"
)

// DirectoryFetcher pulls the full office directory from the postal provider.
type DirectoryFetcher interface {
	FetchDirectory(ctx context.Context) ([]repositories.DirectoryEntry, error)
}

// PostSyncService refreshes the persisted shipping directory from the
// provider. The whole directory is fetched before anything is written, so a
// provider failure mid-fetch never touches the store.
type PostSyncService struct {
	fetcher  DirectoryFetcher
	postRepo repositories.PostRepositoryImpl
	cache    Cache
}

func NewPostSyncService(fetcher DirectoryFetcher, postRepo repositories.PostRepositoryImpl, cache Cache) *PostSyncService {
	return &PostSyncService{fetcher: fetcher, postRepo: postRepo, cache: cache}
}

func (s *PostSyncService) Run(ctx context.Context) error {
	entries, err := s.fetcher.FetchDirectory(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch office directory: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("office directory came back empty")
	}

	if err := s.postRepo.ApplyDirectory(ctx, entries); err != nil {
		return fmt.Errorf("failed to apply office directory: %w", err)
	}

	if err := s.cache.DelPattern(ctx, CachePostPrefix); err != nil {
		log.Printf("PostSyncService: cache invalidation failed: %v", err)
	}
	return nil
}

// RunScheduled is the cron entrypoint. A failed run is logged and swallowed;
// the stale directory keeps serving until the next attempt.
func (s *PostSyncService) RunScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	log.Println("PostSyncService: directory sync started")
	if err := s.Run(ctx); err != nil {
		log.Printf("PostSyncService: directory sync failed: %v", err)
		return
	}
	log.Printf("PostSyncService: directory sync finished in %s", time.Since(start).Round(time.Millisecond))
}
