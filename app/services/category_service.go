package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/ostapdev/go-shop/app/utils/slug"
)

type CategoryService struct {
	categoryRepo repositories.CategoryRepositoryImpl
	bucket       Uploader
	cache        Cache
}

func NewCategoryService(categoryRepo repositories.CategoryRepositoryImpl, bucket Uploader, cache Cache) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, bucket: bucket, cache: cache}
}

// GetCategories returns every category, name-sorted. The full list is small
// and read constantly, so it lives under a single cache key.
func (s *CategoryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	cacheKey := CacheKeyCategories()
	var cached []models.Category
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("CategoryService: cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return cached, nil
	}

	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, categories, DefaultCacheTTL); err != nil {
		log.Printf("CategoryService: cache write failed for %s: %v", cacheKey, err)
	}
	return categories, nil
}

// CreateCategory adds a category. The slug is derived from the name, so two
// names that transliterate identically collide.
func (s *CategoryService) CreateCategory(ctx context.Context, name string, image io.Reader, contentType string) (*models.Category, error) {
	categorySlug := slug.Make(name)

	existing, err := s.categoryRepo.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrCategoryAlreadyExists
	}

	imageName := models.PlaceholderImage
	if image != nil {
		imageName, err = s.bucket.Upload(ctx, image, contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store category image: %w", err)
		}
	}

	category := &models.Category{
		Name:  name,
		Slug:  categorySlug,
		Image: imageName,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategories(ctx)

	return category, nil
}

// UpdateCategory renames a category and re-derives its slug. The default
// bucket is immutable.
func (s *CategoryService) UpdateCategory(ctx context.Context, id, name string, image io.Reader, contentType string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, apperrors.ErrCategoryNotFound
	}
	if category.Immutable {
		return nil, apperrors.ErrForbidden
	}

	newSlug := slug.Make(name)
	if newSlug != category.Slug {
		existing, err := s.categoryRepo.GetBySlug(ctx, newSlug)
		if err != nil {
			return nil, fmt.Errorf("failed to look up category: %w", err)
		}
		if existing != nil {
			return nil, apperrors.ErrCategoryAlreadyExists
		}
	}

	if image != nil {
		oldImage := category.Image
		newImage, err := s.bucket.Upload(ctx, image, contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store category image: %w", err)
		}
		category.Image = newImage
		if oldImage != models.PlaceholderImage {
			if err := s.bucket.Remove(ctx, oldImage); err != nil {
				log.Printf("CategoryService: failed to drop old image %s: %v", oldImage, err)
			}
		}
	}

	category.Name = name
	category.Slug = newSlug
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCategories(ctx)

	return category, nil
}

// DeleteCategory removes a category and moves its products into the default
// bucket. The default bucket itself cannot be deleted.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return apperrors.ErrCategoryNotFound
	}
	if category.Immutable {
		return apperrors.ErrForbidden
	}

	fallback, err := s.categoryRepo.GetBySlug(ctx, slug.Make(models.DefaultCategoryName))
	if err != nil {
		return fmt.Errorf("failed to resolve default category: %w", err)
	}
	if fallback == nil {
		return fmt.Errorf("default category is missing")
	}

	if err := s.categoryRepo.DeleteAndReassign(ctx, id, fallback.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if category.Image != models.PlaceholderImage {
		if err := s.bucket.Remove(ctx, category.Image); err != nil {
			log.Printf("CategoryService: failed to drop image %s: %v", category.Image, err)
		}
	}

	s.invalidateCategories(ctx)
	return nil
}

// invalidateCategories also drops item list entries, which filter by
// category slug.
func (s *CategoryService) invalidateCategories(ctx context.Context) {
	if err := s.cache.Del(ctx, CacheKeyCategories()); err != nil {
		log.Printf("CategoryService: cache invalidation failed: %v", err)
	}
	if err := s.cache.DelPattern(ctx, CacheItemListPrefix); err != nil {
		log.Printf("CategoryService: cache pattern invalidation failed for %s: %v", CacheItemListPrefix, err)
	}
}
