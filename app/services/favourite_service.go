package services

import (
	"context"
	"fmt"
	"log"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
)

type FavouriteService struct {
	favouriteRepo repositories.FavouriteRepositoryImpl
	productRepo   repositories.ProductRepositoryImpl
	cache         Cache
}

func NewFavouriteService(
	favouriteRepo repositories.FavouriteRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	cache Cache,
) *FavouriteService {
	return &FavouriteService{
		favouriteRepo: favouriteRepo,
		productRepo:   productRepo,
		cache:         cache,
	}
}

// GetFavourites returns the user's favourite products.
func (s *FavouriteService) GetFavourites(ctx context.Context, userID string) ([]models.Product, error) {
	cacheKey := CacheKeyUserFavourite(userID)
	var cached []models.Product
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("FavouriteService: cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return cached, nil
	}

	favourites, err := s.favouriteRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favourites: %w", err)
	}

	products := []models.Product{}
	if favourites != nil {
		products = favourites.Products
	}
	if err := s.cache.Set(ctx, cacheKey, products, DefaultCacheTTL); err != nil {
		log.Printf("FavouriteService: cache write failed for %s: %v", cacheKey, err)
	}
	return products, nil
}

// AddFavourite puts a product into the user's favourites. Adding a product
// twice is rejected rather than silently ignored.
func (s *FavouriteService) AddFavourite(ctx context.Context, userID, productID string) ([]models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil || product.IsRemoved {
		return nil, apperrors.ErrProductNotFound
	}

	favourites, err := s.favouriteRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favourites: %w", err)
	}
	if favourites == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if containsProduct(favourites.Products, productID) {
		return nil, apperrors.ErrAlreadyInFavourite
	}

	if err := s.favouriteRepo.AddProduct(ctx, favourites, product); err != nil {
		return nil, fmt.Errorf("failed to add favourite: %w", err)
	}

	s.invalidateFavourites(ctx, userID)
	return s.GetFavourites(ctx, userID)
}

// RemoveFavourite drops a product from the user's favourites.
func (s *FavouriteService) RemoveFavourite(ctx context.Context, userID, productID string) ([]models.Product, error) {
	favourites, err := s.favouriteRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get favourites: %w", err)
	}
	if favourites == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if !containsProduct(favourites.Products, productID) {
		return nil, apperrors.ErrNotInFavourites
	}

	if err := s.favouriteRepo.RemoveProduct(ctx, favourites, &models.Product{ID: productID}); err != nil {
		return nil, fmt.Errorf("failed to remove favourite: %w", err)
	}

	s.invalidateFavourites(ctx, userID)
	return s.GetFavourites(ctx, userID)
}

func (s *FavouriteService) invalidateFavourites(ctx context.Context, userID string) {
	if err := s.cache.Del(ctx, CacheKeyUserFavourite(userID)); err != nil {
		log.Printf("FavouriteService: cache invalidation failed: %v", err)
	}
}

func containsProduct(products []models.Product, productID string) bool {
	for _, p := range products {
		if p.ID == productID {
			return true
		}
	}
	return false
}
