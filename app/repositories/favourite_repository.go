package repositories

import (
	"context"
	"errors"

	"github.com/ostapdev/go-shop/app/models"
	"gorm.io/gorm"
)

type FavouriteRepositoryImpl interface {
	GetByUserID(ctx context.Context, userID string) (*models.Favourites, error)
	AddProduct(ctx context.Context, favourites *models.Favourites, product *models.Product) error
	RemoveProduct(ctx context.Context, favourites *models.Favourites, product *models.Product) error
}

type favouriteRepository struct {
	db *gorm.DB
}

func NewFavouriteRepository(db *gorm.DB) FavouriteRepositoryImpl {
	return &favouriteRepository{db: db}
}

func (r *favouriteRepository) GetByUserID(ctx context.Context, userID string) (*models.Favourites, error) {
	var favourites models.Favourites
	err := r.db.WithContext(ctx).
		Preload("Products").
		First(&favourites, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &favourites, nil
}

func (r *favouriteRepository) AddProduct(ctx context.Context, favourites *models.Favourites, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(favourites).
		Association("Products").
		Append(product)
}

func (r *favouriteRepository) RemoveProduct(ctx context.Context, favourites *models.Favourites, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(favourites).
		Association("Products").
		Delete(product)
}
