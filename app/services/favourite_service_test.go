package services

import (
	"context"
	"testing"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newFavouriteService(db *gorm.DB) *FavouriteService {
	return NewFavouriteService(
		repositories.NewFavouriteRepository(db),
		repositories.NewProductRepository(db),
		newMemoryCache(),
	)
}

func TestFavouriteAddRemove(t *testing.T) {
	db := newTestDB(t)
	svc := newFavouriteService(db)
	user := createTestUser(t, db, "fan")
	product := createTestProduct(t, db, "Товар", "2.00")
	ctx := context.Background()

	products, err := svc.AddFavourite(ctx, user.ID, product.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, product.ID, products[0].ID)

	_, err = svc.AddFavourite(ctx, user.ID, product.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInFavourite)

	products, err = svc.RemoveFavourite(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = svc.RemoveFavourite(ctx, user.ID, product.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotInFavourites)
}

func TestFavouriteRejectsArchivedProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newFavouriteService(db)
	user := createTestUser(t, db, "fan")
	product := createTestProduct(t, db, "Архівний", "2.00")
	require.NoError(t, db.Model(product).Update("is_removed", true).Error)

	_, err := svc.AddFavourite(context.Background(), user.ID, product.ID)
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}
