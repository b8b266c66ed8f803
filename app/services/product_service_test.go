package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/ostapdev/go-shop/app/utils/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProductService(db *gorm.DB) (*ProductService, *fakeBucket) {
	bucket := &fakeBucket{}
	svc := NewProductService(
		repositories.NewProductRepository(db),
		repositories.NewCategoryRepository(db),
		repositories.NewFavouriteRepository(db),
		bucket,
		newMemoryCache(),
	)
	return svc, bucket
}

func defaultCategoryID(t *testing.T, db *gorm.DB) string {
	t.Helper()
	var category models.Category
	require.NoError(t, db.First(&category, "name = ?", models.DefaultCategoryName).Error)
	return category.ID
}

func TestCreateProductWithImage(t *testing.T) {
	db := newTestDB(t)
	svc, bucket := newProductService(db)
	ctx := context.Background()

	input := ProductInput{
		Title:      "Мікрохвильовка",
		Price:      decimal.RequireFromString("129.99"),
		CategoryID: defaultCategoryID(t, db),
	}
	product, err := svc.CreateProduct(ctx, input, strings.NewReader("img"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, 1, bucket.uploads)
	assert.NotEqual(t, models.PlaceholderImage, product.Image)

	// Without an image the placeholder is used and nothing is uploaded.
	input.Title = "Без фото"
	plain, err := svc.CreateProduct(ctx, input, nil, "")
	require.NoError(t, err)
	assert.Equal(t, models.PlaceholderImage, plain.Image)
	assert.Equal(t, 1, bucket.uploads)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newProductService(db)

	_, err := svc.CreateProduct(context.Background(), ProductInput{
		Title:      "Без категорії",
		Price:      decimal.New(1, 0),
		CategoryID: "00000000-0000-0000-0000-000000000000",
	}, nil, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)
}

// A product created without a category lands in the default bucket rather
// than being rejected.
func TestCreateProductDefaultsCategory(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newProductService(db)

	product, err := svc.CreateProduct(context.Background(), ProductInput{
		Title: "Без категорії",
		Price: decimal.RequireFromString("15.00"),
	}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, defaultCategoryID(t, db), product.CategoryID)
}

// Archived products are served to admins but never cached, so unarchiving
// shows up without waiting out a stale entry.
func TestGetArchivedProductNotCached(t *testing.T) {
	db := newTestDB(t)
	cache := newMemoryCache()
	svc := NewProductService(
		repositories.NewProductRepository(db),
		repositories.NewCategoryRepository(db),
		repositories.NewFavouriteRepository(db),
		&fakeBucket{},
		cache,
	)
	ctx := context.Background()

	archived := createTestProduct(t, db, "Архівний", "7.00")
	require.NoError(t, db.Model(archived).Update("is_removed", true).Error)

	view, err := svc.GetProduct(ctx, archived.ID, "")
	require.NoError(t, err)
	assert.True(t, view.IsRemoved)

	cache.mu.Lock()
	_, cachedArchived := cache.entries[CacheKeyItem(archived.ID)]
	cache.mu.Unlock()
	assert.False(t, cachedArchived)

	live := createTestProduct(t, db, "Живий", "2.00")
	_, err = svc.GetProduct(ctx, live.ID, "")
	require.NoError(t, err)

	cache.mu.Lock()
	_, cachedLive := cache.entries[CacheKeyItem(live.ID)]
	cache.mu.Unlock()
	assert.True(t, cachedLive)
}

func TestArchiveProductSwapsImage(t *testing.T) {
	db := newTestDB(t)
	svc, bucket := newProductService(db)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, ProductInput{
		Title:      "Полиця",
		Price:      decimal.RequireFromString("10.00"),
		CategoryID: defaultCategoryID(t, db),
	}, strings.NewReader("img"), "image/png")
	require.NoError(t, err)
	storedImage := product.Image

	archived, err := svc.ArchiveProduct(ctx, product.ID)
	require.NoError(t, err)

	assert.True(t, archived.IsRemoved)
	assert.Equal(t, models.PlaceholderImage, archived.Image)
	assert.Contains(t, bucket.removed, storedImage)

	restored, err := svc.UnarchiveProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsRemoved)
}

func TestGetProductFavouriteFlag(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newProductService(db)
	user := createTestUser(t, db, "fan")
	product := createTestProduct(t, db, "Улюблене", "3.00")
	ctx := context.Background()

	anonymous, err := svc.GetProduct(ctx, product.ID, "")
	require.NoError(t, err)
	assert.False(t, anonymous.IsInFavourite)

	favouriteRepo := repositories.NewFavouriteRepository(db)
	favourites, err := favouriteRepo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, favouriteRepo.AddProduct(ctx, favourites, product))

	view, err := svc.GetProduct(ctx, product.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, view.IsInFavourite)
}

func TestGetProductsFiltering(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newProductService(db)
	ctx := context.Background()

	createTestProduct(t, db, "Дешевий товар", "5.00")
	createTestProduct(t, db, "Дорогий товар", "500.00")
	archived := createTestProduct(t, db, "Архівний", "7.00")
	require.NoError(t, db.Model(archived).Update("is_removed", true).Error)

	priceMax := decimal.RequireFromString("100.00")
	cheap, meta, err := svc.GetProducts(ctx, repositories.ProductFilter{PriceMax: &priceMax}, pagination.Query{})
	require.NoError(t, err)
	require.Len(t, cheap, 1)
	assert.Equal(t, "Дешевий товар", cheap[0].Title)
	assert.EqualValues(t, 1, meta.TotalItems)

	all, _, err := svc.GetProducts(ctx, repositories.ProductFilter{}, pagination.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	withRemoved, _, err := svc.GetProducts(ctx, repositories.ProductFilter{ShowRemoved: true}, pagination.Query{})
	require.NoError(t, err)
	assert.Len(t, withRemoved, 3)
}
