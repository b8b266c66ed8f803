package services

import (
	"context"
	"io"
	"testing"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeBucket records uploads and removals instead of talking to object
// storage.
type fakeBucket struct {
	uploads int
	removed []string
}

func (b *fakeBucket) Upload(ctx context.Context, r io.Reader, contentType string) (string, error) {
	b.uploads++
	return "object-" + contentType, nil
}

func (b *fakeBucket) Remove(ctx context.Context, name string) error {
	b.removed = append(b.removed, name)
	return nil
}

func newCategoryService(db *gorm.DB) (*CategoryService, *fakeBucket) {
	bucket := &fakeBucket{}
	return NewCategoryService(repositories.NewCategoryRepository(db), bucket, newMemoryCache()), bucket
}

func TestCreateCategorySlugConflict(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newCategoryService(db)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, "Ноутбуки", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "noutbuky", created.Slug)

	// Same transliteration result collides even though names differ.
	_, err = svc.CreateCategory(ctx, "НОУТБУКИ", nil, "")
	assert.ErrorIs(t, err, apperrors.ErrCategoryAlreadyExists)
}

func TestUpdateCategoryImmutable(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newCategoryService(db)
	ctx := context.Background()

	var fallback models.Category
	require.NoError(t, db.First(&fallback, "name = ?", models.DefaultCategoryName).Error)

	_, err := svc.UpdateCategory(ctx, fallback.ID, "Щось інше", nil, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = svc.DeleteCategory(ctx, fallback.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeleteCategoryReassignsProducts(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newCategoryService(db)
	ctx := context.Background()

	doomed, err := svc.CreateCategory(ctx, "Тимчасова", nil, "")
	require.NoError(t, err)

	product := createTestProduct(t, db, "Сирота", "1.00")
	require.NoError(t, db.Model(product).Update("category_id", doomed.ID).Error)

	require.NoError(t, svc.DeleteCategory(ctx, doomed.ID))

	var fallback models.Category
	require.NoError(t, db.First(&fallback, "name = ?", models.DefaultCategoryName).Error)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, fallback.ID, reloaded.CategoryID)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Where("id = ?", doomed.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetCategoriesUsesCache(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newCategoryService(db)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, "Кава", nil, "")
	require.NoError(t, err)

	first, err := svc.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// A write that bypasses the service is invisible until invalidation.
	require.NoError(t, db.Create(&models.Category{Name: "Чай", Slug: "chai"}).Error)
	cached, err := svc.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	_, err = svc.CreateCategory(ctx, "Вода", nil, "")
	require.NoError(t, err)
	fresh, err := svc.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 4)
}
