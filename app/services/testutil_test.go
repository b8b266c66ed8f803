package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/models/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrations.AutoMigrate(db))
	return db
}

// memoryCache is an in-process Cache for tests, mirroring the JSON
// round-trip of the real one.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(payload, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
	return nil
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *memoryCache) DelPattern(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	email := name + "@example.com"
	user := &models.User{
		Name:  name,
		Email: &email,
		AuthMethods: []models.AuthMethod{
			{Name: models.AuthFlowBasic},
		},
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Favourites{UserID: user.ID}).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, title string, price string) *models.Product {
	t.Helper()

	var category models.Category
	require.NoError(t, db.First(&category, "name = ?", models.DefaultCategoryName).Error)

	product := &models.Product{
		Title:      title,
		Price:      decimal.RequireFromString(price),
		Image:      models.PlaceholderImage,
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
