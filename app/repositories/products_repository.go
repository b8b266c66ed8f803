package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/ostapdev/go-shop/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductFilter carries the catalog listing parameters. Sort fields are
// validated against an allow-list before they reach SQL.
type ProductFilter struct {
	Search        string
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	CategorySlugs []string
	ShowRemoved   bool
	SortBy        string
	SortOrder     string
	Limit         int
	Offset        int
}

var productSortFields = map[string]string{
	"title":     "title",
	"price":     "price",
	"createdAt": "created_at",
}

type ProductRepositoryImpl interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetPaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SetRemoved(ctx context.Context, id string, removed bool, image string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepositoryImpl {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if !filter.ShowRemoved {
		query = query.Where("is_removed = ?", false)
	}
	if filter.Search != "" {
		keyword := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ?", keyword)
	}
	if filter.PriceMin != nil {
		query = query.Where("price >= ?", filter.PriceMin)
	}
	if filter.PriceMax != nil {
		query = query.Where("price <= ?", filter.PriceMax)
	}
	if len(filter.CategorySlugs) > 0 {
		query = query.
			Joins("JOIN categories c ON c.id = products.category_id").
			Where("c.slug IN ?", filter.CategorySlugs)
	}

	return query
}

func (r *productRepository) GetPaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if column, ok := productSortFields[filter.SortBy]; ok {
		direction := "ASC"
		if strings.EqualFold(filter.SortOrder, "desc") {
			direction = "DESC"
		}
		order = column + " " + direction
	}

	var products []models.Product
	err := r.filtered(ctx, filter).
		Preload("Category").
		Order(order).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) SetRemoved(ctx context.Context, id string, removed bool, image string) error {
	updates := map[string]interface{}{"is_removed": removed}
	if image != "" {
		updates["image"] = image
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}
