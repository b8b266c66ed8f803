package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/ostapdev/go-shop/app/models"
	"gorm.io/gorm"
)

var orderSortFields = map[string]string{
	"createdAt": "created_at",
	"total":     "total",
	"status":    "status",
}

type OrderRepositoryImpl interface {
	GetActiveByUserID(ctx context.Context, userID string) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	CreateActive(ctx context.Context, userID string) (*models.Order, error)
	GetPaginated(ctx context.Context, userID string, sortBy, sortOrder string, limit, offset int) ([]models.Order, int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepositoryImpl {
	return &orderRepository{db: db}
}

func (r *orderRepository) GetActiveByUserID(ctx context.Context, userID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ? AND status = ?", userID, models.OrderStatusIncomplete).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("User").
		Preload("PostOffice.Settlement.Region").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// CreateActive inserts a fresh INCOMPLETE order for the user. The unique
// index on active_owner rejects a second cart; on that conflict the winner
// written by the concurrent request is fetched and returned instead.
func (r *orderRepository) CreateActive(ctx context.Context, userID string) (*models.Order, error) {
	owner := userID
	order := models.Order{
		UserID:      userID,
		Status:      models.OrderStatusIncomplete,
		ActiveOwner: &owner,
	}

	err := r.db.WithContext(ctx).Create(&order).Error
	if err != nil {
		if isDuplicateKey(err) {
			return r.GetActiveByUserID(ctx, userID)
		}
		return nil, err
	}

	order.Items = []models.OrderItem{}
	return &order, nil
}

func (r *orderRepository) GetPaginated(ctx context.Context, userID string, sortBy, sortOrder string, limit, offset int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status <> ?", models.OrderStatusIncomplete)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if column, ok := orderSortFields[sortBy]; ok {
		direction := "ASC"
		if strings.EqualFold(sortOrder, "desc") {
			direction = "DESC"
		}
		order = column + " " + direction
	}

	var orders []models.Order
	err := query.
		Preload("Items.Product").
		Preload("PostOffice.Settlement.Region").
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

// isDuplicateKey matches unique-constraint violations across the MySQL
// driver and the sqlite driver used in tests.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
