package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/ostapdev/go-shop/app/utils/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Identity is the resolved "who is asking" of a request. Guest checkout
// resolves its contact into a concrete user id before the order engine runs,
// so the engine only ever sees one owner concept.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

type OrderService struct {
	db            *gorm.DB
	orderRepo     repositories.OrderRepositoryImpl
	orderItemRepo repositories.OrderItemRepositoryImpl
	productRepo   repositories.ProductRepositoryImpl
	userRepo      repositories.UserRepositoryImpl
	postRepo      repositories.PostRepositoryImpl
	cache         Cache
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repositories.OrderRepositoryImpl,
	orderItemRepo repositories.OrderItemRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
	userRepo repositories.UserRepositoryImpl,
	postRepo repositories.PostRepositoryImpl,
	cache Cache,
) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		postRepo:      postRepo,
		cache:         cache,
	}
}

// GetCurrentOrder returns the user's INCOMPLETE order, creating an empty one
// if none exists. The unique active-owner column keeps this race-safe: of two
// concurrent creates one loses and picks up the winner's row.
func (s *OrderService) GetCurrentOrder(ctx context.Context, userID string) (*models.Order, error) {
	cacheKey := CacheKeyCurrentOrder(userID)
	var cached models.Order
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("OrderService: cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return &cached, nil
	}

	order, err := s.getOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, order, DefaultCacheTTL); err != nil {
		log.Printf("OrderService: cache write failed for %s: %v", cacheKey, err)
	}
	return order, nil
}

func (s *OrderService) getOrCreateActive(ctx context.Context, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active order: %w", err)
	}
	if order != nil {
		return order, nil
	}

	order, err = s.orderRepo.CreateActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create active order: %w", err)
	}
	return order, nil
}

// GetOrders lists submitted (non-INCOMPLETE) orders: admins see every user's
// orders, everyone else only their own.
func (s *OrderService) GetOrders(ctx context.Context, requester Identity, q pagination.Query, sortBy, sortOrder string) ([]models.Order, pagination.Meta, error) {
	q = q.Normalize()

	scope := requester.UserID
	if requester.IsAdmin() {
		scope = ""
	}

	cacheKey := CacheKeyOrderList(scope, q.Page, q.PageSize, sortBy, sortOrder)
	var cached struct {
		Orders []models.Order  `json:"orders"`
		Meta   pagination.Meta `json:"meta"`
	}
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("OrderService: cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return cached.Orders, cached.Meta, nil
	}

	orders, total, err := s.orderRepo.GetPaginated(ctx, scope, sortBy, sortOrder, q.PageSize, q.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list orders: %w", err)
	}

	meta := pagination.BuildMeta(total, len(orders), q)
	cached.Orders = orders
	cached.Meta = meta
	if err := s.cache.Set(ctx, cacheKey, cached, DefaultCacheTTL); err != nil {
		log.Printf("OrderService: cache write failed for %s: %v", cacheKey, err)
	}
	return orders, meta, nil
}

// GetOrderByID returns one order for its owner or an admin.
func (s *OrderService) GetOrderByID(ctx context.Context, requester Identity, orderID string) (*models.Order, error) {
	cacheKey := CacheKeyOrder(orderID)
	var cached models.Order
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("OrderService: cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		if cached.UserID != requester.UserID && !requester.IsAdmin() {
			return nil, apperrors.ErrNotOwnOrder
		}
		return &cached, nil
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrOrderNotFound
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, apperrors.ErrNotOwnOrder
	}

	if err := s.cache.Set(ctx, cacheKey, order, DefaultCacheTTL); err != nil {
		log.Printf("OrderService: cache write failed for %s: %v", cacheKey, err)
	}
	return order, nil
}

// AddItem puts quantity units of a product into the user's cart. An existing
// line is incremented, not overwritten.
func (s *OrderService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Order, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil || product.IsRemoved {
		return nil, apperrors.ErrProductNotFound
	}

	order, err := s.getOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := repositories.NewOrderItemRepository(tx).GetByOrderAndProduct(ctx, order.ID, productID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Quantity += quantity
			if err := tx.Model(&models.OrderItem{}).
				Where("id = ?", existing.ID).
				Update("quantity", existing.Quantity).Error; err != nil {
				return err
			}
		} else {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: productID,
				Quantity:  quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return recomputeOrderTotal(tx, order.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add order item: %w", err)
	}

	s.invalidate(ctx, []string{CacheKeyCurrentOrder(userID), CacheKeyOrder(order.ID)}, nil)

	return s.orderRepo.GetActiveByUserID(ctx, userID)
}

// RemoveItem decrements a cart line by quantity. Zero or an amount at least
// the current quantity removes the line entirely, so a quantity-1 row never
// survives a decrement.
func (s *OrderService) RemoveItem(ctx context.Context, userID, productID string, quantity int) (*models.Order, error) {
	order, err := s.orderRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active order: %w", err)
	}
	if order == nil || len(order.Items) == 0 {
		return nil, apperrors.ErrOrderEmpty
	}
	if order.UserID != userID {
		return nil, apperrors.ErrNotOwnOrder
	}

	item, err := s.orderItemRepo.GetByOrderAndProduct(ctx, order.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order item: %w", err)
	}
	if item == nil {
		return nil, apperrors.ErrOrderItemNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if quantity >= 1 && quantity < item.Quantity {
			if err := tx.Model(&models.OrderItem{}).
				Where("id = ?", item.ID).
				Update("quantity", item.Quantity-quantity).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Delete(&models.OrderItem{}, "id = ?", item.ID).Error; err != nil {
				return err
			}
		}
		return recomputeOrderTotal(tx, order.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove order item: %w", err)
	}

	s.invalidate(ctx, []string{CacheKeyCurrentOrder(userID), CacheKeyOrder(order.ID)}, nil)

	return s.orderRepo.GetActiveByUserID(ctx, userID)
}

// ClearOrder drops every line of the cart and zeroes the total.
func (s *OrderService) ClearOrder(ctx context.Context, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active order: %w", err)
	}
	if order == nil || len(order.Items) == 0 {
		return nil, apperrors.ErrOrderEmpty
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.OrderItem{}, "order_id = ?", order.ID).Error; err != nil {
			return err
		}
		return recomputeOrderTotal(tx, order.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clear order: %w", err)
	}

	s.invalidate(ctx, []string{CacheKeyCurrentOrder(userID), CacheKeyOrder(order.ID)}, []string{CacheOrderListPrefix})

	return s.orderRepo.GetActiveByUserID(ctx, userID)
}

// UpdateOrder reconciles the order's line items against a full target set
// and optionally attaches a shipping office and submits the order. All of it
// is applied as one transaction; a partially updated order is never
// persisted.
func (s *OrderService) UpdateOrder(ctx context.Context, requester Identity, orderID string, target []TargetLine, postID *uint, status string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrOrderNotFound
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, apperrors.ErrNotOwnOrder
	}
	if models.OrderStatusTerminal(order.Status) {
		return nil, apperrors.ErrStatusIncorrect
	}
	if status != "" && status != order.Status &&
		!(order.Status == models.OrderStatusIncomplete && status == models.OrderStatusPending) {
		return nil, apperrors.ErrStatusIncorrect
	}

	for _, line := range target {
		if line.Quantity < 1 {
			continue
		}
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product: %w", err)
		}
		if product == nil || product.IsRemoved {
			return nil, apperrors.ErrProductNotFound
		}
	}

	if postID != nil {
		if err := s.requireWorkingOffice(ctx, *postID); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if target != nil {
			if err := applyLineDiff(tx, order.ID, diffLineItems(order.Items, target)); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{}
		if postID != nil {
			updates["post_office_id"] = *postID
		}
		if status == models.OrderStatusPending && order.Status == models.OrderStatusIncomplete {
			var remaining int64
			if err := tx.Model(&models.OrderItem{}).
				Where("order_id = ?", order.ID).
				Count(&remaining).Error; err != nil {
				return err
			}
			if remaining == 0 {
				return apperrors.ErrOrderEmpty
			}
			updates["status"] = models.OrderStatusPending
			updates["active_owner"] = nil
			updates["created_at"] = time.Now()
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Order{}).
				Where("id = ?", order.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}

		return recomputeOrderTotal(tx, order.ID)
	})
	if err != nil {
		if appErr := apperrors.From(err); appErr != nil {
			return nil, appErr
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.invalidate(ctx,
		[]string{CacheKeyCurrentOrder(order.UserID), CacheKeyOrder(order.ID)},
		[]string{CacheOrderListPrefix})

	return s.orderRepo.GetByID(ctx, orderID)
}

// SendOrder submits the cart: status flips to PENDING and the submission
// timestamp is refreshed to mark queue position.
func (s *OrderService) SendOrder(ctx context.Context, userID string, postID *uint) (*models.Order, error) {
	order, err := s.orderRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active order: %w", err)
	}
	if order == nil || len(order.Items) == 0 {
		return nil, apperrors.ErrOrderEmpty
	}

	if postID != nil {
		if err := s.requireWorkingOffice(ctx, *postID); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       models.OrderStatusPending,
			"active_owner": nil,
			"created_at":   time.Now(),
		}
		if postID != nil {
			updates["post_office_id"] = *postID
		}
		if err := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(updates).Error; err != nil {
			return err
		}
		return recomputeOrderTotal(tx, order.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send order: %w", err)
	}

	s.invalidate(ctx,
		[]string{CacheKeyCurrentOrder(userID), CacheKeyOrder(order.ID)},
		[]string{CacheOrderListPrefix})

	return s.orderRepo.GetByID(ctx, order.ID)
}

// CreateGuestOrder runs the unauthenticated checkout: the contact phone is
// resolved into an AUTO user, then the usual reconciliation path builds the
// order and submits it in one go. A valid working shipping office is
// mandatory here.
func (s *OrderService) CreateGuestOrder(ctx context.Context, phone string, postID uint, target []TargetLine) (*models.Order, error) {
	if err := s.requireWorkingOffice(ctx, postID); err != nil {
		return nil, err
	}

	user, err := s.resolveGuestUser(ctx, phone)
	if err != nil {
		return nil, err
	}

	order, err := s.getOrCreateActive(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	pid := postID
	updated, err := s.UpdateOrder(ctx,
		Identity{UserID: user.ID, Role: user.Role},
		order.ID, target, &pid, models.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *OrderService) resolveGuestUser(ctx context.Context, phone string) (*models.User, error) {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guest user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{
		Name:  phone,
		Phone: &phone,
		Role:  models.RoleUser,
		AuthMethods: []models.AuthMethod{
			{Name: models.AuthFlowAuto},
		},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}
	return user, nil
}

// CancelOrder moves a PENDING order to CANCELED. Owner or admin only; the
// terminal states are absorbing.
func (s *OrderService) CancelOrder(ctx context.Context, requester Identity, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrOrderNotFound
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, apperrors.ErrNotOwnOrder
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperrors.ErrStatusIncorrect
	}

	if err := s.setStatus(ctx, order.ID, models.OrderStatusCanceled); err != nil {
		return nil, err
	}

	s.invalidate(ctx, []string{CacheKeyOrder(order.ID)}, []string{CacheOrderListPrefix})

	return s.orderRepo.GetByID(ctx, order.ID)
}

// CompleteOrder marks a PENDING order fulfilled. The admin gate sits in the
// route layer.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, apperrors.ErrOrderNotFound
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperrors.ErrStatusIncorrect
	}

	if err := s.setStatus(ctx, order.ID, models.OrderStatusComplete); err != nil {
		return nil, err
	}

	s.invalidate(ctx, []string{CacheKeyOrder(order.ID)}, []string{CacheOrderListPrefix})

	return s.orderRepo.GetByID(ctx, order.ID)
}

func (s *OrderService) setStatus(ctx context.Context, orderID, status string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{"status": status, "active_owner": nil}).Error
	if err != nil {
		return fmt.Errorf("failed to set order status: %w", err)
	}
	return nil
}

func (s *OrderService) requireWorkingOffice(ctx context.Context, postID uint) error {
	office, err := s.postRepo.GetOfficeByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to resolve post office: %w", err)
	}
	if office == nil || office.Status != models.OfficeStatusWorking {
		return apperrors.ErrPostOfficeNotFound
	}
	return nil
}

func (s *OrderService) invalidate(ctx context.Context, keys []string, patterns []string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		log.Printf("OrderService: cache invalidation failed: %v", err)
	}
	for _, pattern := range patterns {
		if err := s.cache.DelPattern(ctx, pattern); err != nil {
			log.Printf("OrderService: cache pattern invalidation failed for %s: %v", pattern, err)
		}
	}
}

// applyLineDiff writes the reconciliation result inside the caller's
// transaction.
func applyLineDiff(tx *gorm.DB, orderID string, diff LineDiff) error {
	for _, line := range diff.Inserted {
		item := models.OrderItem{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	for _, line := range diff.Updated {
		if err := tx.Model(&models.OrderItem{}).
			Where("order_id = ? AND product_id = ?", orderID, line.ProductID).
			Update("quantity", line.Quantity).Error; err != nil {
			return err
		}
	}
	if len(diff.Deleted) > 0 {
		if err := tx.
			Where("order_id = ? AND product_id IN ?", orderID, diff.Deleted).
			Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// recomputeOrderTotal derives the total from the authoritative line-item set
// inside the same transaction as the mutation. Total is never maintained
// incrementally: a missed code path can then at worst forget a recompute,
// not drift the stored value.
func recomputeOrderTotal(tx *gorm.DB, orderID string) error {
	var items []models.OrderItem
	if err := tx.Preload("Product").
		Where("order_id = ?", orderID).
		Find(&items).Error; err != nil {
		return err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return tx.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total", total).Error
}
