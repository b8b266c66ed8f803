package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/ostapdev/go-shop/app/utils/pagination"
	"github.com/ostapdev/go-shop/app/utils/slug"
	"github.com/shopspring/decimal"
)

// ProductInput carries the writable catalog fields of a product.
type ProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  string
}

// ProductView is a product together with the per-requester favourite flag.
type ProductView struct {
	models.Product
	IsInFavourite bool `json:"isInFavourite"`
}

type ProductService struct {
	productRepo   repositories.ProductRepositoryImpl
	categoryRepo  repositories.CategoryRepositoryImpl
	favouriteRepo repositories.FavouriteRepositoryImpl
	bucket        Uploader
	cache         Cache
}

func NewProductService(
	productRepo repositories.ProductRepositoryImpl,
	categoryRepo repositories.CategoryRepositoryImpl,
	favouriteRepo repositories.FavouriteRepositoryImpl,
	bucket Uploader,
	cache Cache,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		favouriteRepo: favouriteRepo,
		bucket:        bucket,
		cache:         cache,
	}
}

// GetProducts lists the catalog page described by the filter. Results are
// cached per full parameter set.
func (s *ProductService) GetProducts(ctx context.Context, filter repositories.ProductFilter, q pagination.Query) ([]models.Product, pagination.Meta, error) {
	q = q.Normalize()
	filter.Limit = q.PageSize
	filter.Offset = q.Offset()

	priceMin, priceMax := "", ""
	if filter.PriceMin != nil {
		priceMin = filter.PriceMin.String()
	}
	if filter.PriceMax != nil {
		priceMax = filter.PriceMax.String()
	}
	cacheKey := CacheKeyItemList(q.Page, q.PageSize, filter.Search, priceMin, priceMax,
		filter.SortBy, filter.SortOrder, filter.CategorySlugs, filter.ShowRemoved)

	var cached struct {
		Products []models.Product `json:"products"`
		Meta     pagination.Meta  `json:"meta"`
	}
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("ProductService: cache read failed for %s: %v", cacheKey, err)
	} else if hit {
		return cached.Products, cached.Meta, nil
	}

	products, total, err := s.productRepo.GetPaginated(ctx, filter)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list products: %w", err)
	}

	meta := pagination.BuildMeta(total, len(products), q)
	cached.Products = products
	cached.Meta = meta
	if err := s.cache.Set(ctx, cacheKey, cached, DefaultCacheTTL); err != nil {
		log.Printf("ProductService: cache write failed for %s: %v", cacheKey, err)
	}
	return products, meta, nil
}

// GetProduct returns one product. For an authenticated requester the view
// carries whether the product sits in their favourites; the flag is computed
// live so the product cache entry stays requester-independent.
func (s *ProductService) GetProduct(ctx context.Context, id, userID string) (*ProductView, error) {
	cacheKey := CacheKeyItem(id)
	var product models.Product

	hit, err := s.cache.Get(ctx, cacheKey, &product)
	if err != nil {
		log.Printf("ProductService: cache read failed for %s: %v", cacheKey, err)
		hit = false
	}
	if !hit {
		found, err := s.productRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if found == nil {
			return nil, apperrors.ErrProductNotFound
		}
		product = *found
		// Archived products are served but kept out of the cache, so an
		// unarchive is visible immediately.
		if !product.IsRemoved {
			if err := s.cache.Set(ctx, cacheKey, product, DefaultCacheTTL); err != nil {
				log.Printf("ProductService: cache write failed for %s: %v", cacheKey, err)
			}
		}
	}

	view := &ProductView{Product: product}
	if userID != "" {
		favourites, err := s.favouriteRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get favourites: %w", err)
		}
		if favourites != nil {
			for _, p := range favourites.Products {
				if p.ID == product.ID {
					view.IsInFavourite = true
					break
				}
			}
		}
	}
	return view, nil
}

// CreateProduct adds a catalog entry. A referenced category must exist; no
// category at all lands the product in the default bucket. A missing image
// falls back to the placeholder object.
func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput, image io.Reader, contentType string) (*models.Product, error) {
	if input.CategoryID == "" {
		fallback, err := s.categoryRepo.GetBySlug(ctx, slug.Make(models.DefaultCategoryName))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve default category: %w", err)
		}
		if fallback == nil {
			return nil, apperrors.ErrInvalidCategory
		}
		input.CategoryID = fallback.ID
	}

	category, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category == nil {
		return nil, apperrors.ErrInvalidCategory
	}

	imageName := models.PlaceholderImage
	if image != nil {
		imageName, err = s.bucket.Upload(ctx, image, contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store product image: %w", err)
		}
	}

	product := &models.Product{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Image:       imageName,
		CategoryID:  input.CategoryID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateProduct(ctx, product.ID)

	return s.productRepo.GetByID(ctx, product.ID)
}

// UpdateProduct rewrites the catalog fields and, when a new image arrives,
// swaps the stored blob.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input ProductInput, image io.Reader, contentType string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, apperrors.ErrProductNotFound
	}

	category, err := s.categoryRepo.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	if category == nil {
		return nil, apperrors.ErrInvalidCategory
	}

	if image != nil {
		oldImage := product.Image
		newImage, err := s.bucket.Upload(ctx, image, contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to store product image: %w", err)
		}
		product.Image = newImage
		if oldImage != models.PlaceholderImage {
			if err := s.bucket.Remove(ctx, oldImage); err != nil {
				log.Printf("ProductService: failed to drop old image %s: %v", oldImage, err)
			}
		}
	}

	product.Title = input.Title
	product.Description = input.Description
	product.Price = input.Price
	product.CategoryID = input.CategoryID
	product.Category = models.Category{}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateProduct(ctx, id)

	return s.productRepo.GetByID(ctx, id)
}

// ArchiveProduct soft-deletes a product: it leaves every order line that
// references it intact but hides it from the public catalog. The stored
// image is dropped and replaced with the placeholder.
func (s *ProductService) ArchiveProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, apperrors.ErrProductNotFound
	}

	if product.Image != models.PlaceholderImage {
		if err := s.bucket.Remove(ctx, product.Image); err != nil {
			log.Printf("ProductService: failed to drop image %s: %v", product.Image, err)
		}
	}

	if err := s.productRepo.SetRemoved(ctx, id, true, models.PlaceholderImage); err != nil {
		return nil, fmt.Errorf("failed to archive product: %w", err)
	}

	s.invalidateProduct(ctx, id)

	return s.productRepo.GetByID(ctx, id)
}

// UnarchiveProduct makes an archived product publicly listed again.
func (s *ProductService) UnarchiveProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, apperrors.ErrProductNotFound
	}

	if err := s.productRepo.SetRemoved(ctx, id, false, ""); err != nil {
		return nil, fmt.Errorf("failed to unarchive product: %w", err)
	}

	s.invalidateProduct(ctx, id)

	return s.productRepo.GetByID(ctx, id)
}

// invalidateProduct drops the single-item entry plus every list entry the
// product could appear in, favourites included.
func (s *ProductService) invalidateProduct(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, CacheKeyItem(id)); err != nil {
		log.Printf("ProductService: cache invalidation failed: %v", err)
	}
	for _, prefix := range []string{CacheItemListPrefix, CacheFavouritePrefix} {
		if err := s.cache.DelPattern(ctx, prefix); err != nil {
			log.Printf("ProductService: cache pattern invalidation failed for %s: %v", prefix, err)
		}
	}
}
