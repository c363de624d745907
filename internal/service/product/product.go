package product

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/cache"
	"github.com/fastandfab/sellerservice/internal/logger"
	"github.com/fastandfab/sellerservice/internal/models"
	"github.com/fastandfab/sellerservice/internal/repository"
	"github.com/fastandfab/sellerservice/internal/service/ownership"
)

const defaultCacheTTL = 5 * time.Minute

type Config struct {
	// Cache for public product reads. cache.Noop if not set
	Cache cache.Cache

	// Lifetime of cached public product
	CacheTTL time.Duration

	Logger logger.Logger

	// Clock. time.Now if not set
	Now func() time.Time
}

// Filter for public listing
type ActiveFilter struct {
	CategoryPrefix string
	Subcategory    string
}

type ProductService struct {
	storage  repository.Storage
	cache    cache.Cache
	cacheTTL time.Duration
	logger   logger.Logger
	now      func() time.Time
}

func NewService(cfg Config, storage repository.Storage) *ProductService {
	if cfg.Cache == nil {
		cfg.Cache = cache.Noop{}
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &ProductService{
		storage:  storage,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

func validatePrice(p models.Product) error {
	if p.SellingPrice.GreaterThan(p.MRPPrice) {
		return apperrors.ErrProductInvalidPrice
	}
	return nil
}

// Create product owned by the seller
// Size quantities default to models.DefaultSizeQuantities when empty
func (s *ProductService) Create(ctx context.Context, sellerID uuid.UUID, p models.Product) (models.Product, error) {
	if err := validatePrice(p); err != nil {
		return models.Product{}, err
	}

	now := s.now()
	p.ID = uuid.New()
	p.SellerID = sellerID
	p.CreatedAt = now
	p.UpdatedAt = now
	if len(p.SizeQuantities) == 0 {
		p.SizeQuantities = models.DefaultSizeQuantities()
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	created, err := s.storage.Product().CreateProduct(ctx, p)
	if err != nil {
		return created, fmt.Errorf("can't create product. Err: %w", err)
	}
	return created, nil
}

// Seller's own products, inactive included, newest first
func (s *ProductService) ListOwn(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error) {
	products, err := s.storage.Product().ListProducts(ctx, repository.ListProductsOpts{SellerID: sellerID})
	if err != nil {
		return nil, fmt.Errorf("can't list products. Err: %w", err)
	}
	return products, nil
}

// Product of the actor
// apperrors.ErrProductNotFound if missing, apperrors.ErrForbidden if owned by someone else
func (s *ProductService) GetOwned(ctx context.Context, actorID uuid.UUID, productID uuid.UUID) (models.Product, error) {
	p, err := s.storage.Product().GetProduct(ctx, productID, false)
	if err != nil {
		return p, fmt.Errorf("can't get product. Err: %w", err)
	}
	if err := ownership.Authorize(actorID, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Apply partial update on behalf of the actor
// Row is locked while ownership and price are checked against the merged state
func (s *ProductService) Update(ctx context.Context, actorID uuid.UUID, productID uuid.UUID, update models.ProductUpdate) (models.Product, error) {
	var updated models.Product

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		current, err := st.Product().GetProduct(ctx, productID, true)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(actorID, current); err != nil {
			return err
		}
		if err := validatePrice(update.Apply(current)); err != nil {
			return err
		}

		updated, err = st.Product().UpdateProduct(ctx, productID, update)
		if err != nil {
			return err
		}
		return s.forget(ctx, productID)
	})
	if err != nil {
		return models.Product{}, fmt.Errorf("can't update product. Err: %w", err)
	}

	s.forgetCommitted(ctx, productID)
	return updated, nil
}

// Delete product on behalf of the actor
func (s *ProductService) Delete(ctx context.Context, actorID uuid.UUID, productID uuid.UUID) error {
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		current, err := st.Product().GetProduct(ctx, productID, true)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(actorID, current); err != nil {
			return err
		}
		if err := st.Product().DeleteProduct(ctx, productID); err != nil {
			return err
		}
		return s.forget(ctx, productID)
	})
	if err != nil {
		return fmt.Errorf("can't delete product. Err: %w", err)
	}

	s.forgetCommitted(ctx, productID)
	return nil
}

// Public listing: active products only
func (s *ProductService) ListActive(ctx context.Context, filter ActiveFilter) ([]models.Product, error) {
	products, err := s.storage.Product().ListProducts(ctx, repository.ListProductsOpts{
		ActiveOnly:     true,
		CategoryPrefix: filter.CategoryPrefix,
		Subcategory:    filter.Subcategory,
	})
	if err != nil {
		return nil, fmt.Errorf("can't list active products. Err: %w", err)
	}
	return products, nil
}

// Public product. Inactive product is reported as not found
// Cached copy is served only while its version matches the stored row and the row is active
func (s *ProductService) GetActive(ctx context.Context, productID uuid.UUID) (models.Product, error) {
	key := cacheKey(productID)

	if cached, ok := s.cached(ctx, key); ok {
		state, err := s.storage.Product().GetProductState(ctx, productID)
		switch {
		case err != nil:
			return models.Product{}, fmt.Errorf("can't get product. Err: %w", err)
		case !state.IsActive:
			return models.Product{}, fmt.Errorf("product is inactive: %w", apperrors.ErrProductNotFound)
		case state.UpdatedAt.Equal(cached.UpdatedAt):
			return cached, nil
		}
	}

	p, err := s.storage.Product().GetProduct(ctx, productID, false)
	if err != nil {
		return p, fmt.Errorf("can't get product. Err: %w", err)
	}
	if !p.IsActive {
		return models.Product{}, fmt.Errorf("product is inactive: %w", apperrors.ErrProductNotFound)
	}

	if data, err := json.Marshal(p); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.Warn("product cache write failed", "key", key, "error", err)
		}
	}
	return p, nil
}

func (s *ProductService) cached(ctx context.Context, key string) (models.Product, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("product cache read failed", "key", key, "error", err)
		return models.Product{}, false
	}
	if !ok {
		return models.Product{}, false
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("product cache entry is broken", "key", key)
		return models.Product{}, false
	}
	return p, true
}

// Drop cached product. Called inside the mutating transaction so failure rolls the change back
func (s *ProductService) forget(ctx context.Context, productID uuid.UUID) error {
	if err := s.cache.Delete(ctx, cacheKey(productID)); err != nil {
		return fmt.Errorf("can't invalidate cached product. Err: %w", err)
	}
	return nil
}

// Drop entry a concurrent reader may have cached before the change was committed
func (s *ProductService) forgetCommitted(ctx context.Context, productID uuid.UUID) {
	if err := s.forget(ctx, productID); err != nil {
		s.logger.Error("product cache invalidation failed", "product_id", productID, "error", err)
	}
}

func cacheKey(productID uuid.UUID) string {
	return "product:" + productID.String()
}
