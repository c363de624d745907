package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/models"
)

// Seller repository interface
type SellerRepo interface {
	// Create seller
	// If seller with the phone exists already has to return apperrors.ErrSellerPhoneTaken
	CreateSeller(ctx context.Context, phone string, passwordHash string) (models.Seller, error)

	// Get seller by it's id or phone
	// If seller not found must return apperrors.ErrSellerNotFound
	GetSellerByID(ctx context.Context, sellerID uuid.UUID) (models.Seller, error)
	GetSellerByPhone(ctx context.Context, phone string) (models.Seller, error)

	// Apply partial profile update and return the updated seller
	// If seller not found must return apperrors.ErrSellerNotFound
	UpdateProfile(ctx context.Context, sellerID uuid.UUID, update models.SellerProfileUpdate) (models.Seller, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save new token
	Create(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error)

	// Get token by its value and owner, locking the row until the transaction ends
	// If not found must return apperrors.ErrRefreshTokenNotFound
	GetForUpdate(ctx context.Context, sellerID uuid.UUID, token string) (models.RefreshToken, error)

	// Overwrite token value and expiry of the existing row (row id is kept)
	// If not found must return apperrors.ErrRefreshTokenNotFound
	Replace(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) (models.RefreshToken, error)

	// Delete tokens; zero deleted rows is not an error
	Delete(ctx context.Context, sellerID uuid.UUID, token string) (int64, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ListProductsOpts struct {
	// Only products of the seller if set
	SellerID uuid.UUID

	// Only products with is_active = true
	ActiveOnly bool

	// Category starts with the value if not empty
	CategoryPrefix string

	// Exact subcategory if not empty
	Subcategory string
}

// Product repository interface
type ProductRepo interface {
	CreateProduct(ctx context.Context, product models.Product) (models.Product, error)

	// Get product by id
	// If forUpdate is true row is locked until transaction ends
	// If not found must return apperrors.ErrProductNotFound
	GetProduct(ctx context.Context, productID uuid.UUID, forUpdate bool) (models.Product, error)

	// Version and visibility of the product
	// If not found must return apperrors.ErrProductNotFound
	GetProductState(ctx context.Context, productID uuid.UUID) (models.ProductState, error)

	// List products newest first
	ListProducts(ctx context.Context, opts ListProductsOpts) ([]models.Product, error)

	// Apply partial update
	// If not found must return apperrors.ErrProductNotFound
	UpdateProduct(ctx context.Context, productID uuid.UUID, update models.ProductUpdate) (models.Product, error)

	// If not found must return apperrors.ErrProductNotFound
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

type Storage interface {
	Seller() SellerRepo
	Refresh() RefreshTokenRepo
	Product() ProductRepo

	// Run fn in transaction. Storage passed to fn is bound to the transaction
	// Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error

	// Check storage is reachable
	Ping(ctx context.Context) error
}
