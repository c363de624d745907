package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"github.com/fastandfab/sellerservice/internal/handlers/middleware"
	"github.com/fastandfab/sellerservice/internal/logger"
	"github.com/fastandfab/sellerservice/internal/models"
	"github.com/fastandfab/sellerservice/internal/service/media"
	"github.com/fastandfab/sellerservice/internal/service/product"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func gzipMiddleware(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

type Services struct {
	Auth    authService
	Seller  sellerService
	Product productService
	Media   mediaService
	Health  pinger

	// Optional. Serves uploaded images under /media/ when set
	Blobs blobReader
}

type Config struct {
	CORSOrigins []string

	// Show internal error text in 500 responses
	Details bool
}

func NewRouter(services Services, cfg Config, logger logger.Logger) http.Handler {
	withAuth := middleware.AuthMiddleware(services.Auth, logger)

	api := http.NewServeMux()

	api.Handle("POST /signup", handleSignup(services.Auth, logger))
	api.Handle("POST /signin", handleSignin(services.Auth, logger))
	api.Handle("POST /refresh-token", handleTokenRefresh(services.Auth, logger))
	api.Handle("POST /logout", withAuth(handleLogout(services.Auth, logger)))

	api.Handle("GET /profile", withAuth(handleProfile(services.Seller, logger)))
	api.Handle("PATCH /{sellerId}/details", withAuth(handleUpdateDetails(services.Seller, logger)))

	api.Handle("POST /products", withAuth(handleCreateProduct(services.Product, logger)))
	api.Handle("GET /products", withAuth(handleListProducts(services.Product, logger)))
	api.Handle("POST /products/upload-images", withAuth(handleUploadImages(services.Media, logger)))
	api.Handle("GET /products/{productId}", withAuth(handleGetProduct(services.Product, logger)))
	api.Handle("PUT /products/{productId}", withAuth(handleUpdateProduct(services.Product, logger)))
	api.Handle("DELETE /products/{productId}", withAuth(handleDeleteProduct(services.Product, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	root.Handle("GET /products/active", handleListActiveProducts(services.Product, logger))
	root.Handle("GET /products/category/{category}", handleListCategoryProducts(services.Product, logger))
	root.Handle("GET /products/{productId}", handleGetActiveProduct(services.Product, logger))
	root.Handle("GET /healthz", handleHealth(services.Health, logger))

	if services.Blobs != nil {
		root.Handle("GET /media/{key...}", handleGetMedia(services.Blobs, logger))
	}

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
		gzipMiddleware,
		middleware.RecoverMiddleware(logger),
		middleware.DetailsMiddleware(cfg.Details),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	return handler
}

type authService interface {
	// Create seller and open the first session
	// Has to return apperrors.ErrSellerPhoneTaken if phone is registered already
	Signup(ctx context.Context, phone string, password string) (models.Seller, models.TokenPair, error)

	// Has to return apperrors.ErrSellerNotFound or apperrors.ErrInvalidPassword on bad credentials
	Signin(ctx context.Context, phone string, password string) (models.Seller, models.TokenPair, error)

	// Rotate refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	Refresh(ctx context.Context, refresh string) (models.Seller, models.TokenPair, error)

	Logout(ctx context.Context, sellerID uuid.UUID, refresh string) error

	// Validate Authorization header value and return seller id
	Authenticate(header string) (uuid.UUID, error)
}

type sellerService interface {
	GetProfile(ctx context.Context, sellerID uuid.UUID) (models.Seller, error)
	UpdateProfile(ctx context.Context, actorID uuid.UUID, sellerID uuid.UUID, update models.SellerProfileUpdate) (models.Seller, error)
}

type productService interface {
	Create(ctx context.Context, sellerID uuid.UUID, p models.Product) (models.Product, error)
	ListOwn(ctx context.Context, sellerID uuid.UUID) ([]models.Product, error)
	GetOwned(ctx context.Context, actorID uuid.UUID, productID uuid.UUID) (models.Product, error)
	Update(ctx context.Context, actorID uuid.UUID, productID uuid.UUID, update models.ProductUpdate) (models.Product, error)
	Delete(ctx context.Context, actorID uuid.UUID, productID uuid.UUID) error

	ListActive(ctx context.Context, filter product.ActiveFilter) ([]models.Product, error)
	GetActive(ctx context.Context, productID uuid.UUID) (models.Product, error)
}

type mediaService interface {
	UploadImages(ctx context.Context, sellerID uuid.UUID, uploads []media.Upload) ([]string, error)
}

type blobReader interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}
