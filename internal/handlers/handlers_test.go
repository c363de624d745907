package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastandfab/sellerservice/internal/blobstore"
	"github.com/fastandfab/sellerservice/internal/logger"
	"github.com/fastandfab/sellerservice/internal/models"
	"github.com/fastandfab/sellerservice/internal/repository"
	"github.com/fastandfab/sellerservice/internal/repository/postgres"
	"github.com/fastandfab/sellerservice/internal/service/auth"
	"github.com/fastandfab/sellerservice/internal/service/auth/tokenmanager"
	"github.com/fastandfab/sellerservice/internal/service/media"
	"github.com/fastandfab/sellerservice/internal/service/product"
	"github.com/fastandfab/sellerservice/internal/service/seller"
	"github.com/fastandfab/sellerservice/internal/testutil"
)

const (
	testPassword  = "StrongEnoughPassword"
	testMediaURL  = "http://media.test/media"
	testCorsAllow = "https://shop.example.com"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Router served by httptest with production services bound to a rolled back transaction
type testApp struct {
	URL     string
	Auth    *auth.AuthService
	Product *product.ProductService
	Storage repository.Storage
	Blobs   *blobstore.MemoryStore
	Clock   *clock
}

func withApp(dbpool *pgxpool.Pool, t *testing.T, fn func(app testApp)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		c := &clock{now: time.Now()}
		storage := postgres.NewStorage(tx)

		tokenManager, err := tokenmanager.New(tokenmanager.Config{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			Now:           c.Now,
		}, storage)
		require.NoError(t, err, "token manager should be created without errors")

		authService, err := auth.NewService(auth.Config{Hasher: auth.BcryptHasher{Cost: bcrypt.MinCost}}, tokenManager, storage)
		require.NoError(t, err, "auth service starting error", err)

		productService := product.NewService(product.Config{}, storage)
		blobs := blobstore.NewMemoryStore(testMediaURL)

		h := NewRouter(Services{
			Auth:    authService,
			Seller:  seller.NewService(storage),
			Product: productService,
			Media:   media.NewService(media.Config{}, blobs),
			Health:  storage,
			Blobs:   blobs,
		}, Config{CORSOrigins: []string{testCorsAllow}}, logger.NewNoOpLogger())

		srv := httptest.NewServer(h)
		defer srv.Close()

		fn(testApp{
			URL:     srv.URL,
			Auth:    authService,
			Product: productService,
			Storage: storage,
			Blobs:   blobs,
			Clock:   c,
		})
	})
}

// Register seller directly with the service
func (app testApp) signup(t *testing.T, phone string) (models.Seller, models.TokenPair) {
	s, pair, err := app.Auth.Signup(t.Context(), phone, testPassword)
	require.NoError(t, err)
	return s, pair
}

// Send request with optional bearer token and return status and body
func do(t *testing.T, method string, url string, access string, body string) (int, string) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	return resp.StatusCode, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func decode[T any](t *testing.T, body string) T {
	var v T
	err := json.Unmarshal([]byte(body), &v)
	require.NoError(t, err, "body is not valid json: %s", body)
	return v
}

func createProduct(t *testing.T, app testApp, sellerID uuid.UUID, name string, category string, active bool) models.Product {
	created, err := app.Product.Create(t.Context(), sellerID, models.Product{
		Name:         name,
		MRPPrice:     decimal.New(1999, 0),
		SellingPrice: decimal.New(1499, 0),
		Category:     category,
		IsActive:     active,
	})
	require.NoError(t, err)
	return created
}
