package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/testutil"
)

func Test_ProductHandlers(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create ok", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			seller, pair := app.signup(t, "9876543210")

			code, body := do(t, http.MethodPost, app.URL+"/api/products", pair.Access.Value, `
				{
					"name": "Linen shirt",
					"description": "Breathable summer shirt",
					"mrpPrice": 1999,
					"sellingPrice": 1499.5,
					"images": ["https://cdn.example.com/a.jpg"],
					"category": "men/shirts",
					"subcategory": "casual"
				}`)

			require.Equalf(t, http.StatusCreated, code, "not expected code. Body: %s", body)
			resp := decode[productMessageResponse](t, body)
			require.Equal(t, "Product created successfully", resp.Message)

			p := resp.Product
			require.NotEqual(t, uuid.Nil, p.ID)
			require.Equal(t, seller.ID, p.SellerID, "seller is taken from access token")
			require.Equal(t, "Linen shirt", p.Name)
			require.InDelta(t, 1999.0, p.MRPPrice, 0.001)
			require.InDelta(t, 1499.5, p.SellingPrice, 0.001)
			require.Equal(t, []string{"https://cdn.example.com/a.jpg"}, p.Images)
			require.Equal(t, map[string]int{"XS": 0, "S": 0, "M": 0, "L": 0, "XL": 0}, p.SizeQuantities, "default sizes")
			require.True(t, p.IsActive, "new product is active by default")
		})
	})

	t.Run("create errors", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			_, pair := app.signup(t, "9876543210")

			tests := []struct {
				name     string
				body     string
				wantCode int
				wantBody string
			}{
				{
					name:     "selling price above mrp",
					body:     `{"name": "Shirt", "mrpPrice": 100, "sellingPrice": 150, "category": "men"}`,
					wantCode: http.StatusBadRequest,
					wantBody: `{"error": "service_error", "message": "Selling price cannot be greater than MRP"}`,
				},
				{
					name:     "missing required",
					body:     `{"description": "no name"}`,
					wantCode: http.StatusBadRequest,
					wantBody: `{"error": "validation_failed", "message": "Request validation failed", "fields": {"name": "This field is required", "mrpPrice": "This field is required", "sellingPrice": "This field is required", "category": "This field is required"}}`,
				},
				{
					name:     "negative quantity",
					body:     `{"name": "Shirt", "mrpPrice": 100, "sellingPrice": 90, "category": "men", "sizeQuantities": {"M": -1}}`,
					wantCode: http.StatusBadRequest,
					wantBody: `{"error": "validation_failed", "message": "Request validation failed", "fields": {"sizeQuantities[M]": "Value must be at least 0"}}`,
				},
				{
					name:     "price exceeds stored precision",
					body:     `{"name": "Shirt", "mrpPrice": 1e12, "sellingPrice": 90, "category": "men"}`,
					wantCode: http.StatusBadRequest,
					wantBody: `{"error": "validation_failed", "message": "Request validation failed", "fields": {"mrpPrice": "Value must be at most 9999999999.99"}}`,
				},
				{
					name:     "price is not a number",
					body:     `{"name": "Shirt", "mrpPrice": "abc", "sellingPrice": 90, "category": "men"}`,
					wantCode: http.StatusBadRequest,
				},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					code, body := do(t, http.MethodPost, app.URL+"/api/products", pair.Access.Value, tt.body)

					require.Equalf(t, tt.wantCode, code, "not expected code. Body: %s", body)
					if tt.wantBody != "" {
						require.JSONEq(t, tt.wantBody, body)
					}
				})
			}
		})
	})

	t.Run("create requires auth", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			code, body := do(t, http.MethodPost, app.URL+"/api/products", "", `{"name": "Shirt", "mrpPrice": 100, "sellingPrice": 90, "category": "men"}`)

			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
		})
	})

	t.Run("list own products newest first", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			seller, pair := app.signup(t, "9876543210")
			other, _ := app.signup(t, "9123456789")

			first := createProduct(t, app, seller.ID, "First", "men", true)
			second := createProduct(t, app, seller.ID, "Second", "men", false)
			createProduct(t, app, other.ID, "Foreign", "men", true)

			code, body := do(t, http.MethodGet, app.URL+"/api/products", pair.Access.Value, "")

			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			products := decode[[]productResponse](t, body)
			require.Len(t, products, 2, "only own products, inactive included")
			require.Equal(t, second.ID, products[0].ID)
			require.Equal(t, first.ID, products[1].ID)
		})
	})

	t.Run("list own products empty", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			_, pair := app.signup(t, "9876543210")

			code, body := do(t, http.MethodGet, app.URL+"/api/products", pair.Access.Value, "")

			require.Equal(t, http.StatusOK, code)
			require.JSONEq(t, `[]`, body)
		})
	})

	t.Run("get owned product", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			seller, pair := app.signup(t, "9876543210")
			other, otherPair := app.signup(t, "9123456789")
			own := createProduct(t, app, seller.ID, "Own", "men", false)
			foreign := createProduct(t, app, other.ID, "Foreign", "men", true)

			code, body := do(t, http.MethodGet, app.URL+"/api/products/"+own.ID.String(), pair.Access.Value, "")
			require.Equalf(t, http.StatusOK, code, "owner sees inactive product. Body: %s", body)
			require.Equal(t, own.ID, decode[productResponse](t, body).ID)

			code, _ = do(t, http.MethodGet, app.URL+"/api/products/"+foreign.ID.String(), pair.Access.Value, "")
			require.Equal(t, http.StatusForbidden, code)

			code, _ = do(t, http.MethodGet, app.URL+"/api/products/"+uuid.NewString(), otherPair.Access.Value, "")
			require.Equal(t, http.StatusNotFound, code)

			code, _ = do(t, http.MethodGet, app.URL+"/api/products/not-a-uuid", otherPair.Access.Value, "")
			require.Equal(t, http.StatusNotFound, code)
		})
	})

	t.Run("update own product", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			seller, pair := app.signup(t, "9876543210")
			p := createProduct(t, app, seller.ID, "Shirt", "men", true)

			code, body := do(t, http.MethodPut, app.URL+"/api/products/"+p.ID.String(), pair.Access.Value, `{"name": "Better shirt", "sellingPrice": 999, "sizeQuantities": {"M": 3}}`)

			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			resp := decode[productMessageResponse](t, body)
			require.Equal(t, "Product updated successfully", resp.Message)
			require.Equal(t, "Better shirt", resp.Product.Name)
			require.InDelta(t, 999.0, resp.Product.SellingPrice, 0.001)
			require.InDelta(t, 1999.0, resp.Product.MRPPrice, 0.001, "not supplied field stays unchanged")
			require.Equal(t, map[string]int{"M": 3}, resp.Product.SizeQuantities)
		})
	})

	t.Run("update price above mrp rejected", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			seller, pair := app.signup(t, "9876543210")
			p := createProduct(t, app, seller.ID, "Shirt", "men", true)

			code, body := do(t, http.MethodPut, app.URL+"/api/products/"+p.ID.String(), pair.Access.Value, `{"sellingPrice": 5000}`)

			require.Equalf(t, http.StatusBadRequest, code, "not expected code. Body: %s", body)

			code, body = do(t, http.MethodPut, app.URL+"/api/products/"+p.ID.String(), pair.Access.Value, `{"mrpPrice": 1e12}`)
			require.Equalf(t, http.StatusBadRequest, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"error": "validation_failed", "message": "Request validation failed", "fields": {"mrpPrice": "Value must be at most 9999999999.99"}}`, body)
		})
	})

	t.Run("foreign product can't be changed", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			owner, _ := app.signup(t, "9876543210")
			_, attackerPair := app.signup(t, "9123456789")
			p := createProduct(t, app, owner.ID, "Shirt", "men", true)

			code, body := do(t, http.MethodPut, app.URL+"/api/products/"+p.ID.String(), attackerPair.Access.Value, `{"name": "Hijacked"}`)
			require.Equalf(t, http.StatusForbidden, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"error": "service_error", "message": "You are not allowed to access this product"}`, body)

			code, body = do(t, http.MethodDelete, app.URL+"/api/products/"+p.ID.String(), attackerPair.Access.Value, "")
			require.Equalf(t, http.StatusForbidden, code, "not expected code. Body: %s", body)

			got, err := app.Storage.Product().GetProduct(t.Context(), p.ID, false)
			require.NoError(t, err, "product must survive")
			require.Equal(t, "Shirt", got.Name, "product must stay untouched")
		})
	})

	t.Run("delete own product", func(t *testing.T) {
		withApp(pg.Pool, t, func(app testApp) {
			seller, pair := app.signup(t, "9876543210")
			p := createProduct(t, app, seller.ID, "Shirt", "men", true)

			code, body := do(t, http.MethodDelete, app.URL+"/api/products/"+p.ID.String(), pair.Access.Value, "")
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `{"message": "Product deleted successfully"}`, body)

			_, err := app.Storage.Product().GetProduct(t.Context(), p.ID, false)
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)

			code, _ = do(t, http.MethodDelete, app.URL+"/api/products/"+p.ID.String(), pair.Access.Value, "")
			require.Equal(t, http.StatusNotFound, code)
		})
	})
}
