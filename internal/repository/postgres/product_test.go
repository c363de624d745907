package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/models"
	"github.com/fastandfab/sellerservice/internal/repository"
	"github.com/fastandfab/sellerservice/internal/testutil"
)

func Test_ProductRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newSeller := func(t *testing.T, tx pgx.Tx, phone string) models.Seller {
		seller, err := (&SellerRepo{DB: tx}).CreateSeller(t.Context(), phone, "hash")
		require.NoError(t, err)
		return seller
	}

	newProduct := func(sellerID uuid.UUID, name string, category string, active bool) models.Product {
		return models.Product{
			ID:             uuid.New(),
			SellerID:       sellerID,
			CreatedAt:      time.Now(),
			Name:           name,
			Description:    "cotton",
			MRPPrice:       decimal.RequireFromString("100.50"),
			SellingPrice:   decimal.RequireFromString("80"),
			Images:         []string{"https://img/1.png"},
			Category:       category,
			Subcategory:    "shirts",
			SizeQuantities: map[string]int{"S": 1, "M": 2},
			IsActive:       active,
		}
	}

	t.Run("create product ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ProductRepo{DB: tx}
			seller := newSeller(t, tx, "9999999999")
			p := newProduct(seller.ID, "shirt", "men", true)

			got, err := r.CreateProduct(t.Context(), p)

			require.NoError(t, err)
			assert.Equal(t, p.ID, got.ID)
			assert.Equal(t, seller.ID, got.SellerID)
			assert.True(t, p.MRPPrice.Equal(got.MRPPrice), "mrp should be stored as is")
			assert.True(t, p.SellingPrice.Equal(got.SellingPrice))
			assert.Equal(t, p.Images, got.Images)
			assert.Equal(t, p.SizeQuantities, got.SizeQuantities)
			assert.True(t, got.IsActive)
		})
	})

	t.Run("create with selling price above mrp fails on db level", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ProductRepo{DB: tx}
			seller := newSeller(t, tx, "9999999999")
			p := newProduct(seller.ID, "shirt", "men", true)
			p.SellingPrice = decimal.NewFromInt(150)

			_, err := r.CreateProduct(t.Context(), p)

			require.ErrorIs(t, err, apperrors.ErrProductInvalidPrice)
		})
	})

	t.Run("get product", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ProductRepo{DB: tx}
			seller := newSeller(t, tx, "9999999999")
			created, err := r.CreateProduct(t.Context(), newProduct(seller.ID, "shirt", "men", true))
			require.NoError(t, err)

			got, err := r.GetProduct(t.Context(), created.ID, true)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)

			_, err = r.GetProduct(t.Context(), uuid.New(), false)
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})

	t.Run("list products with filters", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ProductRepo{DB: tx}
			first := newSeller(t, tx, "9999999999")
			second := newSeller(t, tx, "8888888888")

			for _, p := range []models.Product{
				newProduct(first.ID, "shirt", "men-wear", true),
				newProduct(first.ID, "hidden", "men-wear", false),
				newProduct(second.ID, "dress", "women-wear", true),
			} {
				_, err := r.CreateProduct(t.Context(), p)
				require.NoError(t, err)
			}

			names := func(products []models.Product) []string {
				res := make([]string, 0, len(products))
				for _, p := range products {
					res = append(res, p.Name)
				}
				return res
			}

			tests := []struct {
				name     string
				opts     repository.ListProductsOpts
				expected []string
			}{
				{"own products include inactive", repository.ListProductsOpts{SellerID: first.ID}, []string{"shirt", "hidden"}},
				{"active only", repository.ListProductsOpts{ActiveOnly: true}, []string{"shirt", "dress"}},
				{"category prefix", repository.ListProductsOpts{ActiveOnly: true, CategoryPrefix: "men"}, []string{"shirt"}},
				{"subcategory", repository.ListProductsOpts{ActiveOnly: true, Subcategory: "shirts"}, []string{"shirt", "dress"}},
				{"unknown subcategory", repository.ListProductsOpts{ActiveOnly: true, Subcategory: "shoes"}, []string{}},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					got, err := r.ListProducts(t.Context(), tt.opts)

					require.NoError(t, err)
					assert.ElementsMatch(t, tt.expected, names(got))
				})
			}
		})
	})

	t.Run("list ordered newest first", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ProductRepo{DB: tx}
			seller := newSeller(t, tx, "9999999999")
			older := newProduct(seller.ID, "older", "men", true)
			older.CreatedAt = time.Now().Add(-time.Hour)
			newer := newProduct(seller.ID, "newer", "men", true)
			for _, p := range []models.Product{older, newer} {
				_, err := r.CreateProduct(t.Context(), p)
				require.NoError(t, err)
			}

			got, err := r.ListProducts(t.Context(), repository.ListProductsOpts{SellerID: seller.ID})

			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "newer", got[0].Name)
			assert.Equal(t, "older", got[1].Name)
		})
	})

	t.Run("update product partially", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ProductRepo{DB: tx}
			seller := newSeller(t, tx, "9999999999")
			created, err := r.CreateProduct(t.Context(), newProduct(seller.ID, "shirt", "men", true))
			require.NoError(t, err)

			name := "linen shirt"
			inactive := false
			got, err := r.UpdateProduct(t.Context(), created.ID, models.ProductUpdate{Name: &name, IsActive: &inactive})

			require.NoError(t, err)
			assert.Equal(t, "linen shirt", got.Name)
			assert.False(t, got.IsActive)
			assert.Equal(t, created.Description, got.Description, "not provided field should not change")
			assert.True(t, created.MRPPrice.Equal(got.MRPPrice))
			assert.Equal(t, created.SizeQuantities, got.SizeQuantities)
		})
	})

	t.Run("product state follows updates", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ProductRepo{DB: tx}
			seller := newSeller(t, tx, "9999999999")
			created, err := r.CreateProduct(t.Context(), newProduct(seller.ID, "shirt", "men", true))
			require.NoError(t, err)

			state, err := r.GetProductState(t.Context(), created.ID)
			require.NoError(t, err)
			assert.True(t, state.IsActive)
			assert.True(t, created.UpdatedAt.Equal(state.UpdatedAt))

			inactive := false
			updated, err := r.UpdateProduct(t.Context(), created.ID, models.ProductUpdate{IsActive: &inactive})
			require.NoError(t, err)

			state, err = r.GetProductState(t.Context(), created.ID)
			require.NoError(t, err)
			assert.False(t, state.IsActive)
			assert.True(t, updated.UpdatedAt.Equal(state.UpdatedAt))
			assert.False(t, created.UpdatedAt.Equal(state.UpdatedAt), "every update moves the version")

			_, err = r.GetProductState(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})

	t.Run("delete product", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			r := ProductRepo{DB: tx}
			seller := newSeller(t, tx, "9999999999")
			created, err := r.CreateProduct(t.Context(), newProduct(seller.ID, "shirt", "men", true))
			require.NoError(t, err)

			err = r.DeleteProduct(t.Context(), created.ID)
			require.NoError(t, err)

			err = r.DeleteProduct(t.Context(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})
}
