package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/models"
	"github.com/fastandfab/sellerservice/internal/repository"
)

type ProductRepo struct {
	DB DBTX
}

const productColumns = `id, seller_id, created_at, updated_at, name, description, mrp_price, selling_price,
	images, category, subcategory, size_quantities, is_active`

const createProduct = `-- name: CreateProduct
INSERT INTO products (id, seller_id, created_at, updated_at, name, description, mrp_price, selling_price,
	images, category, subcategory, size_quantities, is_active)
VALUES ($1, $2, $3, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + productColumns

func (r *ProductRepo) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.SizeQuantities == nil {
		p.SizeQuantities = map[string]int{}
	}

	rows, _ := r.DB.Query(ctx, createProduct,
		p.ID, p.SellerID, p.CreatedAt, p.Name, p.Description, p.MRPPrice, p.SellingPrice,
		p.Images, p.Category, p.Subcategory, p.SizeQuantities, p.IsActive,
	)
	return collectProduct(rows)
}

const getProduct = `-- name: GetProduct
SELECT ` + productColumns + ` FROM products
WHERE id = $1
`

func (r *ProductRepo) GetProduct(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Product, error) {
	query := getProduct
	if forUpdate {
		query += "FOR UPDATE\n"
	}

	rows, _ := r.DB.Query(ctx, query, id)
	return collectProduct(rows)
}

const getProductState = `-- name: GetProductState
SELECT updated_at, is_active FROM products
WHERE id = $1
`

func (r *ProductRepo) GetProductState(ctx context.Context, id uuid.UUID) (models.ProductState, error) {
	var state models.ProductState
	err := r.DB.QueryRow(ctx, getProductState, id).Scan(&state.UpdatedAt, &state.IsActive)

	switch {
	case err == nil:
		return state, nil
	case errors.Is(err, pgx.ErrNoRows):
		return state, apperrors.ErrProductNotFound
	default:
		return state, fmt.Errorf("db error: %w", err)
	}
}

const listProducts = `-- name: ListProducts
SELECT ` + productColumns + ` FROM products
WHERE ($1::uuid IS NULL OR seller_id = $1)
	AND (NOT $2::boolean OR is_active)
	AND ($3::text = '' OR starts_with(category, $3))
	AND ($4::text = '' OR subcategory = $4)
ORDER BY created_at DESC, id
`

func (r *ProductRepo) ListProducts(ctx context.Context, opts repository.ListProductsOpts) ([]models.Product, error) {
	var sellerID any
	if opts.SellerID != uuid.Nil {
		sellerID = opts.SellerID
	}

	rows, _ := r.DB.Query(ctx, listProducts, sellerID, opts.ActiveOnly, opts.CategoryPrefix, opts.Subcategory)
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return products, nil
}

const updateProduct = `-- name: UpdateProduct
UPDATE products SET
	name            = COALESCE($2, name),
	description     = COALESCE($3, description),
	mrp_price       = COALESCE($4, mrp_price),
	selling_price   = COALESCE($5, selling_price),
	images          = COALESCE($6, images),
	category        = COALESCE($7, category),
	subcategory     = COALESCE($8, subcategory),
	size_quantities = COALESCE($9, size_quantities),
	is_active       = COALESCE($10, is_active),
	updated_at      = clock_timestamp()
WHERE id = $1
RETURNING ` + productColumns

func (r *ProductRepo) UpdateProduct(ctx context.Context, id uuid.UUID, u models.ProductUpdate) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, updateProduct, id,
		u.Name, u.Description, u.MRPPrice, u.SellingPrice, u.Images,
		u.Category, u.Subcategory, u.SizeQuantities, u.IsActive,
	)
	return collectProduct(rows)
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

func collectProduct(rows pgx.Rows) (models.Product, error) {
	product, err := pgx.CollectOneRow(rows, rowToProduct)

	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return product, nil
	case errors.Is(err, pgx.ErrNoRows):
		return product, apperrors.ErrProductNotFound
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation:
		return product, apperrors.ErrProductInvalidPrice
	default:
		return product, fmt.Errorf("db error: %w", err)
	}
}

func rowToProduct(row pgx.CollectableRow) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.SellerID, &p.CreatedAt, &p.UpdatedAt, &p.Name, &p.Description, &p.MRPPrice, &p.SellingPrice,
		&p.Images, &p.Category, &p.Subcategory, &p.SizeQuantities, &p.IsActive,
	)
	return p, err
}
