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
)

type SellerRepo struct {
	DB DBTX
}

const sellerColumns = `id, created_at, phone, password_hash,
	COALESCE(shop_name, ''), COALESCE(owner_name, ''), COALESCE(address, ''),
	COALESCE(city, ''), COALESCE(state, ''), COALESCE(pincode, ''),
	COALESCE(open_time, ''), COALESCE(close_time, ''), categories`

const createSeller = `-- name: CreateSeller
INSERT INTO sellers (id, phone, password_hash)
VALUES ($1, $2, $3)
RETURNING ` + sellerColumns

func (r *SellerRepo) CreateSeller(ctx context.Context, phone string, passwordHash string) (models.Seller, error) {
	rows, _ := r.DB.Query(ctx, createSeller, uuid.New(), phone, passwordHash)
	seller, err := pgx.CollectOneRow(rows, rowToSeller)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return seller, apperrors.ErrSellerPhoneTaken
		}

		return seller, fmt.Errorf("db error: %w", err)
	}

	return seller, nil
}

const getSellerByID = `-- name: GetSellerByID
SELECT ` + sellerColumns + ` FROM sellers
WHERE id = $1
`

func (r *SellerRepo) GetSellerByID(ctx context.Context, id uuid.UUID) (models.Seller, error) {
	rows, _ := r.DB.Query(ctx, getSellerByID, id)
	return collectSeller(rows)
}

const getSellerByPhone = `-- name: GetSellerByPhone
SELECT ` + sellerColumns + ` FROM sellers
WHERE phone = $1
`

func (r *SellerRepo) GetSellerByPhone(ctx context.Context, phone string) (models.Seller, error) {
	rows, _ := r.DB.Query(ctx, getSellerByPhone, phone)
	return collectSeller(rows)
}

const updateProfile = `-- name: UpdateProfile
UPDATE sellers SET
	shop_name  = COALESCE($2, shop_name),
	owner_name = COALESCE($3, owner_name),
	address    = COALESCE($4, address),
	city       = COALESCE($5, city),
	state      = COALESCE($6, state),
	pincode    = COALESCE($7, pincode),
	open_time  = COALESCE($8, open_time),
	close_time = COALESCE($9, close_time),
	categories = COALESCE($10, categories)
WHERE id = $1
RETURNING ` + sellerColumns

func (r *SellerRepo) UpdateProfile(ctx context.Context, id uuid.UUID, u models.SellerProfileUpdate) (models.Seller, error) {
	rows, _ := r.DB.Query(ctx, updateProfile, id,
		u.ShopName, u.OwnerName, u.Address, u.City, u.State, u.Pincode, u.OpenTime, u.CloseTime, u.Categories,
	)
	return collectSeller(rows)
}

func collectSeller(rows pgx.Rows) (models.Seller, error) {
	seller, err := pgx.CollectOneRow(rows, rowToSeller)

	switch {
	case err == nil:
		return seller, nil
	case errors.Is(err, pgx.ErrNoRows):
		return seller, apperrors.ErrSellerNotFound
	default:
		return seller, fmt.Errorf("db error: %w", err)
	}
}

func rowToSeller(row pgx.CollectableRow) (models.Seller, error) {
	var s models.Seller
	p := &s.Profile
	err := row.Scan(
		&s.ID, &s.CreatedAt, &s.Phone, &s.PasswordHash,
		&p.ShopName, &p.OwnerName, &p.Address, &p.City, &p.State, &p.Pincode,
		&p.OpenTime, &p.CloseTime, &p.Categories,
	)
	return s, err
}
