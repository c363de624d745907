package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const createToken = `-- name: CreateRefreshToken
INSERT INTO refresh_tokens (id, seller_id, token, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, seller_id, token, created_at, expires_at`

func (r *RefreshTokenRepo) Create(ctx context.Context, token models.RefreshToken) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, createToken, token.ID, token.SellerID, token.Token, token.CreatedAt, token.ExpiresAt)
	t, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return t, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

const getTokenForUpdate = `-- name: GetRefreshTokenForUpdate
SELECT id, seller_id, token, created_at, expires_at
FROM refresh_tokens
WHERE token = $1 AND seller_id = $2
FOR UPDATE
`

// Get token even if it expired already: caller decides what to do with it
func (r *RefreshTokenRepo) GetForUpdate(ctx context.Context, sellerID uuid.UUID, token string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getTokenForUpdate, token, sellerID)
	return collectRefreshToken(rows)
}

const replaceToken = `-- name: ReplaceRefreshToken
UPDATE refresh_tokens
SET token = $2, expires_at = $3
WHERE id = $1
RETURNING id, seller_id, token, created_at, expires_at
`

func (r *RefreshTokenRepo) Replace(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, replaceToken, id, token, expiresAt)
	return collectRefreshToken(rows)
}

const deleteToken = `-- name: DeleteRefreshToken
DELETE FROM refresh_tokens
WHERE seller_id = $1 AND token = $2
`

func (r *RefreshTokenRepo) Delete(ctx context.Context, sellerID uuid.UUID, token string) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteToken, sellerID, token)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RefreshTokenRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepo) DeleteBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM refresh_tokens WHERE seller_id = $1`, sellerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectRefreshToken(rows pgx.Rows) (models.RefreshToken, error) {
	token, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, pgx.ErrNoRows):
		return token, fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return token, fmt.Errorf("db error: %w", err)
	}
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.SellerID, &t.Token, &t.CreatedAt, &t.ExpiresAt)
	return t, err
}
