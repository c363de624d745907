package tokenmanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/models"
	"github.com/fastandfab/sellerservice/internal/repository"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

type Claims struct {
	jwt.RegisteredClaims
	SellerID uuid.UUID `json:"sellerId"`

	// Keeps access and refresh tokens apart when both are signed with the same secret
	Kind string `json:"kind"`
}

// Token manager with sensible default
type Config struct {
	// Secret key to sign access token
	// Required to be set
	AccessSecret string

	// Secret key to sign refresh token
	// Access secret is used if not set
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Clock. time.Now if not set
	Now func() time.Time
}

type TokenManager struct {
	accessKey  []byte
	refreshKey []byte

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time

	storage repository.Storage
}

func New(cfg Config, storage repository.Storage) (*TokenManager, error) {
	if cfg.AccessSecret == "" {
		return nil, errors.New("access secret key must not be empty")
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		accessKey:  []byte(cfg.AccessSecret),
		refreshKey: []byte(cfg.RefreshSecret),
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
		storage:    storage,
	}, nil
}

// Issue access and refresh token for the seller. Nothing is stored
func (m *TokenManager) IssuePair(sellerID uuid.UUID) (models.TokenPair, error) {
	var pair models.TokenPair
	now := m.now().Truncate(time.Second)

	access, err := m.sign(sellerID, kindAccess, now, now.Add(m.accessTTL), m.accessKey)
	if err != nil {
		return pair, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	refresh, err := m.sign(sellerID, kindRefresh, now, now.Add(m.refreshTTL), m.refreshKey)
	if err != nil {
		return pair, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (m *TokenManager) sign(sellerID uuid.UUID, kind string, now time.Time, expiresAt time.Time, key []byte) (models.IssuedToken, error) {
	token := jwt.NewWithClaims(
		m.alg,
		Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			SellerID: sellerID,
			Kind:     kind,
		},
	)

	value, err := token.SignedString(key)
	if err != nil {
		return models.IssuedToken{}, err
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt}, nil
}

// Parse and validate access token
// Return apperrors.ErrTokenExpired if token expired and apperrors.ErrTokenInvalid for any other failure
func (m *TokenManager) ParseAccess(access string) (uuid.UUID, error) {
	claims, err := m.parse(access, kindAccess, m.accessKey)
	return claims.SellerID, err
}

// Parse and validate refresh token signature and expiry. Store is not checked
func (m *TokenManager) ParseRefresh(refresh string) (uuid.UUID, error) {
	claims, err := m.parse(refresh, kindRefresh, m.refreshKey)
	return claims.SellerID, err
}

func (m *TokenManager) parse(value string, kind string, key []byte) (Claims, error) {
	claims := Claims{}

	_, err := jwt.ParseWithClaims(
		value,
		&claims,
		func(t *jwt.Token) (any, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims, fmt.Errorf("%s token: %w", kind, apperrors.ErrTokenExpired)
	case err != nil:
		return claims, fmt.Errorf("%s token: %w (%w)", kind, apperrors.ErrTokenInvalid, err)
	case claims.Kind != kind || claims.SellerID == uuid.Nil:
		return claims, fmt.Errorf("%s token: %w", kind, apperrors.ErrTokenInvalid)
	}

	return claims, nil
}

// Issue new pair and save the refresh token
// If exclusive all the seller's stored refresh tokens are deleted first
func (m *TokenManager) StartSession(ctx context.Context, sellerID uuid.UUID, exclusive bool) (models.TokenPair, error) {
	return m.StartSessionWith(ctx, m.storage, sellerID, exclusive)
}

// StartSession on the caller's storage, so the session joins a transaction the caller opened
func (m *TokenManager) StartSessionWith(ctx context.Context, storage repository.Storage, sellerID uuid.UUID, exclusive bool) (models.TokenPair, error) {
	var pair models.TokenPair

	err := storage.InTx(ctx, func(s repository.Storage) error {
		if exclusive {
			if _, err := s.Refresh().DeleteBySeller(ctx, sellerID); err != nil {
				return fmt.Errorf("error while deleting previous tokens. Err: %w", err)
			}
		}

		var err error
		pair, err = m.IssuePair(sellerID)
		if err != nil {
			return err
		}

		_, err = s.Refresh().Create(ctx, models.RefreshToken{
			ID:        uuid.New(),
			SellerID:  sellerID,
			Token:     pair.Refresh.Value,
			CreatedAt: m.now(),
			ExpiresAt: pair.Refresh.ExpiresAt,
		})
		if err != nil {
			return fmt.Errorf("error while saving refresh token. Err: %w", err)
		}

		return nil
	})

	return pair, err
}

// Exchange refresh token for a new pair. The stored row is overwritten in place
//
// Errors:
//   - apperrors.ErrTokenInvalid: bad signature or malformed token
//   - apperrors.ErrRefreshTokenNotFound: token is not stored (already rotated or revoked)
//   - apperrors.ErrRefreshTokenExpired: token expired, stored row is deleted
func (m *TokenManager) Rotate(ctx context.Context, refresh string) (uuid.UUID, models.TokenPair, error) {
	var pair models.TokenPair

	claims, err := m.parse(refresh, kindRefresh, m.refreshKey)
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		if _, delErr := m.storage.Refresh().Delete(ctx, claims.SellerID, refresh); delErr != nil {
			return uuid.Nil, pair, fmt.Errorf("error while deleting expired token. Err: %w", delErr)
		}
		return uuid.Nil, pair, fmt.Errorf("error while rotating token. Err: %w", apperrors.ErrRefreshTokenExpired)
	case err != nil:
		return uuid.Nil, pair, err
	}

	var expired bool
	err = m.storage.InTx(ctx, func(s repository.Storage) error {
		stored, err := s.Refresh().GetForUpdate(ctx, claims.SellerID, refresh)
		if err != nil {
			return err
		}

		if stored.IsExpired(m.now()) {
			expired = true
			return s.Refresh().DeleteByID(ctx, stored.ID)
		}

		pair, err = m.IssuePair(claims.SellerID)
		if err != nil {
			return err
		}

		_, err = s.Refresh().Replace(ctx, stored.ID, pair.Refresh.Value, pair.Refresh.ExpiresAt)
		return err
	})
	if err != nil {
		return uuid.Nil, models.TokenPair{}, fmt.Errorf("error while rotating token. Err: %w", err)
	}
	if expired {
		return uuid.Nil, models.TokenPair{}, fmt.Errorf("error while rotating token. Err: %w", apperrors.ErrRefreshTokenExpired)
	}

	return claims.SellerID, pair, nil
}

// Delete stored refresh token. Succeed even if nothing matched
func (m *TokenManager) Revoke(ctx context.Context, sellerID uuid.UUID, refresh string) error {
	_, err := m.storage.Refresh().Delete(ctx, sellerID, refresh)
	if err != nil {
		return fmt.Errorf("error while revoking token. Err: %w", err)
	}
	return nil
}

// Delete all the expired refresh tokens
func (m *TokenManager) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := m.storage.Refresh().DeleteExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("error while purging expired tokens. Err: %w", err)
	}
	return deleted, nil
}
