package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/models"
	"github.com/fastandfab/sellerservice/internal/repository"
)

const (
	defaultAccessAuthScheme = "Bearer"
)

// Interface to create or compare seller password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and seller provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Token manager used by auth service
type TokenManager interface {
	StartSession(ctx context.Context, sellerID uuid.UUID, exclusive bool) (models.TokenPair, error)
	StartSessionWith(ctx context.Context, storage repository.Storage, sellerID uuid.UUID, exclusive bool) (models.TokenPair, error)
	Rotate(ctx context.Context, refresh string) (uuid.UUID, models.TokenPair, error)
	Revoke(ctx context.Context, sellerID uuid.UUID, refresh string) error
	ParseAccess(access string) (uuid.UUID, error)
}

type Config struct {
	// Hasher to use during seller registration or login process
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// Keep previous refresh tokens on signin
	// Off by default: signin revokes every other session of the seller
	MultiSession bool

	// Authorization header scheme. "Bearer" if not set
	AccessAuthScheme string
}

// Session flows: signup, signin, refresh, logout and access token check
type AuthService struct {
	hasher       PasswordHasher
	multiSession bool
	scheme       string

	tokenManager TokenManager
	storage      repository.Storage
}

func NewService(cfg Config, tokenManager TokenManager, storage repository.Storage) (*AuthService, error) {
	if cfg.Hasher == nil {
		cfg.Hasher = BcryptHasher{}
	}
	if cfg.AccessAuthScheme == "" {
		cfg.AccessAuthScheme = defaultAccessAuthScheme
	}

	return &AuthService{
		hasher:       cfg.Hasher,
		multiSession: cfg.MultiSession,
		scheme:       cfg.AccessAuthScheme,
		tokenManager: tokenManager,
		storage:      storage,
	}, nil
}

// Register new seller and open its first session
// Seller is not saved if the session can't be started
func (s *AuthService) Signup(ctx context.Context, phone string, password string) (models.Seller, models.TokenPair, error) {
	var (
		seller models.Seller
		pair   models.TokenPair
	)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return seller, pair, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		var err error

		seller, err = st.Seller().CreateSeller(ctx, phone, hash)
		if err != nil {
			return fmt.Errorf("can't create seller. Err: %w", err)
		}

		pair, err = s.tokenManager.StartSessionWith(ctx, st, seller.ID, false)
		if err != nil {
			return fmt.Errorf("token could not be issued. Err: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Seller{}, models.TokenPair{}, err
	}

	return seller, pair, nil
}

// Check credentials and open new session
//
// Errors:
//   - apperrors.ErrSellerNotFound: no seller with the phone
//   - apperrors.ErrInvalidPassword: password does not match
func (s *AuthService) Signin(ctx context.Context, phone string, password string) (models.Seller, models.TokenPair, error) {
	var pair models.TokenPair

	seller, err := s.storage.Seller().GetSellerByPhone(ctx, phone)
	if err != nil {
		return seller, pair, err
	}

	if err := s.hasher.Compare(seller.PasswordHash, password); err != nil {
		return models.Seller{}, pair, apperrors.ErrInvalidPassword
	}

	pair, err = s.tokenManager.StartSession(ctx, seller.ID, !s.multiSession)
	if err != nil {
		return seller, pair, fmt.Errorf("token could not be issued. Err: %w", err)
	}

	return seller, pair, nil
}

// Rotate refresh token and return new pair with the seller it belongs to
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.Seller, models.TokenPair, error) {
	if refresh == "" {
		return models.Seller{}, models.TokenPair{}, apperrors.ErrRefreshTokenMissing
	}

	sellerID, pair, err := s.tokenManager.Rotate(ctx, refresh)
	if err != nil {
		return models.Seller{}, pair, err
	}

	seller, err := s.storage.Seller().GetSellerByID(ctx, sellerID)
	if err != nil {
		return seller, models.TokenPair{}, fmt.Errorf("can't get seller. Err: %w", err)
	}

	return seller, pair, nil
}

// Revoke the seller's refresh token. Unknown token is not an error
func (s *AuthService) Logout(ctx context.Context, sellerID uuid.UUID, refresh string) error {
	if refresh == "" {
		return apperrors.ErrRefreshTokenMissing
	}
	return s.tokenManager.Revoke(ctx, sellerID, refresh)
}

// Validate Authorization header value and return seller id
//
// Errors:
//   - apperrors.ErrAuthRequired: header missing or not "<scheme> <token>"
//   - apperrors.ErrTokenMissing: token part is empty
//   - apperrors.ErrTokenInvalid, apperrors.ErrTokenExpired: token check failed
func (s *AuthService) Authenticate(header string) (uuid.UUID, error) {
	// Transport trims trailing spaces, so bare "Bearer" counts as a scheme with empty token
	scheme, token, _ := strings.Cut(strings.TrimSpace(header), " ")
	if !strings.EqualFold(scheme, s.scheme) {
		return uuid.Nil, apperrors.ErrAuthRequired
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, apperrors.ErrTokenMissing
	}

	sellerID, err := s.tokenManager.ParseAccess(token)
	switch {
	case err == nil:
		return sellerID, nil
	case errors.Is(err, apperrors.ErrTokenExpired), errors.Is(err, apperrors.ErrTokenInvalid):
		return uuid.Nil, err
	default:
		return uuid.Nil, fmt.Errorf("unexpected token check failure: %w", err)
	}
}
