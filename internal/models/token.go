package models

import (
	"time"

	"github.com/google/uuid"
)

// Stored refresh token. At most one row per seller is expected while single session policy is on
type RefreshToken struct {
	ID        uuid.UUID
	SellerID  uuid.UUID
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (t RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager on signup, signin or refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
