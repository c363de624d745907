package sellerctx

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const sellerKey ctxKey = "seller"

// Create a new context with the authenticated seller id
func New(ctx context.Context, sellerID uuid.UUID) context.Context {
	return context.WithValue(ctx, sellerKey, sellerID)
}

// Extract the authenticated seller id from the context
func FromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sellerKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
