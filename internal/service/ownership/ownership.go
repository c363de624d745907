// Package ownership decides whether an authenticated seller may mutate a resource.
package ownership

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/apperrors"
)

// Resource that belongs to one seller
type Owned interface {
	OwnerID() uuid.UUID
}

// Return apperrors.ErrForbidden unless the actor owns the resource
func Authorize(actorID uuid.UUID, resource Owned) error {
	if actorID == uuid.Nil || resource.OwnerID() != actorID {
		return fmt.Errorf("ownership: %w", apperrors.ErrForbidden)
	}
	return nil
}
