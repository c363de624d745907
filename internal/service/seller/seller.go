package seller

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/models"
	"github.com/fastandfab/sellerservice/internal/repository"
	"github.com/fastandfab/sellerservice/internal/service/ownership"
)

type SellerService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *SellerService {
	return &SellerService{storage: storage}
}

func (s *SellerService) GetProfile(ctx context.Context, sellerID uuid.UUID) (models.Seller, error) {
	seller, err := s.storage.Seller().GetSellerByID(ctx, sellerID)
	if err != nil {
		return seller, fmt.Errorf("can't get seller. Err: %w", err)
	}
	return seller, nil
}

// Apply partial profile update on behalf of the actor
// Only the seller itself may update its profile: apperrors.ErrForbidden otherwise
func (s *SellerService) UpdateProfile(ctx context.Context, actorID uuid.UUID, sellerID uuid.UUID, update models.SellerProfileUpdate) (models.Seller, error) {
	if err := ownership.Authorize(actorID, models.Seller{ID: sellerID}); err != nil {
		return models.Seller{}, err
	}

	if update.IsEmpty() {
		return s.GetProfile(ctx, sellerID)
	}

	seller, err := s.storage.Seller().UpdateProfile(ctx, sellerID, update)
	if err != nil {
		return seller, fmt.Errorf("can't update seller. Err: %w", err)
	}
	return seller, nil
}
