package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/handlers/render"
	"github.com/fastandfab/sellerservice/internal/handlers/sellerctx"
	"github.com/fastandfab/sellerservice/internal/logger"
	"github.com/fastandfab/sellerservice/internal/models"
)

func handleProfile(sellerService sellerService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, ok := sellerctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w, r, errors.New("seller is not in request context"))
			return
		}

		seller, err := sellerService.GetProfile(r.Context(), sellerID)

		switch {
		case err == nil:
			render.JSON(w, newSellerResponse(seller))
		case errors.Is(err, apperrors.ErrSellerNotFound):
			render.ServiceError(w, "Seller not found", http.StatusNotFound)
		default:
			l.Error("Failed to get profile", "error", err)
			render.InternalError(w, r, err)
		}
	})
}

func handleUpdateDetails(sellerService sellerService, l logger.Logger) http.Handler {
	type request struct {
		ShopName   *string   `json:"shopName" validate:"omitempty,max=200"`
		OwnerName  *string   `json:"ownerName" validate:"omitempty,max=200"`
		Address    *string   `json:"address" validate:"omitempty,max=500"`
		City       *string   `json:"city" validate:"omitempty,max=100"`
		State      *string   `json:"state" validate:"omitempty,max=100"`
		Pincode    *string   `json:"pincode" validate:"omitempty,numeric,len=6"`
		OpenTime   *string   `json:"openTime" validate:"omitempty,datetime=15:04"`
		CloseTime  *string   `json:"closeTime" validate:"omitempty,datetime=15:04"`
		Categories *[]string `json:"categories" validate:"omitempty,max=50,dive,required,max=100"`
	}

	type response struct {
		Message string         `json:"message"`
		Seller  sellerResponse `json:"seller"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, ok := sellerctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w, r, errors.New("seller is not in request context"))
			return
		}

		// Malformed id can't belong to the actor
		sellerID, err := uuid.Parse(r.PathValue("sellerId"))
		if err != nil {
			render.ServiceError(w, "You can only update your own details", http.StatusForbidden)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		seller, err := sellerService.UpdateProfile(r.Context(), actorID, sellerID, models.SellerProfileUpdate{
			ShopName:   data.ShopName,
			OwnerName:  data.OwnerName,
			Address:    data.Address,
			City:       data.City,
			State:      data.State,
			Pincode:    data.Pincode,
			OpenTime:   data.OpenTime,
			CloseTime:  data.CloseTime,
			Categories: data.Categories,
		})

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Seller details updated successfully", Seller: newSellerResponse(seller)})
		case errors.Is(err, apperrors.ErrForbidden):
			render.ServiceError(w, "You can only update your own details", http.StatusForbidden)
		case errors.Is(err, apperrors.ErrSellerNotFound):
			render.ServiceError(w, "Seller not found", http.StatusNotFound)
		default:
			l.Error("Failed to update seller details", "error", err)
			render.InternalError(w, r, err)
		}
	})
}
