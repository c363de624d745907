package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/handlers/render"
	"github.com/fastandfab/sellerservice/internal/handlers/sellerctx"
	"github.com/fastandfab/sellerservice/internal/logger"
	"github.com/fastandfab/sellerservice/internal/models"
)

type productMessageResponse struct {
	Message string          `json:"message"`
	Product productResponse `json:"product"`
}

// Write response for errors common to product handlers. Return false if error is unexpected
func renderProductError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, apperrors.ErrProductNotFound):
		render.ServiceError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrForbidden):
		render.ServiceError(w, "You are not allowed to access this product", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrProductInvalidPrice):
		render.ServiceError(w, "Selling price cannot be greater than MRP", http.StatusBadRequest)
	default:
		return false
	}
	return true
}

func handleCreateProduct(productService productService, l logger.Logger) http.Handler {
	type request struct {
		Name           string           `json:"name" validate:"required,max=200"`
		Description    string           `json:"description" validate:"max=5000"`
		MRPPrice       *decimal.Decimal `json:"mrpPrice" validate:"required,gt=0,lte=9999999999.99"`
		SellingPrice   *decimal.Decimal `json:"sellingPrice" validate:"required,gt=0,lte=9999999999.99"`
		Images         []string         `json:"images" validate:"max=20,dive,required,url"`
		Category       string           `json:"category" validate:"required,max=100"`
		Subcategory    string           `json:"subcategory" validate:"max=100"`
		SizeQuantities map[string]int   `json:"sizeQuantities" validate:"max=50,dive,keys,required,max=20,endkeys,gte=0"`
		IsActive       *bool            `json:"isActive"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, ok := sellerctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w, r, errors.New("seller is not in request context"))
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		isActive := true
		if data.IsActive != nil {
			isActive = *data.IsActive
		}

		product, err := productService.Create(r.Context(), sellerID, models.Product{
			Name:           data.Name,
			Description:    data.Description,
			MRPPrice:       *data.MRPPrice,
			SellingPrice:   *data.SellingPrice,
			Images:         data.Images,
			Category:       data.Category,
			Subcategory:    data.Subcategory,
			SizeQuantities: data.SizeQuantities,
			IsActive:       isActive,
		})

		switch {
		case err == nil:
			render.JSONWithStatus(w, productMessageResponse{"Product created successfully", newProductResponse(product)}, http.StatusCreated)
		default:
			if renderProductError(w, err) {
				return
			}
			l.Error("Failed to create product", "error", err)
			render.InternalError(w, r, err)
		}
	})
}

func handleListProducts(productService productService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, ok := sellerctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w, r, errors.New("seller is not in request context"))
			return
		}

		products, err := productService.ListOwn(r.Context(), sellerID)
		if err != nil {
			l.Error("Failed to list products", "error", err)
			render.InternalError(w, r, err)
			return
		}

		render.JSON(w, newProductsResponse(products))
	})
}

func handleGetProduct(productService productService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, ok := sellerctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w, r, errors.New("seller is not in request context"))
			return
		}

		productID, err := uuid.Parse(r.PathValue("productId"))
		if err != nil {
			render.ServiceError(w, "Product not found", http.StatusNotFound)
			return
		}

		product, err := productService.GetOwned(r.Context(), sellerID, productID)

		switch {
		case err == nil:
			render.JSON(w, newProductResponse(product))
		default:
			if renderProductError(w, err) {
				return
			}
			l.Error("Failed to get product", "error", err)
			render.InternalError(w, r, err)
		}
	})
}

func handleUpdateProduct(productService productService, l logger.Logger) http.Handler {
	type request struct {
		Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
		Description    *string          `json:"description" validate:"omitempty,max=5000"`
		MRPPrice       *decimal.Decimal `json:"mrpPrice" validate:"omitempty,gt=0,lte=9999999999.99"`
		SellingPrice   *decimal.Decimal `json:"sellingPrice" validate:"omitempty,gt=0,lte=9999999999.99"`
		Images         *[]string        `json:"images" validate:"omitempty,max=20,dive,required,url"`
		Category       *string          `json:"category" validate:"omitempty,min=1,max=100"`
		Subcategory    *string          `json:"subcategory" validate:"omitempty,max=100"`
		SizeQuantities *map[string]int  `json:"sizeQuantities" validate:"omitempty,max=50,dive,keys,required,max=20,endkeys,gte=0"`
		IsActive       *bool            `json:"isActive"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, ok := sellerctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w, r, errors.New("seller is not in request context"))
			return
		}

		productID, err := uuid.Parse(r.PathValue("productId"))
		if err != nil {
			render.ServiceError(w, "Product not found", http.StatusNotFound)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		product, err := productService.Update(r.Context(), sellerID, productID, models.ProductUpdate{
			Name:           data.Name,
			Description:    data.Description,
			MRPPrice:       data.MRPPrice,
			SellingPrice:   data.SellingPrice,
			Images:         data.Images,
			Category:       data.Category,
			Subcategory:    data.Subcategory,
			SizeQuantities: data.SizeQuantities,
			IsActive:       data.IsActive,
		})

		switch {
		case err == nil:
			render.JSON(w, productMessageResponse{"Product updated successfully", newProductResponse(product)})
		default:
			if renderProductError(w, err) {
				return
			}
			l.Error("Failed to update product", "error", err)
			render.InternalError(w, r, err)
		}
	})
}

func handleDeleteProduct(productService productService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, ok := sellerctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w, r, errors.New("seller is not in request context"))
			return
		}

		productID, err := uuid.Parse(r.PathValue("productId"))
		if err != nil {
			render.ServiceError(w, "Product not found", http.StatusNotFound)
			return
		}

		err = productService.Delete(r.Context(), sellerID, productID)

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Product deleted successfully"})
		default:
			if renderProductError(w, err) {
				return
			}
			l.Error("Failed to delete product", "error", err)
			render.InternalError(w, r, err)
		}
	})
}
