package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/handlers/render"
	"github.com/fastandfab/sellerservice/internal/logger"
	"github.com/fastandfab/sellerservice/internal/service/product"
)

func handleListActiveProducts(productService productService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		products, err := productService.ListActive(r.Context(), product.ActiveFilter{
			CategoryPrefix: query.Get("category"),
			Subcategory:    query.Get("subcategory"),
		})
		if err != nil {
			l.Error("Failed to list active products", "error", err)
			render.InternalError(w, r, err)
			return
		}

		render.JSON(w, newProductsResponse(products))
	})
}

func handleListCategoryProducts(productService productService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		products, err := productService.ListActive(r.Context(), product.ActiveFilter{
			CategoryPrefix: r.PathValue("category"),
			Subcategory:    r.URL.Query().Get("subcategory"),
		})
		if err != nil {
			l.Error("Failed to list category products", "error", err)
			render.InternalError(w, r, err)
			return
		}

		render.JSON(w, newProductsResponse(products))
	})
}

func handleGetActiveProduct(productService productService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuid.Parse(r.PathValue("productId"))
		if err != nil {
			render.ServiceError(w, "Product not found", http.StatusNotFound)
			return
		}

		p, err := productService.GetActive(r.Context(), productID)

		switch {
		case err == nil:
			render.JSON(w, newProductResponse(p))
		case errors.Is(err, apperrors.ErrProductNotFound):
			render.ServiceError(w, "Product not found", http.StatusNotFound)
		default:
			l.Error("Failed to get active product", "error", err)
			render.InternalError(w, r, err)
		}
	})
}
