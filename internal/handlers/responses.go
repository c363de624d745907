package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/fastandfab/sellerservice/internal/models"
)

// Seller as it is shown to clients. Password hash is never included
type sellerResponse struct {
	ID         uuid.UUID `json:"id"`
	Phone      string    `json:"phone"`
	ShopName   string    `json:"shopName"`
	OwnerName  string    `json:"ownerName"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	Pincode    string    `json:"pincode"`
	OpenTime   string    `json:"openTime"`
	CloseTime  string    `json:"closeTime"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newSellerResponse(s models.Seller) sellerResponse {
	categories := s.Profile.Categories
	if categories == nil {
		categories = []string{}
	}

	return sellerResponse{
		ID:         s.ID,
		Phone:      s.Phone,
		ShopName:   s.Profile.ShopName,
		OwnerName:  s.Profile.OwnerName,
		Address:    s.Profile.Address,
		City:       s.Profile.City,
		State:      s.Profile.State,
		Pincode:    s.Profile.Pincode,
		OpenTime:   s.Profile.OpenTime,
		CloseTime:  s.Profile.CloseTime,
		Categories: categories,
		CreatedAt:  s.CreatedAt,
	}
}

type productResponse struct {
	ID             uuid.UUID      `json:"id"`
	SellerID       uuid.UUID      `json:"sellerId"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	MRPPrice       float64        `json:"mrpPrice"`
	SellingPrice   float64        `json:"sellingPrice"`
	Images         []string       `json:"images"`
	Category       string         `json:"category"`
	Subcategory    string         `json:"subcategory"`
	SizeQuantities map[string]int `json:"sizeQuantities"`
	IsActive       bool           `json:"isActive"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func newProductResponse(p models.Product) productResponse {
	mrp, _ := p.MRPPrice.Float64()
	selling, _ := p.SellingPrice.Float64()

	images := p.Images
	if images == nil {
		images = []string{}
	}

	return productResponse{
		ID:             p.ID,
		SellerID:       p.SellerID,
		Name:           p.Name,
		Description:    p.Description,
		MRPPrice:       mrp,
		SellingPrice:   selling,
		Images:         images,
		Category:       p.Category,
		Subcategory:    p.Subcategory,
		SizeQuantities: p.SizeQuantities,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func newProductsResponse(products []models.Product) []productResponse {
	res := make([]productResponse, 0, len(products))
	for _, p := range products {
		res = append(res, newProductResponse(p))
	}
	return res
}
