package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sizes every new product starts with when seller does not provide quantities
var DefaultSizes = []string{"XS", "S", "M", "L", "XL"}

func DefaultSizeQuantities() map[string]int {
	q := make(map[string]int, len(DefaultSizes))
	for _, size := range DefaultSizes {
		q[size] = 0
	}
	return q
}

type Product struct {
	ID             uuid.UUID
	SellerID       uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Name           string
	Description    string
	MRPPrice       decimal.Decimal
	SellingPrice   decimal.Decimal
	Images         []string
	Category       string
	Subcategory    string
	SizeQuantities map[string]int
	IsActive       bool
}

// Version and visibility of a stored product
type ProductState struct {
	UpdatedAt time.Time
	IsActive  bool
}

func (p Product) OwnerID() uuid.UUID {
	return p.SellerID
}

// Partial product update: nil fields stay unchanged
type ProductUpdate struct {
	Name           *string
	Description    *string
	MRPPrice       *decimal.Decimal
	SellingPrice   *decimal.Decimal
	Images         *[]string
	Category       *string
	Subcategory    *string
	SizeQuantities *map[string]int
	IsActive       *bool
}

// Apply returns the product as it would look after the update
func (u ProductUpdate) Apply(p Product) Product {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.MRPPrice != nil {
		p.MRPPrice = *u.MRPPrice
	}
	if u.SellingPrice != nil {
		p.SellingPrice = *u.SellingPrice
	}
	if u.Images != nil {
		p.Images = *u.Images
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Subcategory != nil {
		p.Subcategory = *u.Subcategory
	}
	if u.SizeQuantities != nil {
		p.SizeQuantities = *u.SizeQuantities
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	return p
}
