package models

import (
	"time"

	"github.com/google/uuid"
)

type Seller struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	Phone        string
	PasswordHash string

	Profile SellerProfile
}

// Mutable part of the seller. Empty values mean the field was never filled
type SellerProfile struct {
	ShopName   string
	OwnerName  string
	Address    string
	City       string
	State      string
	Pincode    string
	OpenTime   string
	CloseTime  string
	Categories []string
}

// Partial profile update: nil fields stay unchanged
type SellerProfileUpdate struct {
	ShopName   *string
	OwnerName  *string
	Address    *string
	City       *string
	State      *string
	Pincode    *string
	OpenTime   *string
	CloseTime  *string
	Categories *[]string
}

func (u SellerProfileUpdate) IsEmpty() bool {
	return u == SellerProfileUpdate{}
}

func (s Seller) OwnerID() uuid.UUID {
	return s.ID
}
