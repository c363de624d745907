package apperrors

import (
	"errors"
)

var (
	ErrSellerPhoneTaken = errors.New("phone number already registered")
	ErrSellerNotFound   = errors.New("seller not found")
	ErrInvalidPassword  = errors.New("invalid password")

	ErrAuthRequired = errors.New("authorization header is missing or malformed")
	ErrTokenMissing = errors.New("token is missing")
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token is expired")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")
	ErrRefreshTokenMissing  = errors.New("refresh token is missing")

	ErrForbidden = errors.New("actor is not the owner of the resource")

	ErrProductNotFound     = errors.New("product not found")
	ErrProductInvalidPrice = errors.New("selling price cannot be greater than MRP")

	ErrImagesMissing     = errors.New("no images uploaded")
	ErrImagesTooMany     = errors.New("too many images")
	ErrImageTooLarge     = errors.New("image is too large")
	ErrImageNotSupported = errors.New("file is not an image")
)
