package handlers

import (
	"errors"
	"net/http"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/handlers/render"
	"github.com/fastandfab/sellerservice/internal/handlers/sellerctx"
	"github.com/fastandfab/sellerservice/internal/logger"
	"github.com/fastandfab/sellerservice/internal/models"
)

// Response of every flow that opens or extends a session
type sessionResponse struct {
	Message      string         `json:"message"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	Seller       sellerResponse `json:"seller"`
}

func newSessionResponse(message string, seller models.Seller, pair models.TokenPair) sessionResponse {
	return sessionResponse{
		Message:      message,
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		Seller:       newSellerResponse(seller),
	}
}

type credentialsRequest struct {
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func handleSignup(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentialsRequest](w, r)
		if err != nil {
			return
		}

		seller, pair, err := authService.Signup(r.Context(), data.Phone, data.Password)

		switch {
		case err == nil:
			render.JSONWithStatus(w, newSessionResponse("Seller registered successfully", seller, pair), http.StatusCreated)
		case errors.Is(err, apperrors.ErrSellerPhoneTaken):
			render.ServiceError(w, "Phone number already registered", http.StatusBadRequest)
		default:
			l.Error("Failed to signup", "error", err)
			render.InternalError(w, r, err)
		}
	})
}

func handleSignin(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentialsRequest](w, r)
		if err != nil {
			return
		}

		seller, pair, err := authService.Signin(r.Context(), data.Phone, data.Password)

		switch {
		case err == nil:
			render.JSON(w, newSessionResponse("Signed in successfully", seller, pair))
		case errors.Is(err, apperrors.ErrSellerNotFound):
			render.ServiceError(w, "Seller not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvalidPassword):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			l.Error("Failed to signin", "error", err)
			render.InternalError(w, r, err)
		}
	})
}

func handleTokenRefresh(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[refreshRequest](w, r)
		if err != nil {
			return
		}

		seller, pair, err := authService.Refresh(r.Context(), data.RefreshToken)

		switch {
		case err == nil:
			render.JSON(w, newSessionResponse("Tokens refreshed successfully", seller, pair))
		case errors.Is(err, apperrors.ErrRefreshTokenMissing):
			render.ServiceError(w, "Refresh token is required", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrRefreshTokenExpired), errors.Is(err, apperrors.ErrTokenExpired):
			render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrRefreshTokenNotFound), errors.Is(err, apperrors.ErrSellerNotFound):
			render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrTokenInvalid):
			render.ServiceError(w, "Invalid refresh token", http.StatusUnauthorized)
		default:
			l.Error("Failed to refresh tokens", "error", err)
			render.InternalError(w, r, err)
		}
	})
}

func handleLogout(authService authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, ok := sellerctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w, r, errors.New("seller is not in request context"))
			return
		}

		data, err := render.BindAndValidate[refreshRequest](w, r)
		if err != nil {
			return
		}

		err = authService.Logout(r.Context(), sellerID, data.RefreshToken)

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Logged out successfully"})
		case errors.Is(err, apperrors.ErrRefreshTokenMissing):
			render.ServiceError(w, "Refresh token is required", http.StatusBadRequest)
		default:
			l.Error("Failed to logout", "error", err)
			render.InternalError(w, r, err)
		}
	})
}
