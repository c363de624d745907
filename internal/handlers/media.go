package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/blobstore"
	"github.com/fastandfab/sellerservice/internal/handlers/render"
	"github.com/fastandfab/sellerservice/internal/handlers/sellerctx"
	"github.com/fastandfab/sellerservice/internal/logger"
	"github.com/fastandfab/sellerservice/internal/service/media"
)

const (
	imagesField = "images"

	// Room for one file more than allowed so too many files is reported as such
	maxUploadBody   = (media.DefaultMaxFiles+1)*media.DefaultMaxFileSize + 1<<20
	maxUploadMemory = 32 << 20
)

func handleUploadImages(mediaService mediaService, l logger.Logger) http.Handler {
	type response struct {
		Message string   `json:"message"`
		URLs    []string `json:"urls"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID, ok := sellerctx.FromContext(r.Context())
		if !ok {
			render.InternalError(w, r, errors.New("seller is not in request context"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		err := r.ParseMultipartForm(maxUploadMemory)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			switch {
			case errors.As(err, &maxBytesErr):
				render.ServiceError(w, "Upload is too large", http.StatusRequestEntityTooLarge)
			default:
				render.ServiceError(w, "Request must be multipart/form-data with images", http.StatusBadRequest)
			}
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File[imagesField]
		uploads := make([]media.Upload, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				l.Error("Failed to open uploaded file", "error", err)
				render.InternalError(w, r, err)
				return
			}
			defer f.Close()

			uploads = append(uploads, media.Upload{Filename: fh.Filename, Body: f})
		}

		urls, err := mediaService.UploadImages(r.Context(), sellerID, uploads)

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Images uploaded successfully", URLs: urls})
		case errors.Is(err, apperrors.ErrImagesMissing):
			render.ServiceError(w, "No images uploaded", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrImagesTooMany):
			render.ServiceError(w, fmt.Sprintf("At most %d images allowed", media.DefaultMaxFiles), http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrImageTooLarge):
			render.ServiceError(w, "Image exceeds 10MB", http.StatusRequestEntityTooLarge)
		case errors.Is(err, apperrors.ErrImageNotSupported):
			render.ServiceError(w, "Only image files are allowed", http.StatusUnsupportedMediaType)
		default:
			l.Error("Failed to upload images", "error", err)
			render.InternalError(w, r, err)
		}
	})
}

// Serve stored images through the API, whichever blob store is configured
func handleGetMedia(blobs blobReader, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, contentType, err := blobs.Get(r.Context(), r.PathValue("key"))

		switch {
		case err == nil:
			w.Header().Set("Content-Type", contentType)
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			_, _ = w.Write(data)
		case errors.Is(err, blobstore.ErrNotFound):
			http.NotFound(w, r)
		default:
			l.Error("Failed to read media", "error", err)
			render.InternalError(w, r, err)
		}
	})
}
