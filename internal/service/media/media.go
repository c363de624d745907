package media

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/fastandfab/sellerservice/internal/apperrors"
	"github.com/fastandfab/sellerservice/internal/blobstore"
	"github.com/fastandfab/sellerservice/internal/logger"
)

const (
	DefaultMaxFiles    = 5
	DefaultMaxFileSize = 10 << 20 // 10MB
)

// Key for BLAKE3 keyed hashing of image content, zero padded to 32 bytes
var imageKey = [32]byte{
	's', 'e', 'l', 'l', 'e', 'r', 's', 'e', 'r', 'v', 'i', 'c', 'e', '.',
	'i', 'm', 'a', 'g', 'e',
}

// Raster formats accepted for product images. SVG is left out as it may carry scripts
var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/avif"}

// Uploaded file as received from client
type Upload struct {
	Filename string
	Body     io.Reader
}

type Config struct {
	MaxFiles    int
	MaxFileSize int64

	Logger logger.Logger
}

type MediaService struct {
	store       blobstore.Store
	maxFiles    int
	maxFileSize int64
	logger      logger.Logger
}

func NewService(cfg Config, store blobstore.Store) *MediaService {
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = DefaultMaxFiles
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &MediaService{
		store:       store,
		maxFiles:    cfg.MaxFiles,
		maxFileSize: cfg.MaxFileSize,
		logger:      cfg.Logger,
	}
}

// Bytes and detected type of a checked image
type image struct {
	data []byte
	mime *mimetype.MIME
}

// Check every file then store them all and return public URLs in upload order
// Nothing is stored unless every file passes the checks
// Files stored by this call are deleted if storing one of the rest fails
//
// Errors:
//   - apperrors.ErrImagesMissing, apperrors.ErrImagesTooMany: wrong number of files
//   - apperrors.ErrImageTooLarge: file exceeds size limit
//   - apperrors.ErrImageNotSupported: content is not an image
func (s *MediaService) UploadImages(ctx context.Context, sellerID uuid.UUID, uploads []Upload) ([]string, error) {
	switch {
	case len(uploads) == 0:
		return nil, apperrors.ErrImagesMissing
	case len(uploads) > s.maxFiles:
		return nil, fmt.Errorf("%w: at most %d allowed", apperrors.ErrImagesTooMany, s.maxFiles)
	}

	images := make([]image, 0, len(uploads))
	for _, u := range uploads {
		img, err := s.check(u)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	batch := uuid.New()
	urls := make([]string, 0, len(images))
	stored := make(map[string]string, len(images))
	keys := make([]string, 0, len(images))
	for _, img := range images {
		key := objectKey(sellerID, batch, img)
		if url, ok := stored[key]; ok {
			urls = append(urls, url)
			continue
		}

		url, err := s.store.Put(ctx, key, bytes.NewReader(img.data), int64(len(img.data)), img.mime.String())
		if err != nil {
			s.cleanup(ctx, keys)
			return nil, fmt.Errorf("can't store image. Err: %w", err)
		}

		stored[key] = url
		keys = append(keys, key)
		urls = append(urls, url)
	}

	return urls, nil
}

func (s *MediaService) check(u Upload) (image, error) {
	data, err := io.ReadAll(io.LimitReader(u.Body, s.maxFileSize+1))
	if err != nil {
		return image{}, fmt.Errorf("can't read %s. Err: %w", u.Filename, err)
	}
	if int64(len(data)) > s.maxFileSize {
		return image{}, fmt.Errorf("%w: %s", apperrors.ErrImageTooLarge, u.Filename)
	}

	mime := mimetype.Detect(data)
	for _, t := range allowedTypes {
		if mime.Is(t) {
			return image{data: data, mime: mime}, nil
		}
	}
	return image{}, fmt.Errorf("%w: %s is %s", apperrors.ErrImageNotSupported, u.Filename, mime.String())
}

func (s *MediaService) cleanup(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error("can't delete image after failed upload", "key", key, "error", err)
		}
	}
}

// Key is unique per upload batch. Same image within a batch is stored once
func objectKey(sellerID uuid.UUID, batch uuid.UUID, img image) string {
	hasher, err := blake3.NewKeyed(imageKey[:])
	if err != nil {
		panic("media: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	_, _ = hasher.Write(img.data)

	return "sellers/" + sellerID.String() + "/" + batch.String() + "/" + hex.EncodeToString(hasher.Sum(nil)) + img.mime.Extension()
}
