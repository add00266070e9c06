// Package media decodes, crops and stores avatar and post images as WebP.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"hackit/internal/config"
	"hackit/internal/models"
	"hackit/internal/observability"
)

const (
	DefaultMediaDir        = "uploads"
	DefaultMaxUploadSizeMB = 10
	AvatarSize             = 512
	MasterMaxSize          = 2048
	WebPQuality            = 70
	URLPrefix              = "/media"
)

// Kinds of stored images. Each lives in its own subdirectory.
const (
	KindAvatar = "avatars"
	KindPost   = "posts"
)

// ErrInvalidDataURL is returned for avatar payloads that are not base64 image data URLs.
var ErrInvalidDataURL = errors.New("invalid image data URL")

// Upload is one image as received from the client.
type Upload struct {
	OwnerID     string
	Filename    string
	ContentType string
	Content     []byte
}

// Store writes processed images under a root directory and hands back their URLs.
type Store struct {
	dir                string
	maxUploadSizeBytes int64
}

// NewStore returns a Store configured from MEDIA_DIR and MEDIA_MAX_UPLOAD_MB.
func NewStore(cfg *config.Config) *Store {
	dir := DefaultMediaDir
	maxUploadSizeMB := DefaultMaxUploadSizeMB
	if cfg != nil {
		if cfg.MediaDir != "" {
			dir = cfg.MediaDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}
	return &Store{dir: dir, maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024}
}

// Dir is the root directory served under URLPrefix.
func (s *Store) Dir() string {
	return s.dir
}

// DecodeDataURL splits "data:image/png;base64,..." into its bytes and media type.
func DecodeDataURL(dataURL string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrInvalidDataURL
	}
	contentType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, "", ErrInvalidDataURL
	}
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", ErrInvalidDataURL
	}
	return content, normalizeContentType(contentType), nil
}

// decode validates size, sniffed type and declared type, then decodes the image.
func (s *Store) decode(in Upload) (image.Image, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(in.Content)) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	sourceMimeType, ok := formatMIME[format]
	if !ok {
		return nil, models.NewValidationError("Unsupported image format")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && provided != sourceMimeType {
		return nil, models.NewValidationError("Image content type mismatch")
	}
	return decoded, nil
}

// SaveAvatar square-crops the image, scales it to AvatarSize and stores it as WebP.
func (s *Store) SaveAvatar(ctx context.Context, in Upload) (string, error) {
	decoded, err := s.decode(in)
	if err != nil {
		return "", err
	}
	b := decoded.Bounds()
	square := scaleTo(crop(decoded, cropRect(b.Dx(), b.Dy(), aspectSquare.ratio)), AvatarSize, AvatarSize)
	return s.store(ctx, KindAvatar, in.OwnerID, square)
}

// SavePostImage crops to the closest allowed aspect ratio, caps the long edge at
// MasterMaxSize and stores the result as WebP.
func (s *Store) SavePostImage(ctx context.Context, in Upload) (string, error) {
	decoded, err := s.decode(in)
	if err != nil {
		return "", err
	}
	b := decoded.Bounds()
	_, r := selectCropMode(b.Dx(), b.Dy())
	master := fitWithin(crop(decoded, r), MasterMaxSize)
	return s.store(ctx, KindPost, in.OwnerID, master)
}

func (s *Store) store(ctx context.Context, kind, owner string, img image.Image) (string, error) {
	encoded, err := encodeWebP(img, WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	hash := contentHash(owner, encoded)
	rel := filepath.ToSlash(filepath.Join(kind, hash+".webp"))
	abs := filepath.Join(s.dir, rel)

	// Identical content from the same owner maps to the same file.
	if _, statErr := os.Stat(abs); statErr != nil {
		if err := writeFile(abs, encoded); err != nil {
			return "", models.NewInternalError(err)
		}
		observability.GlobalLogger.InfoContext(ctx, "stored image", "kind", kind, "hash", hash, "bytes", len(encoded))
	}
	return URLPrefix + "/" + rel, nil
}

// Resolve maps a stored image URL path back to its file, rejecting anything
// that is not a known kind and a hex content hash.
func (s *Store) Resolve(kind, name string) (string, error) {
	if kind != KindAvatar && kind != KindPost {
		return "", models.NewNotFoundError("Image", name)
	}
	hash, ok := strings.CutSuffix(name, ".webp")
	if !ok || !isValidHash(hash) {
		return "", models.NewValidationError("Invalid image name")
	}
	full := filepath.Join(s.dir, kind, name)
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("Image", name)
		}
		return "", models.NewInternalError(err)
	}
	return full, nil
}
