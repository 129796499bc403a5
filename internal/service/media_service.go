package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
	"github.com/noah-isme/volunteer-hub-api/pkg/storage"
)

// Upload carries an uploaded file stream with its declared metadata.
type Upload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// MediaConfig bounds image uploads.
type MediaConfig struct {
	AvatarMaxBytes int64
	PosterMaxBytes int64
	AllowedMIMEs   []string
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// MediaService validates images and stores them in the object store.
type MediaService struct {
	store   storage.ObjectStore
	logger  *zap.Logger
	cfg     MediaConfig
	mimeSet map[string]struct{}
}

// NewMediaService constructs a MediaService with default limits.
func NewMediaService(store storage.ObjectStore, logger *zap.Logger, cfg MediaConfig) *MediaService {
	if cfg.AvatarMaxBytes <= 0 {
		cfg.AvatarMaxBytes = 5 << 20
	}
	if cfg.PosterMaxBytes <= 0 {
		cfg.PosterMaxBytes = 10 << 20
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &MediaService{store: store, logger: newLogger(logger), cfg: cfg, mimeSet: mimeSet}
}

// StoreAvatar writes the profile avatar, replacing the previous one.
func (s *MediaService) StoreAvatar(ctx context.Context, profileID string, upload Upload) (string, error) {
	return s.storeImage(ctx, "avatars/"+profileID+"/avatar", upload, s.cfg.AvatarMaxBytes)
}

// StorePoster writes a poster for an event or training.
func (s *MediaService) StorePoster(ctx context.Context, ownerID string, upload Upload) (string, error) {
	return s.storeImage(ctx, "event-posters/"+ownerID, upload, s.cfg.PosterMaxBytes)
}

func (s *MediaService) storeImage(ctx context.Context, keyBase string, upload Upload, maxBytes int64) (string, error) {
	if upload.Content == nil || upload.Size <= 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > maxBytes {
		return "", appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes limit", maxBytes))
	}
	mimeType, err := sniffContentType(upload.Content)
	if err != nil {
		return "", err
	}
	if _, ok := s.mimeSet[mimeType]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "only image uploads are allowed")
	}
	ext, ok := imageExtensions[mimeType]
	if !ok {
		ext = "bin"
	}
	key := keyBase + "." + ext
	url, err := s.store.Put(ctx, key, io.LimitReader(upload.Content, maxBytes))
	if err != nil {
		s.logger.Warn("object store upload failed", zap.String("key", key), zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrDependency.Code, appErrors.ErrDependency.Status, "failed to store file")
	}
	return url, nil
}

func sniffContentType(r io.ReadSeeker) (string, error) {
	header := make([]byte, 512)
	n, err := r.Read(header)
	if err != nil && err != io.EOF {
		return "", internalError(err, "failed to inspect file")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", internalError(err, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	mimeType := http.DetectContentType(header[:n])
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(mimeType), nil
}
