package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/noah-isme/volunteer-hub-api/pkg/config"
)

// ObjectStore keeps publicly readable media such as avatars and posters.
type ObjectStore interface {
	// Put stores r under key, overwriting any existing object, and returns its public URL.
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Remove(ctx context.Context, key string) error
}

// NewObjectStore returns the store selected by the storage driver.
func NewObjectStore(cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "", config.StorageDriverLocal:
		fs, err := NewLocalStorage(cfg.LocalDir)
		if err != nil {
			return nil, err
		}
		return NewLocalObjectStore(fs, cfg.PublicBaseURL), nil
	case config.StorageDriverCloudinary:
		return NewCloudinaryStore(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinarySecret)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// LocalObjectStore serves objects from disk through the /uploads route.
type LocalObjectStore struct {
	fs      *LocalStorage
	baseURL string
}

// NewLocalObjectStore wraps a LocalStorage. baseURL prefixes returned links.
func NewLocalObjectStore(fs *LocalStorage, baseURL string) *LocalObjectStore {
	return &LocalObjectStore{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

// Put writes the object to disk.
func (s *LocalObjectStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	if _, err := s.fs.SaveStream(key, r); err != nil {
		return "", err
	}
	// cache-busting suffix so an overwritten avatar is refetched
	return fmt.Sprintf("%s/uploads/%s?v=%d", s.baseURL, key, time.Now().Unix()), nil
}

// Remove deletes the object.
func (s *LocalObjectStore) Remove(ctx context.Context, key string) error {
	return s.fs.Delete(key)
}

// Open exposes the file for the uploads route.
func (s *LocalObjectStore) Open(key string) (io.ReadSeekCloser, error) {
	return s.fs.Open(key)
}

// CloudinaryStore uploads objects to Cloudinary, using the key as public id.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore builds a client from account credentials.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Put uploads r and returns the secure URL.
func (s *CloudinaryStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:     publicID(key),
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Remove destroys the object.
func (s *CloudinaryStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID(key)}); err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}

// publicID strips the extension, which Cloudinary derives from the content.
func publicID(key string) string {
	return strings.TrimSuffix(key, path.Ext(key))
}
