// Package media stores uploaded product images.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Object describes a stored file.
type Object struct {
	// Key is the storage-relative key the file was saved under.
	Key string
	// URL is where clients can fetch the file.
	URL string
}

// Store saves image bytes under a key.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (*Object, error)
}

// localStore implements Store on the local file system.
type localStore struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewLocalStore creates a Store writing under dir and serving from baseURL.
func NewLocalStore(dir, baseURL string, logger zerolog.Logger) Store {
	return &localStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "local-media-store").Logger(),
	}
}

func (s *localStore) Put(ctx context.Context, key, contentType string, data []byte) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean("/" + key)[1:]
	if clean == "" {
		return nil, fmt.Errorf("invalid media key %q", key)
	}
	path := filepath.Join(s.dir, filepath.FromSlash(clean))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to create media directory")
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write media file")
		return nil, fmt.Errorf("failed to write media file %s: %w", path, err)
	}

	s.logger.Info().
		Str("key", clean).
		Int("bytes", len(data)).
		Msg("media file stored locally")

	return &Object{Key: clean, URL: s.baseURL + "/" + clean}, nil
}

// fallbackStore tries S3 first, then falls back to the local file system.
type fallbackStore struct {
	s3        Store
	local     Store
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackStore creates a Store that tries s3 first when enabled, then
// falls back to local. s3 may be nil.
func NewFallbackStore(s3, local Store, s3Enabled bool, logger zerolog.Logger) Store {
	return &fallbackStore{
		s3:        s3,
		local:     local,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "fallback-media-store").Logger(),
	}
}

func (s *fallbackStore) Put(ctx context.Context, key, contentType string, data []byte) (*Object, error) {
	if s.s3Enabled && s.s3 != nil {
		obj, err := s.s3.Put(ctx, key, contentType, data)
		if err == nil {
			return obj, nil
		}

		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("failed to store in S3, falling back to local file system")
	} else {
		s.logger.Debug().
			Bool("s3_enabled", s.s3Enabled).
			Bool("has_s3_store", s.s3 != nil).
			Msg("S3 disabled or not configured, using local file system")
	}

	return s.local.Put(ctx, key, contentType, data)
}
