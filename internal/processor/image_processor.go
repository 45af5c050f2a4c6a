// Package processor turns raw uploads into bounded, JPEG-encoded
// attachments.
package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/arcadia-live/chat-service/internal/config"
	"github.com/arcadia-live/chat-service/pkg/log"
	"github.com/arcadia-live/chat-service/pkg/storage"
)

// ErrNotImage is returned when the uploaded payload is not one of the
// accepted image formats. Detection sniffs the content, never the client
// supplied header.
var ErrNotImage = errors.New("only image files are allowed")

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadImageProcessor implements ImageProcessor on top of a storage
// backend. Every accepted image is scaled to fit inside the configured
// bounds (never enlarged) and re-encoded as JPEG.
type UploadImageProcessor struct {
	store       storage.Storage
	maxWidth    int
	maxHeight   int
	jpegQuality int
	urlPrefix   string
}

func NewUploadImageProcessor(store storage.Storage, cfg config.UploadConfig) *UploadImageProcessor {
	return &UploadImageProcessor{
		store:       store,
		maxWidth:    cfg.MaxWidth,
		maxHeight:   cfg.MaxHeight,
		jpegQuality: cfg.JPEGQuality,
		urlPrefix:   cfg.URLPrefix,
	}
}

// Process reads the upload, verifies it is an accepted image format,
// shrinks it to the configured bounds and stores the JPEG result. The
// returned URL references the stored attachment; nothing ties it to a chat
// message yet, an upload the client never sends stays orphaned.
func (p *UploadImageProcessor) Process(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	mtype := mimetype.Detect(data)
	if !allowedTypes[mtype.String()] {
		return "", fmt.Errorf("%w: got %s", ErrNotImage, mtype.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	// Fit scales down to the bounding box and never enlarges.
	resized := imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(p.jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	key := fmt.Sprintf("compressed-%d-%09d.jpg", time.Now().UnixMilli(), rand.Intn(1e9))
	if err := p.store.Write(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "image/jpeg"); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("key", key).
		Int("bytes_in", len(data)).
		Int("bytes_out", buf.Len()).
		Msg("stored resized upload")

	return p.urlPrefix + "/" + key, nil
}
