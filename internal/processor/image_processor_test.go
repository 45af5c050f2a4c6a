package processor_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/arcadia-live/chat-service/internal/config"
	"github.com/arcadia-live/chat-service/internal/processor"
	"github.com/arcadia-live/chat-service/pkg/storage"
)

func newProcessor(t *testing.T) (*processor.UploadImageProcessor, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	proc := processor.NewUploadImageProcessor(store, config.UploadConfig{
		MaxBytes:    10 << 20,
		MaxWidth:    1200,
		MaxHeight:   1200,
		JPEGQuality: 80,
		URLPrefix:   "/uploads",
	})
	return proc, store
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// storedImage reads back the stored attachment referenced by url and decodes
// it.
func storedImage(t *testing.T, store *storage.LocalStorage, url string) image.Image {
	t.Helper()
	key := strings.TrimPrefix(url, "/uploads/")
	rc, err := store.Read(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()

	img, err := imaging.Decode(rc)
	require.NoError(t, err)
	return img
}

func TestProcessShrinksOversizedImage(t *testing.T) {
	req := require.New(t)
	proc, store := newProcessor(t)

	url, err := proc.Process(context.Background(), bytes.NewReader(encodePNG(t, 2400, 1200)))
	req.NoError(err)
	req.True(strings.HasPrefix(url, "/uploads/compressed-"))
	req.True(strings.HasSuffix(url, ".jpg"))

	bounds := storedImage(t, store, url).Bounds()
	req.LessOrEqual(bounds.Dx(), 1200)
	req.LessOrEqual(bounds.Dy(), 1200)
	// Aspect ratio preserved: 2:1 input stays 2:1.
	req.Equal(bounds.Dx(), 2*bounds.Dy())
}

func TestProcessNeverEnlarges(t *testing.T) {
	req := require.New(t)
	proc, store := newProcessor(t)

	url, err := proc.Process(context.Background(), bytes.NewReader(encodePNG(t, 100, 60)))
	req.NoError(err)

	bounds := storedImage(t, store, url).Bounds()
	req.Equal(100, bounds.Dx())
	req.Equal(60, bounds.Dy())
}

func TestProcessRejectsNonImage(t *testing.T) {
	req := require.New(t)
	proc, _ := newProcessor(t)

	_, err := proc.Process(context.Background(), strings.NewReader("plain text, not pixels"))
	req.ErrorIs(err, processor.ErrNotImage)
}

func TestProcessKeysAreUnique(t *testing.T) {
	req := require.New(t)
	proc, _ := newProcessor(t)

	payload := encodePNG(t, 10, 10)
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		url, err := proc.Process(context.Background(), bytes.NewReader(payload))
		req.NoError(err)
		req.False(seen[url], "duplicate key %s", url)
		seen[url] = true
	}
}
