package processor

import (
	"context"
	"io"
)

// ImageProcessor validates, shrinks and stores an uploaded image, returning
// the public URL the stored attachment is reachable at.
type ImageProcessor interface {
	Process(ctx context.Context, r io.Reader) (string, error)
}
