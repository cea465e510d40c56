// Package uploads stores post images on Cloudinary or local disk.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedType is returned by Sniff for anything but the accepted image formats.
var ErrUnsupportedType = errors.New("only jpeg, png, gif and webp images are allowed")

var allowed = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Uploader persists an image and returns the URL clients fetch it from.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, name, ext string) (string, error)
}

// Sniff detects the image type from content, not the client's filename, and
// rewinds r. It returns the extension to store the file under.
func Sniff(r io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect image type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	for _, m := range allowed {
		if mtype.Is(m) {
			return mtype.Extension(), nil
		}
	}
	return "", ErrUnsupportedType
}

// New returns a Cloudinary uploader when cloudinaryURL is set and a disk
// uploader rooted at dir otherwise.
func New(cloudinaryURL, dir string, logger *slog.Logger) (Uploader, error) {
	if cloudinaryURL != "" {
		return NewCloudinary(cloudinaryURL)
	}
	if logger != nil {
		logger.Info("CLOUDINARY_URL not set, storing images on disk", slog.String("dir", dir))
	}
	return NewDisk(dir)
}
