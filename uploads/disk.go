package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PublicPrefix is the route disk uploads are served under.
const PublicPrefix = "/uploads"

// Disk writes images under a local directory served at PublicPrefix.
type Disk struct {
	dir string
}

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{dir: dir}, nil
}

func (d *Disk) Dir() string { return d.dir }

func (d *Disk) Upload(_ context.Context, r io.Reader, name, ext string) (string, error) {
	filename := filepath.Base(name) + ext
	f, err := os.Create(filepath.Join(d.dir, filename))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return PublicPrefix + "/" + filename, nil
}
