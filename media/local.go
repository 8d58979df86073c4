package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalHost writes images to a directory that the HTTP server exposes under
// /uploads. URLs are absolute so they are removed like any remote image.
type LocalHost struct {
	dir     string
	baseURL string
}

func NewLocalHost(dir, publicBaseURL string) (*LocalHost, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalHost{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/") + "/uploads",
	}, nil
}

func (h *LocalHost) Name() string {
	return ProviderLocal
}

func (h *LocalHost) Upload(ctx context.Context, id string, upload Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := id + extension(upload)
	f, err := os.OpenFile(filepath.Join(h.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, upload.Body); err != nil {
		f.Close()
		return "", errors.Join(err, os.Remove(f.Name()))
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return h.baseURL + "/" + name, nil
}

// Remove deletes every file named id with any extension. A missing file is
// not an error.
func (h *LocalHost) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" || strings.ContainsAny(id, `/\*?[`) {
		return fmt.Errorf("invalid image id %q", id)
	}
	matches, err := filepath.Glob(filepath.Join(h.dir, id+".*"))
	if err != nil {
		return err
	}
	matches = append(matches, filepath.Join(h.dir, id))
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
