// Package media stores uploaded images on a remote host and reclaims the ones
// records no longer reference.
package media

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

const (
	ProviderCloudinary = "cloudinary"
	ProviderS3         = "s3"
	ProviderLocal      = "local"
)

// AllowedTypes maps every accepted image content type to its extension.
var AllowedTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Host is a place images can be sent to and removed from. Ids passed to
// Remove are the ones Upload was called with.
type Host interface {
	Name() string
	Upload(ctx context.Context, id string, upload Upload) (string, error)
	Remove(ctx context.Context, id string) error
}

// extension picks a file extension for upload, preferring the client's
// filename and falling back to the content type.
func extension(upload Upload) string {
	if ext := strings.ToLower(filepath.Ext(upload.Filename)); ext != "" && len(ext) <= 6 {
		return ext
	}
	return AllowedTypes[upload.ContentType]
}
