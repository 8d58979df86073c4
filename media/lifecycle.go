package media

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Lifecycle uploads new images and removes replaced ones. Removal failures are
// queued as orphans instead of being returned.
type Lifecycle struct {
	host   Host
	queue  Queue
	newID  func() string
	logger zerolog.Logger
}

func NewLifecycle(host Host, queue Queue) *Lifecycle {
	return &Lifecycle{
		host:   host,
		queue:  queue,
		newID:  uuid.NewString,
		logger: log.With().Str("component", "media").Str("provider", host.Name()).Logger(),
	}
}

// Upload sends the image to the host and returns its permanent URL.
func (l *Lifecycle) Upload(ctx context.Context, upload Upload) (string, error) {
	id := l.newID()
	imageURL, err := l.host.Upload(ctx, id, upload)
	if err != nil {
		l.logger.Error().Err(err).Str("filename", upload.Filename).Msg("Image upload failed")
		return "", errs.NewUploadError(l.host.Name(), err)
	}
	l.logger.Info().Str("id", id).Str("url", imageURL).Msg("Image uploaded")
	return imageURL, nil
}

// Remove deletes the image behind ref from the host. References that are not
// absolute http(s) URLs are ignored.
func (l *Lifecycle) Remove(ctx context.Context, ref string) {
	id := PublicID(ref)
	if id == "" {
		return
	}

	if err := l.host.Remove(ctx, id); err != nil {
		l.logger.Warn().Err(errs.NewMediaRemoveError(l.host.Name(), id, err)).Msg("Image removal failed, queued for retry")
		orphan := Orphan{ID: id, URL: ref, Attempts: 1, FailedAt: time.Now().UTC()}
		if qErr := l.queue.Push(ctx, orphan); qErr != nil {
			l.logger.Error().Err(qErr).Str("id", id).Msg("Could not queue orphaned image")
		}
		return
	}
	l.logger.Info().Str("id", id).Msg("Image removed")
}

// PublicID derives the host-side id of an image URL: its last path segment up
// to the first dot. It returns "" for anything but an absolute http(s) URL.
func PublicID(ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	id, _, _ := strings.Cut(base, ".")
	return id
}
