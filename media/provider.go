package media

import (
	"context"
	"fmt"

	"github.com/inficom-solutions/portfolio-backend/config"
	"github.com/inficom-solutions/portfolio-backend/errs"
	"github.com/rs/zerolog/log"
)

// NewHost builds the host named by MEDIA_PROVIDER.
func NewHost(ctx context.Context, cfg map[string]string) (Host, error) {
	provider := config.GetString(cfg, "MEDIA_PROVIDER", ProviderCloudinary)
	log.Info().Str("provider", provider).Msg("Configuring media host")

	switch provider {
	case ProviderCloudinary:
		cloudinaryURL := config.GetString(cfg, "CLOUDINARY_URL", "")
		cloudName := config.GetString(cfg, "CLOUDINARY_CLOUD_NAME", "")
		if cloudinaryURL == "" && cloudName == "" {
			return nil, errs.NewConfigError("CLOUDINARY_URL")
		}
		return NewCloudinaryHost(
			cloudinaryURL,
			cloudName,
			config.GetString(cfg, "CLOUDINARY_API_KEY", ""),
			config.GetString(cfg, "CLOUDINARY_API_SECRET", ""),
			config.GetString(cfg, "CLOUDINARY_FOLDER", ""),
		)
	case ProviderS3:
		bucket := config.GetString(cfg, "S3_BUCKET", "")
		if bucket == "" {
			return nil, errs.NewConfigError("S3_BUCKET")
		}
		return NewS3Host(ctx, S3Options{
			Bucket:          bucket,
			Region:          config.GetString(cfg, "S3_REGION", config.GetString(cfg, "AWS_REGION", "us-east-1")),
			Prefix:          config.GetString(cfg, "S3_PREFIX", "portfolio"),
			PublicBaseURL:   config.GetString(cfg, "S3_PUBLIC_BASE_URL", ""),
			Endpoint:        config.GetString(cfg, "S3_ENDPOINT", ""),
			AccessKeyID:     config.GetString(cfg, "S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: config.GetString(cfg, "S3_SECRET_ACCESS_KEY", ""),
		})
	case ProviderLocal:
		return NewLocalHost(
			UploadDir(cfg),
			config.GetString(cfg, "PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", config.GetInt(cfg, "PORT", 8080))),
		)
	default:
		return nil, errs.NewInvalidConfigError("MEDIA_PROVIDER", fmt.Sprintf("unsupported value %q", provider))
	}
}

// UploadDir is the local directory served under /uploads, whatever the
// provider. The local provider also stores new images there.
func UploadDir(cfg map[string]string) string {
	return config.GetString(cfg, "UPLOAD_DIR", "uploads")
}

// NewQueue returns a Redis-backed queue when REDIS_URL is set and an
// in-memory one otherwise.
func NewQueue(cfg map[string]string) (Queue, error) {
	redisURL := config.GetString(cfg, "REDIS_URL", "")
	if redisURL == "" {
		log.Warn().Msg("REDIS_URL not set, orphaned images are queued in memory")
		return NewMemoryQueue(), nil
	}
	q, err := DialRedisQueue(redisURL, config.GetString(cfg, "ORPHAN_QUEUE_KEY", DefaultQueueKey))
	if err != nil {
		return nil, errs.NewServiceUnavailableError("redis", err)
	}
	return q, nil
}

// NewSweeperFromConfig reads the ORPHAN_* settings.
func NewSweeperFromConfig(host Host, queue Queue, cfg map[string]string) *Sweeper {
	return NewSweeper(host, queue,
		WithInterval(config.GetSeconds(cfg, "ORPHAN_SWEEP_INTERVAL_SECONDS", 300)),
		WithBatchSize(config.GetInt(cfg, "ORPHAN_BATCH_SIZE", 50)),
		WithMaxAttempts(config.GetInt(cfg, "ORPHAN_MAX_ATTEMPTS", 5)),
	)
}
