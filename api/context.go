package api

import (
	"context"

	"github.com/inficom-solutions/portfolio-backend/media"
	"github.com/inficom-solutions/portfolio-backend/services"
)

type keyType string

const (
	claimsKey keyType = "claims"
	uploadKey keyType = "upload"
)

// ctxWithClaims adds the verified token claims to the context
func ctxWithClaims(ctx context.Context, claims *services.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ctxGetClaims retrieves the claims stored by the auth middleware
func ctxGetClaims(ctx context.Context) (*services.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*services.Claims)
	return claims, ok
}

// ctxWithUpload adds the image accepted by the upload middleware
func ctxWithUpload(ctx context.Context, upload *media.Upload) context.Context {
	return context.WithValue(ctx, uploadKey, upload)
}

func ctxGetUpload(ctx context.Context) *media.Upload {
	upload, _ := ctx.Value(uploadKey).(*media.Upload)
	return upload
}
