package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// cloudinaryAPI is the part of the Cloudinary upload API the host uses.
type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryHost stores images on Cloudinary under an optional folder.
type CloudinaryHost struct {
	api    cloudinaryAPI
	folder string
}

// NewCloudinaryHost builds a host from a cloudinary:// URL or, when that is
// empty, from the cloud name and key pair.
func NewCloudinaryHost(cloudinaryURL, cloudName, apiKey, apiSecret, folder string) (*CloudinaryHost, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cloudinaryURL != "" {
		cld, err = cloudinary.NewFromURL(cloudinaryURL)
	} else {
		cld, err = cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	}
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryHost{api: &cld.Upload, folder: folder}, nil
}

func (h *CloudinaryHost) Name() string {
	return ProviderCloudinary
}

func (h *CloudinaryHost) Upload(ctx context.Context, id string, upload Upload) (string, error) {
	res, err := h.api.Upload(ctx, upload.Body, uploader.UploadParams{
		PublicID:     h.publicID(id),
		ResourceType: "image",
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("cloudinary returned no URL")
	}
	return res.SecureURL, nil
}

func (h *CloudinaryHost) Remove(ctx context.Context, id string) error {
	res, err := h.api.Destroy(ctx, uploader.DestroyParams{PublicID: h.publicID(id)})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	// "not found" means someone already removed it.
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy: %s", res.Result)
	}
	return nil
}

func (h *CloudinaryHost) publicID(id string) string {
	if h.folder == "" {
		return id
	}
	return h.folder + "/" + id
}
