package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/google/uuid"
	"github.com/vincent-petithory/dataurl"
	"github.com/yashrajoria/storefront/apperrors"
	aws_pkg "github.com/yashrajoria/storefront/pkg/aws"
)

const (
	MsgImageUploadFailed = "Image upload failed"

	// ImageFolder is where every uploaded image lands on the media host.
	ImageFolder = "ecommerce_images"
)

var ErrInvalidDataURI = errors.New("invalid data uri")

// ImageUploader forwards an image payload to a media host and returns the
// public URL of the stored copy.
type ImageUploader interface {
	Upload(ctx context.Context, image string) (string, error)
}

type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

type CloudinaryUploader struct {
	api cloudinaryAPI
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init error: %w", err)
	}
	cld.Config.URL.Secure = true
	return &CloudinaryUploader{api: &cld.Upload}, nil
}

// Upload hands the payload to Cloudinary as-is; it accepts data URIs,
// remote URLs and raw base64.
func (u *CloudinaryUploader) Upload(ctx context.Context, image string) (string, error) {
	resp, err := u.api.Upload(ctx, image, uploader.UploadParams{Folder: ImageFolder})
	if err != nil {
		return "", apperrors.Internal(MsgImageUploadFailed, err)
	}
	if resp == nil {
		return "", apperrors.Internal(MsgImageUploadFailed, errors.New("empty upload response"))
	}
	if resp.Error.Message != "" {
		return "", apperrors.Internal(MsgImageUploadFailed, errors.New(resp.Error.Message))
	}
	if resp.SecureURL == "" {
		return "", apperrors.Internal(MsgImageUploadFailed, errors.New("upload returned no url"))
	}
	return resp.SecureURL, nil
}

// S3Uploader stores images in a bucket. Only data URIs are accepted since the
// bytes have to be written by us.
type S3Uploader struct {
	client     aws_pkg.ObjectPutter
	bucket     string
	prefix     string
	publicBase string
	newKey     func() string
}

func NewS3Uploader(client aws_pkg.ObjectPutter, bucket, prefix, publicBase string) *S3Uploader {
	return &S3Uploader{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		publicBase: strings.TrimRight(publicBase, "/"),
		newKey:     func() string { return uuid.New().String() },
	}
}

func (u *S3Uploader) Upload(ctx context.Context, image string) (string, error) {
	du, err := dataurl.DecodeString(image)
	if err != nil {
		return "", apperrors.Internal(MsgImageUploadFailed, fmt.Errorf("%w: %v", ErrInvalidDataURI, err))
	}
	contentType := du.ContentType()

	key := strings.TrimLeft(path.Join(u.prefix, ImageFolder, u.newKey()+extensionFor(contentType)), "/")
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(du.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", apperrors.Internal(MsgImageUploadFailed, err)
	}

	if u.publicBase != "" {
		return u.publicBase + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.bucket, key), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
