package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// Uploader copies archives to an S3 bucket for offsite retention.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewUploader loads AWS credentials for the given profile and verifies them
// with a caller-identity check before anything is uploaded.
func NewUploader(ctx context.Context, profile, bucket, prefix string) (*Uploader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	if _, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err != nil {
		return nil, fmt.Errorf("AWS credentials rejected: %w", err)
	}

	return &Uploader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Upload puts one archive under prefix/basename.
func (u *Uploader) Upload(ctx context.Context, archivePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	key := filepath.Base(archivePath)
	if u.prefix != "" {
		key = u.prefix + "/" + key
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &u.bucket,
		Key:    &key,
		Body:   f,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("upload to s3://%s/%s failed (%s): %s",
				u.bucket, key, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return fmt.Errorf("upload to s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}
