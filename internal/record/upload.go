package record

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oszuidwest/zwfm-capture/internal/config"
	"github.com/oszuidwest/zwfm-capture/internal/util"
)

// uploadTimeout bounds a single recording upload.
const uploadTimeout = 5 * time.Minute

// NewS3Client creates an S3 client for the given configuration.
func NewS3Client(cfg *config.S3Config) *s3.Client {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"",
	)

	options := []func(*s3.Options){
		func(o *s3.Options) {
			o.Credentials = creds
			o.Region = "auto"
		},
	}

	if cfg.Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.New(s3.Options{}, options...)
}

// S3Key builds the object key for a recording filename under the
// configured prefix.
func S3Key(prefix, filename string) string {
	if prefix == "" {
		return filename
	}
	return path.Join(prefix, filename)
}

// Upload sends a finished recording to the configured bucket and returns
// the object key.
func Upload(ctx context.Context, cfg *config.S3Config, localPath string) (string, error) {
	if !cfg.IsConfigured() {
		return "", fmt.Errorf("S3 is not configured")
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", util.WrapError("open recording for upload", err)
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return "", util.WrapError("stat recording", err)
	}

	key := S3Key(cfg.Prefix, filepath.Base(localPath))

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	client := NewS3Client(cfg)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String("audio/wav"),
	})
	if err != nil {
		return "", util.WrapError("upload recording", err)
	}

	return key, nil
}
