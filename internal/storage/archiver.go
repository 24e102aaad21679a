package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tradecli/internal/config"
	apperrors "tradecli/internal/errors"
)

// ObjectPutter is the subset of the S3 client used by Archiver
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver uploads processed files to S3-compatible object storage
type Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewArchiver builds an S3 client from cfg. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewArchiver(ctx context.Context, cfg config.ArchiveConfig) (*Archiver, error) {
	slog.InfoContext(ctx, "Initializing S3 archive",
		slog.String("endpoint", cfg.Endpoint),
		slog.String("bucket", cfg.Bucket),
		slog.String("region", cfg.Region))

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load AWS config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			// S3-compatible stores do not all accept trailing checksums
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})

	return NewArchiverWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewArchiverWithClient creates an Archiver around an existing client
func NewArchiverWithClient(client ObjectPutter, bucket, prefix string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: prefix}
}

// ObjectKey returns <prefix>/<YYYY>/<MM>/<DD>/<runID>/<fileName>
func ObjectKey(prefix, runID string, at time.Time, fileName string) string {
	at = at.UTC()
	return path.Join(prefix,
		fmt.Sprintf("%04d", at.Year()),
		fmt.Sprintf("%02d", int(at.Month())),
		fmt.Sprintf("%02d", at.Day()),
		runID,
		fileName)
}

// Archive uploads the file at filePath and returns its object key
func (a *Archiver) Archive(ctx context.Context, filePath, runID string, at time.Time) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", apperrors.NewStorageError("failed to open file for archive", err).WithContext("path", filePath)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", apperrors.NewStorageError("failed to stat file for archive", err).WithContext("path", filePath)
	}

	key := ObjectKey(a.prefix, runID, at, filepath.Base(filePath))

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentTypeFor(filePath)),
	})
	if err != nil {
		return "", apperrors.NewStorageError("failed to upload to S3", err).
			WithContext("bucket", a.bucket).
			WithContext("key", key)
	}

	slog.InfoContext(ctx, "File archived",
		slog.String("bucket", a.bucket),
		slog.String("key", key),
		slog.Int64("bytes", info.Size()))

	return key, nil
}

func contentTypeFor(filePath string) string {
	switch filepath.Ext(filePath) {
	case ".csv":
		return "text/csv"
	case ".log":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
