// Package publish uploads run artifacts to S3-compatible object storage.
package publish

import (
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/logforge/logforge/pkg/errors"
)

// Config holds S3 client configuration.
type Config struct {
	// Region is the AWS region (e.g., "us-east-1")
	Region string

	// Bucket receives the artifacts
	Bucket string

	// Endpoint overrides the default S3 endpoint (for S3-compatible services)
	Endpoint string

	// Prefix is prepended to every object key
	Prefix string

	// UsePathStyle forces path-style addressing (for MinIO, LocalStack)
	UsePathStyle bool

	// Credentials (optional - uses default chain if not provided)
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// UploadTimeout bounds a single file upload
	UploadTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(bucket, region string) Config {
	return Config{
		Bucket:        bucket,
		Region:        region,
		UploadTimeout: 5 * time.Minute,
	}
}

// Publisher uploads run artifacts to one bucket.
type Publisher struct {
	cfg    Config
	client *s3.Client
}

// New creates a publisher. Credentials fall back to the default AWS
// chain when not set explicitly.
func New(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.CodeInvalidParameter, "publish bucket not configured")
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 5 * time.Minute
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				cfg.SessionToken,
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePublishFailed, "failed to load AWS config")
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Publisher{
		cfg:    cfg,
		client: s3.NewFromConfig(awsCfg, s3Opts...),
	}, nil
}

// Bucket returns the target bucket name.
func (p *Publisher) Bucket() string {
	return p.cfg.Bucket
}

// Key builds the object key for one artifact of one run.
func (p *Publisher) Key(runID, file string) string {
	return path.Join(p.cfg.Prefix, runID, filepath.Base(file))
}

// UploadFile uploads a single local file under the given key.
func (p *Publisher) UploadFile(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return errors.Wrap(err, errors.CodePublishFailed, "failed to open artifact").
			WithContext("path", localPath)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.UploadTimeout)
	defer cancel()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(ContentType(localPath)),
	})
	if err != nil {
		return errors.Wrap(err, errors.CodePublishFailed, "failed to upload artifact").
			WithContext("bucket", p.cfg.Bucket).
			WithContext("key", key)
	}
	return nil
}

// UploadArtifacts uploads every file under the run's key prefix. It
// continues past individual failures and reports them together.
func (p *Publisher) UploadArtifacts(ctx context.Context, runID string, paths []string) error {
	var merr errors.MultiError
	for _, localPath := range paths {
		merr.Add(p.UploadFile(ctx, localPath, p.Key(runID, localPath)))
	}
	return merr.Combined()
}

// ContentType guesses the MIME type from the file extension.
func ContentType(file string) string {
	ext := strings.ToLower(filepath.Ext(file))
	switch ext {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".parquet", ".duckdb":
		return "application/octet-stream"
	case ".dot":
		return "text/vnd.graphviz"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}
