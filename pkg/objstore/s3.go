package objstore

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/parthk/blockvault/pkg/errors"
)

// S3 object metadata header names (stored lowercase by S3).
const (
	metaDigest      = "digest"
	metaIV          = "iv"
	metaContentType = "source-content-type"
)

// S3Config holds S3 connection settings.
type S3Config struct {
	// Bucket to store blocks in.
	Bucket string
	// Region, e.g. "us-east-1". Defaults to the SDK's resolution chain.
	Region string
	// Endpoint overrides the S3 endpoint for compatible stores (MinIO,
	// LocalStack). Empty uses AWS.
	Endpoint string
	// AccessKeyID and SecretAccessKey set static credentials. When empty
	// the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	// UsePathStyle addresses the bucket in the URL path instead of the
	// host, required by most S3-compatible stores.
	UsePathStyle bool
}

// S3Store stores blocks in an S3 bucket.
type S3Store struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewS3Store builds an S3 client from cfg and verifies the bucket is
// reachable.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "s3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	region := cfg.Region
	if region == "" {
		region = awsCfg.Region
	}
	store := &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		region:   region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}
	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "bucket %s not reachable", cfg.Bucket)
	}
	return store, nil
}

// Put uploads data under key with the metadata attached as object metadata.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, meta ObjectMeta) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(data),
		Metadata: metaToHeaders(meta),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "put object %s", key)
	}
	return nil
}

// Get downloads an object's bytes and metadata.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, ObjectMeta, error) {
	if err := validateKey(key); err != nil {
		return nil, ObjectMeta{}, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ObjectMeta{}, errors.New(errors.ErrCodeBlockNotFound, "object %s not found", key)
		}
		return nil, ObjectMeta{}, errors.Wrap(errors.ErrCodeNetwork, err, "get object %s", key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, ObjectMeta{}, errors.Wrap(errors.ErrCodeNetwork, err, "read object %s", key)
	}
	return data, metaFromHeaders(out.Metadata), nil
}

// Head checks existence without downloading.
func (s *S3Store) Head(ctx context.Context, key string) (bool, ObjectMeta, error) {
	if err := validateKey(key); err != nil {
		return false, ObjectMeta{}, err
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, ObjectMeta{}, nil
		}
		return false, ObjectMeta{}, errors.Wrap(errors.ErrCodeNetwork, err, "head object %s", key)
	}
	return true, metaFromHeaders(out.Metadata), nil
}

// Delete removes an object. S3 treats deleting a missing key as success.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete object %s", key)
	}
	return nil
}

// URL returns the https URL for the object: path-style against a custom
// endpoint, the canonical virtual-hosted form against AWS.
func (s *S3Store) URL(key string) string {
	if s.endpoint != "" {
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	if s.region == "" {
		return "https://" + s.bucket + ".s3.amazonaws.com/" + key
	}
	return "https://" + s.bucket + ".s3." + s.region + ".amazonaws.com/" + key
}

func metaToHeaders(meta ObjectMeta) map[string]string {
	headers := make(map[string]string, 3)
	if meta.Digest != "" {
		headers[metaDigest] = meta.Digest
	}
	if meta.IV != "" {
		headers[metaIV] = meta.IV
	}
	if meta.ContentType != "" {
		headers[metaContentType] = meta.ContentType
	}
	return headers
}

func metaFromHeaders(headers map[string]string) ObjectMeta {
	return ObjectMeta{
		Digest:      headers[metaDigest],
		IV:          headers[metaIV],
		ContentType: headers[metaContentType],
	}
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	return stderrors.As(err, &nsk)
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if stderrors.As(err, &nf) {
		return true
	}
	// HeadObject reports some missing keys as a bare 404.
	return strings.Contains(err.Error(), "StatusCode: 404")
}

var _ BlockStore = (*S3Store)(nil)
