package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Config contains minimal configuration for creating an S3 client.
// Values are optional and fall back to the standard AWS config/credential chain.
type S3Config struct {
	Bucket string
	// Region to use for requests. R2 accepts "auto".
	Region string
	// Endpoint overrides the service endpoint (R2, MinIO). Empty => AWS.
	Endpoint string
	// Profile selects a named shared config/credentials profile.
	Profile string
	// AccessKeyID and SecretAccessKey, when both set, replace the default chain.
	AccessKeyID     string
	SecretAccessKey string
	// UsePathStyle forces path-style addressing (useful for some S3-compatible providers).
	UsePathStyle bool
}

// s3API is the part of *s3.Client we call, so tests can substitute it.
type s3API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 is a Store backed by an S3-compatible bucket.
type S3 struct {
	client s3API
	bucket string
}

// NewS3 creates a bucket client using the default AWS configuration chain,
// with overrides from cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3{client: c, bucket: cfg.Bucket}, nil
}

func (s *S3) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}
	in := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		MaxKeys: aws.Int32(maxKeys),
	}
	if opts.Prefix != "" {
		in.Prefix = aws.String(opts.Prefix)
	}
	if opts.ContinuationToken != "" {
		in.ContinuationToken = aws.String(opts.ContinuationToken)
	}

	out, err := s.client.ListObjectsV2(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, opts.Prefix, err)
	}

	page := &ListPage{
		Objects:   make([]ObjectInfo, 0, len(out.Contents)),
		Truncated: aws.ToBool(out.IsTruncated),
		NextToken: aws.ToString(out.NextContinuationToken),
	}
	for _, o := range out.Contents {
		page.Objects = append(page.Objects, ObjectInfo{
			Key:          aws.ToString(o.Key),
			Size:         aws.ToInt64(o.Size),
			ETag:         QuoteETag(aws.ToString(o.ETag)),
			LastModified: aws.ToTime(o.LastModified),
		})
	}
	return page, nil
}

func (s *S3) Get(ctx context.Context, key string, opts GetOptions) (*Object, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if opts.Range != nil {
		in.Range = aws.String(opts.Range.String())
	}
	if opts.IfNoneMatch != "" {
		in.IfNoneMatch = aws.String(opts.IfNoneMatch)
	}

	out, err := s.client.GetObject(ctx, in)
	if err != nil {
		return nil, mapS3Error(key, err)
	}

	info := ObjectInfo{
		Key:                key,
		Size:               aws.ToInt64(out.ContentLength),
		ETag:               QuoteETag(aws.ToString(out.ETag)),
		LastModified:       aws.ToTime(out.LastModified),
		ContentType:        aws.ToString(out.ContentType),
		ContentDisposition: aws.ToString(out.ContentDisposition),
		ContentLanguage:    aws.ToString(out.ContentLanguage),
	}
	obj := &Object{Info: info, Body: out.Body}

	if cr := aws.ToString(out.ContentRange); cr != "" && opts.Range != nil {
		parsed, err := parseContentRange(cr)
		if err != nil {
			_ = out.Body.Close()
			return nil, err
		}
		obj.Range = parsed
		if parsed.Total >= 0 {
			obj.Info.Size = parsed.Total
		}
	}
	return obj, nil
}

// mapS3Error translates SDK errors into the package sentinels.
func mapS3Error(key string, err error) error {
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	// Check for API error code
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		case "InvalidRange":
			return fmt.Errorf("%w: %s", ErrInvalidRange, key)
		case "NotModified":
			return ErrNotModified
		}
	}

	// Check for HTTP status on the response error
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		case http.StatusNotModified:
			return ErrNotModified
		case http.StatusRequestedRangeNotSatisfiable:
			return fmt.Errorf("%w: %s", ErrInvalidRange, key)
		}
	}

	return fmt.Errorf("get %s: %w", key, err)
}
