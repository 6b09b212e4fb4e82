package probe

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jonwraymond/healthops/health"
)

// DefaultS3Timeout is the S3 probe deadline.
const DefaultS3Timeout = 5 * time.Second

// S3API is the subset of the S3 client the probe uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3 checks that a bucket can be listed.
type S3 struct {
	Base
	client S3API
	bucket string
}

// NewS3 creates an S3 probe over client.
func NewS3(client S3API, bucket string, opts Options) (*S3, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if bucket == "" {
		return nil, ErrMissingBucket
	}
	return &S3{Base: newBase(opts, "s3", DefaultS3Timeout, false), client: client, bucket: bucket}, nil
}

// Check lists at most one key of the bucket.
func (p *S3) Check(ctx context.Context) health.Result {
	out, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return health.Unhealthy("S3 storage connection failed", err)
	}
	return health.Healthy("S3 storage operational").WithMetadata(map[string]any{
		"bucket": p.bucket,
		"empty":  aws.ToInt32(out.KeyCount) == 0,
	})
}

var _ health.Probe = (*S3)(nil)
