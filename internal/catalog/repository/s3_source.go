package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// objectGetter is the slice of the S3 API the source needs.
type objectGetter interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// S3Source reads the catalog CSV from an S3 object.
type S3Source struct {
	Bucket string
	Key    string
	client objectGetter
}

func NewS3Source(region, bucket, key string) (*S3Source, error) {
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return NewS3SourceWithClient(s3.New(sess), bucket, key), nil
}

func NewS3SourceWithClient(client objectGetter, bucket, key string) *S3Source {
	return &S3Source{Bucket: bucket, Key: key, client: client}
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s from bucket %s: %w", s.Key, s.Bucket, err)
	}
	return out.Body, nil
}

func (s *S3Source) Describe() string {
	return "s3://" + s.Bucket + "/" + s.Key
}
