package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	listIn  *s3.ListObjectsV2Input
	listOut *s3.ListObjectsV2Output
	getIn   *s3.GetObjectInput
	getOut  *s3.GetObjectOutput
	err     error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listIn = in
	return f.listOut, f.err
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.getIn = in
	return f.getOut, f.err
}

func TestS3List(t *testing.T) {
	modified := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	fake := &fakeS3{listOut: &s3.ListObjectsV2Output{
		Contents: []s3types.Object{
			{Key: aws.String("library/a/meta.json"), Size: aws.Int64(12), ETag: aws.String(`"e1"`), LastModified: &modified},
		},
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("tok"),
	}}
	s := &S3{client: fake, bucket: "hiic-library"}

	page, err := s.List(context.Background(), ListOptions{Prefix: "library/", ContinuationToken: "prev"})
	require.NoError(t, err)
	require.Equal(t, "hiic-library", aws.ToString(fake.listIn.Bucket))
	require.Equal(t, "library/", aws.ToString(fake.listIn.Prefix))
	require.Equal(t, "prev", aws.ToString(fake.listIn.ContinuationToken))
	require.Equal(t, int32(1000), aws.ToInt32(fake.listIn.MaxKeys))

	require.True(t, page.Truncated)
	require.Equal(t, "tok", page.NextToken)
	require.Equal(t, []ObjectInfo{{Key: "library/a/meta.json", Size: 12, ETag: `"e1"`, LastModified: modified}}, page.Objects)
}

func TestS3GetRange(t *testing.T) {
	fake := &fakeS3{getOut: &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader("234")),
		ContentLength: aws.Int64(3),
		ContentRange:  aws.String("bytes 2-4/10"),
		ContentType:   aws.String("application/pdf"),
		ETag:          aws.String("abc"),
	}}
	s := &S3{client: fake, bucket: "b"}

	obj, err := s.Get(context.Background(), "k.pdf", GetOptions{Range: &ByteRange{Start: 2, End: 4}, IfNoneMatch: `"old"`})
	require.NoError(t, err)
	defer obj.Body.Close()

	require.Equal(t, "bytes=2-4", aws.ToString(fake.getIn.Range))
	require.Equal(t, `"old"`, aws.ToString(fake.getIn.IfNoneMatch))
	require.Equal(t, &ContentRange{Start: 2, End: 4, Total: 10}, obj.Range)
	require.Equal(t, int64(10), obj.Info.Size)
	require.Equal(t, int64(3), obj.ContentLength())
	require.Equal(t, `"abc"`, obj.Info.ETag)
	require.Equal(t, "application/pdf", obj.Info.ContentType)
}

func TestMapS3Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "typed no such key", err: &s3types.NoSuchKey{}, want: ErrNotFound},
		{name: "api not found", err: &smithy.GenericAPIError{Code: "NotFound"}, want: ErrNotFound},
		{name: "api invalid range", err: &smithy.GenericAPIError{Code: "InvalidRange"}, want: ErrInvalidRange},
		{name: "api not modified", err: &smithy.GenericAPIError{Code: "NotModified"}, want: ErrNotModified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, mapS3Error("k", tt.err), tt.want)
		})
	}

	other := errors.New("connection reset")
	mapped := mapS3Error("k", other)
	require.ErrorIs(t, mapped, other)
	require.NotErrorIs(t, mapped, ErrNotFound)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{})
	require.Error(t, err)
}
