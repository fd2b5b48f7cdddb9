package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store keeps uploads in an S3 bucket under csv/<id>.
type S3Store struct {
	S3     *s3.Client
	Bucket string
}

func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{S3: client, Bucket: bucket}
}

func (s *S3Store) key(id string) string { return "csv/" + id }

func (s *S3Store) Put(ctx context.Context, id string, data []byte) error {
	_, err := s.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(s.key(id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	return err
}

func (s *S3Store) Get(ctx context.Context, id string) ([]byte, error) {
	out, err := s.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
