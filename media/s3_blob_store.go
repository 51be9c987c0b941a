package media

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3BlobStore uploads media blobs to a public S3 bucket. The object key
// doubles as the external id used for deletion.
type S3BlobStore struct {
	bucket   string
	uploader *s3manager.Uploader
	svc      *s3.S3
}

func NewS3BlobStore(region, bucket string) (*S3BlobStore, error) {
	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &S3BlobStore{
		bucket:   bucket,
		uploader: s3manager.NewUploader(sess),
		svc:      s3.New(sess),
	}, nil
}

func (s *S3BlobStore) Upload(ctx context.Context, data []byte, folder, name string) (*BlobRef, error) {
	key := path.Join(folder, name)
	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return nil, err
	}
	return &BlobRef{
		Url:        result.Location,
		ExternalId: key,
	}, nil
}

func (s *S3BlobStore) Delete(ctx context.Context, externalId string) error {
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(externalId),
	})
	return err
}

var _ BlobStore = (*S3BlobStore)(nil)
