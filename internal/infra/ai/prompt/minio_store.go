package prompt

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore reads template definitions from a MinIO bucket, for
// deployments that manage prompts centrally instead of shipping files.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// NewObjectStore connects to MinIO and verifies the bucket exists.
func NewObjectStore(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*ObjectStore, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("prompt bucket %q does not exist", bucket)
	}

	return &ObjectStore{client: cli, bucket: bucket}, nil
}

func (s *ObjectStore) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, templateKey(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, err
	}
	return data, nil
}
