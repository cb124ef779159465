// Package avatar resolves directory avatar references to fetchable URLs.
// Users may carry either an absolute URL or the key of an object stored in
// the avatar bucket; object keys are resolved to presigned GET URLs.
package avatar

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Presigner abstracts the object store; the MinIO client satisfies it.
type Presigner interface {
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

type Resolver struct {
	presigner Presigner
	bucket    string
	ttl       time.Duration
}

// NewMinioResolver connects to the configured MinIO endpoint. Returns nil
// when the endpoint is empty; a nil resolver passes references through
// unchanged.
func NewMinioResolver(endpoint, accessKey, secretKey, bucket string, useSSL bool, ttl time.Duration) (*Resolver, error) {
	if endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &Resolver{presigner: client, bucket: bucket, ttl: ttl}, nil
}

// NewResolver builds a resolver over any presigner; tests use a fake.
func NewResolver(presigner Presigner, bucket string, ttl time.Duration) *Resolver {
	return &Resolver{presigner: presigner, bucket: bucket, ttl: ttl}
}

// Resolve maps an avatar reference to a URL. Absolute http(s) URLs pass
// through; object keys become presigned URLs; failures degrade to an
// empty avatar rather than failing the directory listing.
func (r *Resolver) Resolve(ctx context.Context, reference string) string {
	if reference == "" {
		return ""
	}
	if strings.HasPrefix(reference, "http://") || strings.HasPrefix(reference, "https://") {
		return reference
	}
	if r == nil {
		return reference
	}

	presigned, err := r.presigner.PresignedGetObject(ctx, r.bucket, reference, r.ttl, nil)
	if err != nil {
		log.Printf("avatar: presign %q failed: %v", reference, err)
		return ""
	}
	return presigned.String()
}
