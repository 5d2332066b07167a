// Package objstore exports application package archives to an S3 compatible object store.
package objstore

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vispana/apppackage-client/common"
	"github.com/vispana/apppackage-client/config"
)

const archiveContentType = "application/zip"

// WriteFunc produces the object content into w.
type WriteFunc func(w io.Writer) error

// Store uploads objects into a single bucket, creating the bucket on first use.
type Store struct {
	client *minio.Client
	bucket string
	region string
	logger *logrus.Logger

	initOnce sync.Once
	initErr  error
}

// NewStore creates a store from the S3 configuration.
func NewStore(conf config.S3Config, opt ...common.LogOption) (*Store, error) {
	endpoint := strings.TrimSpace(conf.Endpoint)
	if len(endpoint) == 0 {
		return nil, errors.New("s3 endpoint is required")
	}

	access := strings.TrimSpace(conf.AccessKey)
	secret := strings.TrimSpace(conf.SecretKey)
	if len(access) == 0 || len(secret) == 0 {
		return nil, errors.New("s3 access key and secret key are required")
	}

	bucket := strings.TrimSpace(conf.Bucket)
	if len(bucket) == 0 {
		return nil, errors.New("s3 bucket is required")
	}

	region := strings.TrimSpace(conf.Region)
	if len(region) == 0 {
		region = config.DefaultRegion
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: conf.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create s3 client")
	}

	return &Store{
		client: client,
		bucket: bucket,
		region: region,
		logger: common.NewLogger(opt...),
	}, nil
}

func (store *Store) ensureBucket(ctx context.Context) error {
	store.initOnce.Do(func() {
		exists, err := store.client.BucketExists(ctx, store.bucket)
		if err != nil {
			store.initErr = err
			return
		}

		if !exists {
			store.logger.WithField("bucket", store.bucket).Info("Creating bucket")
			store.initErr = store.client.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{Region: store.region})
		}
	})

	return store.initErr
}

// Upload streams the output of write into the object key. The content size is unknown in
// advance, so it is uploaded in parts as write produces it. A failure of write aborts the upload.
func (store *Store) Upload(ctx context.Context, key string, write WriteFunc) (minio.UploadInfo, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if len(key) == 0 {
		return minio.UploadInfo{}, errors.New("object key is required")
	}

	if err := store.ensureBucket(ctx); err != nil {
		return minio.UploadInfo{}, errors.WithMessage(err, "failed to ensure bucket")
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(write(pw))
	}()

	info, err := store.client.PutObject(ctx, store.bucket, key, pr, -1, minio.PutObjectOptions{
		ContentType: archiveContentType,
	})

	// unblock the producer if the upload stopped reading early
	pr.CloseWithError(errors.New("upload finished"))

	if err != nil {
		return minio.UploadInfo{}, errors.WithMessagef(err, "failed to upload object %s", key)
	}

	store.logger.WithFields(logrus.Fields{
		"bucket": store.bucket,
		"key":    key,
		"size":   info.Size,
	}).Info("Succeeded to upload object")

	return info, nil
}
