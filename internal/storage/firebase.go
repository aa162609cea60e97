package storage

import (
	"context"
	"fmt"
	"log"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/sevasetu/foundation-backend/config"
)

// FirebaseStore stores artifacts in a Firebase Storage bucket and serves
// them through public object URLs.
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseStore(ctx context.Context, cfg *config.Config) (*FirebaseStore, error) {
	if cfg.FirebaseStorageBucket == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET is not set")
	}

	opts := []option.ClientOption{}
	if cfg.FirebaseCredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		StorageBucket: cfg.FirebaseStorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to open default bucket: %w", err)
	}

	log.Printf("✅ Firebase Storage connected (bucket=%s)", cfg.FirebaseStorageBucket)
	return &FirebaseStore{bucket: bucket, bucketName: cfg.FirebaseStorageBucket}, nil
}

func (s *FirebaseStore) Upload(ctx context.Context, data []byte, destinationName, folder string) (string, error) {
	objectName := folder + "/" + destinationName

	obj := s.bucket.Object(objectName)
	w := obj.NewWriter(ctx)
	w.ContentType = "application/pdf"

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", &StorageError{Object: objectName, Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &StorageError{Object: objectName, Err: err}
	}

	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", &StorageError{Object: objectName, Err: err}
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, objectName)
	return url, nil
}
