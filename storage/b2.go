package storage

import (
	"context"
	"io"

	"capstone-tracker/models"

	"github.com/google/uuid"
	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"
)

// B2Store keeps documents in a Backblaze B2 bucket.
type B2Store struct {
	Client *b2.Client
	Bucket *b2.Bucket
}

func NewB2Store(ctx context.Context, accountID, appKey, bucketName string) (*B2Store, error) {
	client, err := b2.NewClient(ctx, accountID, appKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create b2 client")
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bucket")
	}

	return &B2Store{Client: client, Bucket: bucket}, nil
}

func (s *B2Store) Save(ctx context.Context, upload Upload) (string, error) {
	key := "documents/" + objectName(uuid.NewString(), upload.Filename)
	w := s.Bucket.Object(key).NewWriter(ctx, b2.WithAttrsOption(&b2.Attrs{ContentType: pdfMIME}))

	if _, err := io.Copy(w, upload.Body); err != nil {
		w.Close()
		return "", models.NewStorageError("save", errors.Wrap(err, "failed to write object"))
	}
	if err := w.Close(); err != nil {
		return "", models.NewStorageError("save", errors.Wrap(err, "failed to close writer"))
	}
	return key, nil
}

func (s *B2Store) Delete(ctx context.Context, ref string) error {
	if err := s.Bucket.Object(ref).Delete(ctx); err != nil && !b2.IsNotExist(err) {
		return models.NewStorageError("delete", err)
	}
	return nil
}

func (s *B2Store) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := s.Bucket.Object(ref).Attrs(ctx)
	if b2.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, models.NewStorageError("stat", err)
	}
	return true, nil
}
