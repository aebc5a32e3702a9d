package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"capstone-tracker/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// LocalStore keeps documents under one upload directory.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve upload path")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload directory")
	}
	return &LocalStore{root: abs}, nil
}

func (s *LocalStore) path(ref string) (string, error) {
	if ref == "" || strings.ContainsAny(ref, `/\`) || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", errors.Errorf("invalid file reference %q", ref)
	}
	return filepath.Join(s.root, ref), nil
}

func (s *LocalStore) Save(ctx context.Context, upload Upload) (string, error) {
	ref := objectName(uuid.NewString(), upload.Filename)
	path, _ := s.path(ref)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", models.NewStorageError("save", err)
	}
	if _, err := io.Copy(f, upload.Body); err != nil {
		f.Close()
		os.Remove(path)
		return "", models.NewStorageError("save", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", models.NewStorageError("save", err)
	}
	return ref, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return models.NewStorageError("delete", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return models.NewStorageError("delete", err)
	}
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, ref string) (bool, error) {
	path, err := s.path(ref)
	if err != nil {
		return false, nil
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, models.NewStorageError("stat", err)
	}
	return true, nil
}
