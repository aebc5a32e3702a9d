package repositories

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"capstone-tracker/models"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
	"gorm.io/gorm"
)

var draftBucket = []byte("Drafts")

// DraftRepository keeps wizard drafts under "userID:lineageID" keys.
type DraftRepository interface {
	Get(userID, lineageID uint) (*models.DraftDocument, error)
	Save(draft *models.DraftDocument) error
	Delete(userID, lineageID uint) error
	ListByUser(userID uint) ([]models.DraftDocument, error)
	Close() error
}

type boltDraftRepository struct {
	db *bbolt.DB
}

// OpenDraftRepository opens (or creates) the bbolt file at path.
func OpenDraftRepository(path string) (DraftRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create draft directory")
	}

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open draft store %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(draftBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create draft bucket")
	}

	return &boltDraftRepository{db: db}, nil
}

// Get returns gorm.ErrRecordNotFound for a missing draft so callers treat
// every store the same way.
func (r *boltDraftRepository) Get(userID, lineageID uint) (*models.DraftDocument, error) {
	var draft models.DraftDocument
	err := r.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(draftBucket).Get([]byte(models.DraftKey(userID, lineageID)))
		if v == nil {
			return gorm.ErrRecordNotFound
		}
		return json.Unmarshal(v, &draft)
	})
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *boltDraftRepository) Save(draft *models.DraftDocument) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return errors.Wrap(err, "encode draft")
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(draftBucket).Put([]byte(draft.Key()), data)
	})
}

func (r *boltDraftRepository) Delete(userID, lineageID uint) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(draftBucket).Delete([]byte(models.DraftKey(userID, lineageID)))
	})
}

func (r *boltDraftRepository) ListByUser(userID uint) ([]models.DraftDocument, error) {
	var drafts []models.DraftDocument
	prefix := []byte(strconv.FormatUint(uint64(userID), 10) + ":")
	err := r.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(draftBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var draft models.DraftDocument
			if err := json.Unmarshal(v, &draft); err != nil {
				return errors.Wrapf(err, "decode draft %s", k)
			}
			drafts = append(drafts, draft)
		}
		return nil
	})
	return drafts, err
}

func (r *boltDraftRepository) Close() error {
	return r.db.Close()
}
