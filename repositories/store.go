package repositories

import (
	"context"

	"capstone-tracker/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrStaleVersion is returned when a version row was archived by a concurrent edit.
var ErrStaleVersion = errors.New("project version is no longer active")

// Store groups the repositories that must change together in one transaction.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Defenses() DefenseRepository
	Manuscripts() ManuscriptRepository
	Capstones() CapstoneRepository
	Bookmarks() BookmarkRepository
	Notifications() NotificationRepository

	WithContext(ctx context.Context) Store
	// Transaction runs fn against a Store bound to one transaction. A non-nil
	// error from fn rolls every change back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *gormStore) Projects() ProjectRepository           { return NewProjectRepository(s.db) }
func (s *gormStore) Defenses() DefenseRepository           { return NewDefenseRepository(s.db) }
func (s *gormStore) Manuscripts() ManuscriptRepository     { return NewManuscriptRepository(s.db) }
func (s *gormStore) Capstones() CapstoneRepository         { return NewCapstoneRepository(s.db) }
func (s *gormStore) Bookmarks() BookmarkRepository         { return NewBookmarkRepository(s.db) }
func (s *gormStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }

func (s *gormStore) WithContext(ctx context.Context) Store {
	return &gormStore{db: s.db.WithContext(ctx)}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// Migrate creates or updates every table the store uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Approval{},
		&models.Defense{},
		&models.ManuscriptReview{},
		&models.CapstoneSubmission{},
		&models.Bookmark{},
		&models.Notification{},
	)
	return errors.Wrap(err, "auto migrate")
}
