package services

import (
	"context"

	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type BookmarkService interface {
	Add(ctx context.Context, capstoneID, actorID uint) (*models.Bookmark, error)
	Remove(ctx context.Context, capstoneID, actorID uint) error
	List(ctx context.Context, actorID uint) ([]models.Bookmark, error)
}

type bookmarkService struct {
	store repositories.Store
}

func NewBookmarkService(store repositories.Store) BookmarkService {
	return &bookmarkService{store: store}
}

// Add bookmarks a verified submission. Bookmarking twice is a PolicyError.
func (s *bookmarkService) Add(ctx context.Context, capstoneID, actorID uint) (*models.Bookmark, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	capstone, err := store.Capstones().GetByID(capstoneID)
	if err != nil {
		return nil, notFound(err, "capstone submission")
	}
	if capstone.Status != models.CapstoneVerified {
		return nil, models.NewPolicyError("only verified research can be bookmarked")
	}

	exists, err := store.Bookmarks().Exists(actor.ID, capstone.ID)
	if err != nil {
		return nil, errors.Wrap(err, "check bookmark")
	}
	if exists {
		return nil, models.NewPolicyError("research is already bookmarked")
	}

	bookmark := &models.Bookmark{UserID: actor.ID, CapstoneID: capstone.ID}
	if err := store.Bookmarks().Create(bookmark); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewPolicyError("research is already bookmarked")
		}
		return nil, errors.Wrap(err, "create bookmark")
	}
	bookmark.Capstone = capstone
	return bookmark, nil
}

func (s *bookmarkService) Remove(ctx context.Context, capstoneID, actorID uint) error {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return err
	}
	exists, err := store.Bookmarks().Exists(actor.ID, capstoneID)
	if err != nil {
		return errors.Wrap(err, "check bookmark")
	}
	if !exists {
		return models.NewPolicyError("research is not bookmarked")
	}
	return errors.Wrap(store.Bookmarks().Delete(actor.ID, capstoneID), "delete bookmark")
}

func (s *bookmarkService) List(ctx context.Context, actorID uint) ([]models.Bookmark, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	bookmarks, err := store.Bookmarks().ListByUser(actor.ID)
	return bookmarks, errors.Wrap(err, "list bookmarks")
}
