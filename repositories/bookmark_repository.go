package repositories

import (
	"capstone-tracker/models"

	"gorm.io/gorm"
)

type BookmarkRepository interface {
	Exists(userID, capstoneID uint) (bool, error)
	Create(bookmark *models.Bookmark) error
	Delete(userID, capstoneID uint) error
	ListByUser(userID uint) ([]models.Bookmark, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Exists(userID, capstoneID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Bookmark{}).
		Where("user_id = ? AND capstone_id = ?", userID, capstoneID).
		Count(&count).Error
	return count > 0, err
}

func (r *bookmarkRepository) Create(bookmark *models.Bookmark) error {
	return r.db.Create(bookmark).Error
}

func (r *bookmarkRepository) Delete(userID, capstoneID uint) error {
	return r.db.Where("user_id = ? AND capstone_id = ?", userID, capstoneID).Delete(&models.Bookmark{}).Error
}

func (r *bookmarkRepository) ListByUser(userID uint) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := r.db.Where("user_id = ?", userID).
		Preload("Capstone").
		Order("created_at desc").
		Find(&bookmarks).Error
	return bookmarks, err
}
