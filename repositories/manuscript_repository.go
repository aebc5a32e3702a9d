package repositories

import (
	"capstone-tracker/models"

	"gorm.io/gorm"
)

type ManuscriptRepository interface {
	Get(lineageID uint) (*models.ManuscriptReview, error)
	Create(review *models.ManuscriptReview) error
	Update(review *models.ManuscriptReview) error
	Delete(id uint) error
	ListByStatus(statuses ...models.ManuscriptStatus) ([]models.ManuscriptReview, error)
}

type manuscriptRepository struct {
	db *gorm.DB
}

func NewManuscriptRepository(db *gorm.DB) ManuscriptRepository {
	return &manuscriptRepository{db: db}
}

func (r *manuscriptRepository) Get(lineageID uint) (*models.ManuscriptReview, error) {
	var review models.ManuscriptReview
	err := r.db.Where("lineage_id = ?", lineageID).First(&review).Error
	return &review, err
}

func (r *manuscriptRepository) Create(review *models.ManuscriptReview) error {
	return r.db.Create(review).Error
}

// Update writes every column so cleared review fields become NULL.
func (r *manuscriptRepository) Update(review *models.ManuscriptReview) error {
	return r.db.Select("*").Save(review).Error
}

func (r *manuscriptRepository) Delete(id uint) error {
	return r.db.Delete(&models.ManuscriptReview{}, id).Error
}

func (r *manuscriptRepository) ListByStatus(statuses ...models.ManuscriptStatus) ([]models.ManuscriptReview, error) {
	var reviews []models.ManuscriptReview
	err := r.db.Where("status IN ?", statuses).Order("updated_at asc").Find(&reviews).Error
	return reviews, err
}
