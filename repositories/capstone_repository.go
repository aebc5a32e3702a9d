package repositories

import (
	"strings"

	"capstone-tracker/models"

	"gorm.io/gorm"
)

type CapstoneRepository interface {
	Create(capstone *models.CapstoneSubmission) error
	GetByID(id uint) (*models.CapstoneSubmission, error)
	GetByGroupKey(groupKey string) (*models.CapstoneSubmission, error)
	ExistsByOwners(ownerIDs []uint) (bool, error)
	Update(capstone *models.CapstoneSubmission) error
	List(params models.CapstoneListParams, status models.CapstoneStatus) ([]models.CapstoneSubmission, int64, error)
}

type capstoneRepository struct {
	db *gorm.DB
}

func NewCapstoneRepository(db *gorm.DB) CapstoneRepository {
	return &capstoneRepository{db: db}
}

func (r *capstoneRepository) Create(capstone *models.CapstoneSubmission) error {
	return r.db.Create(capstone).Error
}

func (r *capstoneRepository) GetByID(id uint) (*models.CapstoneSubmission, error) {
	var capstone models.CapstoneSubmission
	err := r.db.First(&capstone, id).Error
	return &capstone, err
}

func (r *capstoneRepository) GetByGroupKey(groupKey string) (*models.CapstoneSubmission, error) {
	var capstone models.CapstoneSubmission
	err := r.db.Where("group_key = ?", groupKey).First(&capstone).Error
	return &capstone, err
}

func (r *capstoneRepository) ExistsByOwners(ownerIDs []uint) (bool, error) {
	if len(ownerIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.CapstoneSubmission{}).Where("owner_id IN ?", ownerIDs).Count(&count).Error
	return count > 0, err
}

func (r *capstoneRepository) Update(capstone *models.CapstoneSubmission) error {
	return r.db.Save(capstone).Error
}

func (r *capstoneRepository) List(params models.CapstoneListParams, status models.CapstoneStatus) ([]models.CapstoneSubmission, int64, error) {
	var capstones []models.CapstoneSubmission
	var total int64

	query := r.db.Model(&models.CapstoneSubmission{}).Where("status = ?", status)

	if search := strings.TrimSpace(params.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(keywords) LIKE ? OR LOWER(abstract) LIKE ?", like, like, like)
	}

	if params.Year > 0 {
		query = query.Where("year = ?", params.Year)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit
	err := query.Order("year desc, id desc").Offset(offset).Limit(params.Limit).Find(&capstones).Error

	return capstones, total, err
}
