package repositories

import (
	"capstone-tracker/models"

	"gorm.io/gorm"
)

type DefenseRepository interface {
	Get(kind models.DefenseKind, lineageID uint) (*models.Defense, error)
	Create(defense *models.Defense) error
	Update(defense *models.Defense) error
	Delete(id uint) error
}

type defenseRepository struct {
	db *gorm.DB
}

func NewDefenseRepository(db *gorm.DB) DefenseRepository {
	return &defenseRepository{db: db}
}

func (r *defenseRepository) Get(kind models.DefenseKind, lineageID uint) (*models.Defense, error) {
	var defense models.Defense
	err := r.db.Where("kind = ? AND lineage_id = ?", kind, lineageID).First(&defense).Error
	return &defense, err
}

func (r *defenseRepository) Create(defense *models.Defense) error {
	return r.db.Create(defense).Error
}

func (r *defenseRepository) Update(defense *models.Defense) error {
	return r.db.Save(defense).Error
}

func (r *defenseRepository) Delete(id uint) error {
	return r.db.Delete(&models.Defense{}, id).Error
}
