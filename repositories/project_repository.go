package repositories

import (
	"capstone-tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository interface {
	Create(project *models.Project) error
	GetByID(id uint) (*models.Project, error)
	GetActive(lineageID uint, forUpdate bool) (*models.Project, error)
	ListLineage(lineageID uint) ([]models.Project, error)
	ListActiveBySubmitters(submitterIDs []uint) ([]models.Project, error)
	ListActiveByAdviser(adviserID uint) ([]models.Project, error)
	ListAllActive() ([]models.Project, error)
	FindLineageIDByTitle(title string, submitterIDs []uint) (uint, error)
	Archive(id uint) error
	Update(project *models.Project) error
	SaveApproval(approval *models.Approval) error
	DeleteLineage(lineageID uint) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create inserts the row with its approval. A row without a lineage starts
// its own, keyed by its ID.
func (r *projectRepository) Create(project *models.Project) error {
	if project.Approval == nil {
		project.Approval = models.NewApproval()
	}
	if err := r.db.Create(project).Error; err != nil {
		return err
	}
	if project.LineageID == 0 {
		project.LineageID = project.ID
		return r.db.Model(&models.Project{}).Where("id = ?", project.ID).
			Update("lineage_id", project.ID).Error
	}
	return nil
}

func (r *projectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("Approval").First(&project, id).Error
	return &project, err
}

func (r *projectRepository) GetActive(lineageID uint, forUpdate bool) (*models.Project, error) {
	var project models.Project
	query := r.db.Where("lineage_id = ? AND archived = ?", lineageID, false)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.Preload("Approval").First(&project).Error
	return &project, err
}

func (r *projectRepository) ListLineage(lineageID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("lineage_id = ?", lineageID).
		Preload("Approval").
		Order("version asc").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) ListActiveBySubmitters(submitterIDs []uint) ([]models.Project, error) {
	var projects []models.Project
	if len(submitterIDs) == 0 {
		return projects, nil
	}
	err := r.db.Where("archived = ? AND lineage_id IN (?)", false,
		r.db.Model(&models.Project{}).Select("lineage_id").Where("submitted_by IN ?", submitterIDs)).
		Preload("Approval").
		Order("created_at desc").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) ListActiveByAdviser(adviserID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("archived = ? AND adviser_id = ?", false, adviserID).
		Preload("Approval").
		Order("created_at desc").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) ListAllActive() ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Where("archived = ?", false).
		Preload("Approval").
		Order("created_at desc").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepository) FindLineageIDByTitle(title string, submitterIDs []uint) (uint, error) {
	var project models.Project
	err := r.db.Where("title = ? AND submitted_by IN ?", title, submitterIDs).
		Order("id asc").
		First(&project).Error
	return project.LineageID, err
}

// Archive flips the row only while it is still active and reports
// ErrStaleVersion otherwise.
func (r *projectRepository) Archive(id uint) error {
	res := r.db.Model(&models.Project{}).
		Where("id = ? AND archived = ?", id, false).
		Update("archived", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *projectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

func (r *projectRepository) SaveApproval(approval *models.Approval) error {
	return r.db.Save(approval).Error
}

func (r *projectRepository) DeleteLineage(lineageID uint) error {
	ids := r.db.Model(&models.Project{}).Select("id").Where("lineage_id = ?", lineageID)
	if err := r.db.Where("project_id IN (?)", ids).Delete(&models.Approval{}).Error; err != nil {
		return err
	}
	return r.db.Where("lineage_id = ?", lineageID).Delete(&models.Project{}).Error
}
