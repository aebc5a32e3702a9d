package memory

import (
	"sort"

	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"gorm.io/gorm"
)

type projectRepository struct {
	s *Store
}

func (d *dataset) withApproval(p models.Project) models.Project {
	p.Approval = nil
	for _, a := range d.approvals {
		if a.ProjectID == p.ID {
			a := a
			p.Approval = &a
			break
		}
	}
	return p
}

func (d *dataset) saveApproval(a *models.Approval) {
	if a.ID == 0 {
		a.ID = d.id()
	}
	stamp(&a.CreatedAt, &a.UpdatedAt)
	d.approvals[a.ID] = *a
}

func sortByCreatedDesc(projects []models.Project) {
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID > projects[j].ID
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
}

func (r *projectRepository) Create(project *models.Project) error {
	return r.s.write(func(d *dataset) error {
		if project.Approval == nil {
			project.Approval = models.NewApproval()
		}
		project.ID = d.id()
		if project.LineageID == 0 {
			project.LineageID = project.ID
		}
		stamp(&project.CreatedAt, &project.UpdatedAt)
		project.Approval.ProjectID = project.ID
		d.saveApproval(project.Approval)

		row := *project
		row.Approval = nil
		d.projects[row.ID] = row
		return nil
	})
}

func (r *projectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	err := r.s.read(func(d *dataset) error {
		p, ok := d.projects[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		project = d.withApproval(p)
		return nil
	})
	return &project, err
}

func (r *projectRepository) GetActive(lineageID uint, forUpdate bool) (*models.Project, error) {
	var project models.Project
	err := r.s.read(func(d *dataset) error {
		for _, p := range d.projects {
			if p.LineageID == lineageID && !p.Archived {
				project = d.withApproval(p)
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	})
	return &project, err
}

func (r *projectRepository) ListLineage(lineageID uint) ([]models.Project, error) {
	var projects []models.Project
	err := r.s.read(func(d *dataset) error {
		for _, p := range d.projects {
			if p.LineageID == lineageID {
				projects = append(projects, d.withApproval(p))
			}
		}
		return nil
	})
	sort.Slice(projects, func(i, j int) bool { return projects[i].Version < projects[j].Version })
	return projects, err
}

func (r *projectRepository) ListActiveBySubmitters(submitterIDs []uint) ([]models.Project, error) {
	ids := make(map[uint]bool, len(submitterIDs))
	for _, id := range submitterIDs {
		ids[id] = true
	}
	var projects []models.Project
	err := r.s.read(func(d *dataset) error {
		lineages := map[uint]bool{}
		for _, p := range d.projects {
			if ids[p.SubmittedBy] {
				lineages[p.LineageID] = true
			}
		}
		for _, p := range d.projects {
			if !p.Archived && lineages[p.LineageID] {
				projects = append(projects, d.withApproval(p))
			}
		}
		return nil
	})
	sortByCreatedDesc(projects)
	return projects, err
}

func (r *projectRepository) ListActiveByAdviser(adviserID uint) ([]models.Project, error) {
	return r.activeWhere(func(p models.Project) bool {
		return p.AdviserID != nil && *p.AdviserID == adviserID
	})
}

func (r *projectRepository) ListAllActive() ([]models.Project, error) {
	return r.activeWhere(func(models.Project) bool { return true })
}

func (r *projectRepository) activeWhere(keep func(models.Project) bool) ([]models.Project, error) {
	var projects []models.Project
	err := r.s.read(func(d *dataset) error {
		for _, p := range d.projects {
			if !p.Archived && keep(p) {
				projects = append(projects, d.withApproval(p))
			}
		}
		return nil
	})
	sortByCreatedDesc(projects)
	return projects, err
}

func (r *projectRepository) FindLineageIDByTitle(title string, submitterIDs []uint) (uint, error) {
	var found *models.Project
	err := r.s.read(func(d *dataset) error {
		for _, p := range d.projects {
			if p.Title != title {
				continue
			}
			for _, id := range submitterIDs {
				if p.SubmittedBy == id && (found == nil || p.ID < found.ID) {
					p := p
					found = &p
				}
			}
		}
		if found == nil {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return found.LineageID, nil
}

func (r *projectRepository) Archive(id uint) error {
	return r.s.write(func(d *dataset) error {
		p, ok := d.projects[id]
		if !ok || p.Archived {
			return repositories.ErrStaleVersion
		}
		p.Archived = true
		stamp(nil, &p.UpdatedAt)
		d.projects[id] = p
		return nil
	})
}

func (r *projectRepository) Update(project *models.Project) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.projects[project.ID]; !ok {
			return gorm.ErrRecordNotFound
		}
		stamp(nil, &project.UpdatedAt)
		row := *project
		row.Approval = nil
		d.projects[row.ID] = row
		return nil
	})
}

func (r *projectRepository) SaveApproval(approval *models.Approval) error {
	return r.s.write(func(d *dataset) error {
		d.saveApproval(approval)
		return nil
	})
}

func (r *projectRepository) DeleteLineage(lineageID uint) error {
	return r.s.write(func(d *dataset) error {
		for id, p := range d.projects {
			if p.LineageID != lineageID {
				continue
			}
			for aid, a := range d.approvals {
				if a.ProjectID == id {
					delete(d.approvals, aid)
				}
			}
			delete(d.projects, id)
		}
		return nil
	})
}
