package memory

import (
	"sort"

	"capstone-tracker/models"

	"gorm.io/gorm"
)

type defenseRepository struct {
	s *Store
}

func (r *defenseRepository) Get(kind models.DefenseKind, lineageID uint) (*models.Defense, error) {
	var defense models.Defense
	err := r.s.read(func(d *dataset) error {
		for _, row := range d.defenses {
			if row.Kind == kind && row.LineageID == lineageID {
				defense = row
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	})
	return &defense, err
}

func (r *defenseRepository) Create(defense *models.Defense) error {
	return r.s.write(func(d *dataset) error {
		for _, row := range d.defenses {
			if row.Kind == defense.Kind && row.LineageID == defense.LineageID {
				return gorm.ErrDuplicatedKey
			}
		}
		defense.ID = d.id()
		stamp(&defense.CreatedAt, &defense.UpdatedAt)
		d.defenses[defense.ID] = *defense
		return nil
	})
}

func (r *defenseRepository) Update(defense *models.Defense) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.defenses[defense.ID]; !ok {
			return gorm.ErrRecordNotFound
		}
		stamp(nil, &defense.UpdatedAt)
		d.defenses[defense.ID] = *defense
		return nil
	})
}

func (r *defenseRepository) Delete(id uint) error {
	return r.s.write(func(d *dataset) error {
		delete(d.defenses, id)
		return nil
	})
}

type manuscriptRepository struct {
	s *Store
}

func (r *manuscriptRepository) Get(lineageID uint) (*models.ManuscriptReview, error) {
	var review models.ManuscriptReview
	err := r.s.read(func(d *dataset) error {
		for _, row := range d.manuscripts {
			if row.LineageID == lineageID {
				review = row
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	})
	return &review, err
}

func (r *manuscriptRepository) Create(review *models.ManuscriptReview) error {
	return r.s.write(func(d *dataset) error {
		for _, row := range d.manuscripts {
			if row.LineageID == review.LineageID {
				return gorm.ErrDuplicatedKey
			}
		}
		review.ID = d.id()
		stamp(&review.CreatedAt, &review.UpdatedAt)
		d.manuscripts[review.ID] = *review
		return nil
	})
}

func (r *manuscriptRepository) Update(review *models.ManuscriptReview) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.manuscripts[review.ID]; !ok {
			return gorm.ErrRecordNotFound
		}
		stamp(nil, &review.UpdatedAt)
		d.manuscripts[review.ID] = *review
		return nil
	})
}

func (r *manuscriptRepository) Delete(id uint) error {
	return r.s.write(func(d *dataset) error {
		delete(d.manuscripts, id)
		return nil
	})
}

func (r *manuscriptRepository) ListByStatus(statuses ...models.ManuscriptStatus) ([]models.ManuscriptReview, error) {
	var reviews []models.ManuscriptReview
	err := r.s.read(func(d *dataset) error {
		for _, row := range d.manuscripts {
			for _, st := range statuses {
				if row.Status == st {
					reviews = append(reviews, row)
					break
				}
			}
		}
		return nil
	})
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID < reviews[j].ID })
	return reviews, err
}
