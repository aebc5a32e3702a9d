package memory

import (
	"sort"
	"strings"
	"time"

	"capstone-tracker/models"

	"gorm.io/gorm"
)

type capstoneRepository struct {
	s *Store
}

func (r *capstoneRepository) Create(capstone *models.CapstoneSubmission) error {
	return r.s.write(func(d *dataset) error {
		for _, row := range d.capstones {
			if row.GroupKey == capstone.GroupKey {
				return gorm.ErrDuplicatedKey
			}
		}
		capstone.ID = d.id()
		stamp(&capstone.CreatedAt, &capstone.UpdatedAt)
		d.capstones[capstone.ID] = *capstone
		return nil
	})
}

func (r *capstoneRepository) GetByID(id uint) (*models.CapstoneSubmission, error) {
	var capstone models.CapstoneSubmission
	err := r.s.read(func(d *dataset) error {
		row, ok := d.capstones[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		capstone = row
		return nil
	})
	return &capstone, err
}

func (r *capstoneRepository) GetByGroupKey(groupKey string) (*models.CapstoneSubmission, error) {
	var capstone models.CapstoneSubmission
	err := r.s.read(func(d *dataset) error {
		for _, row := range d.capstones {
			if row.GroupKey == groupKey {
				capstone = row
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	})
	return &capstone, err
}

func (r *capstoneRepository) ExistsByOwners(ownerIDs []uint) (bool, error) {
	found := false
	err := r.s.read(func(d *dataset) error {
		for _, row := range d.capstones {
			for _, id := range ownerIDs {
				if row.OwnerID == id {
					found = true
					return nil
				}
			}
		}
		return nil
	})
	return found, err
}

func (r *capstoneRepository) Update(capstone *models.CapstoneSubmission) error {
	return r.s.write(func(d *dataset) error {
		if _, ok := d.capstones[capstone.ID]; !ok {
			return gorm.ErrRecordNotFound
		}
		stamp(nil, &capstone.UpdatedAt)
		d.capstones[capstone.ID] = *capstone
		return nil
	})
}

func (r *capstoneRepository) List(params models.CapstoneListParams, status models.CapstoneStatus) ([]models.CapstoneSubmission, int64, error) {
	search := strings.ToLower(strings.TrimSpace(params.Search))
	var matched []models.CapstoneSubmission
	err := r.s.read(func(d *dataset) error {
		for _, row := range d.capstones {
			if row.Status != status {
				continue
			}
			if params.Year > 0 && row.Year != params.Year {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(row.Title), search) &&
				!strings.Contains(strings.ToLower(row.Keywords), search) &&
				!strings.Contains(strings.ToLower(row.Abstract), search) {
				continue
			}
			matched = append(matched, row)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Year != matched[j].Year {
			return matched[i].Year > matched[j].Year
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := (params.Page - 1) * params.Limit
	if start < 0 || start >= len(matched) {
		return []models.CapstoneSubmission{}, total, nil
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type bookmarkRepository struct {
	s *Store
}

func (r *bookmarkRepository) Exists(userID, capstoneID uint) (bool, error) {
	found := false
	err := r.s.read(func(d *dataset) error {
		for _, b := range d.bookmarks {
			if b.UserID == userID && b.CapstoneID == capstoneID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r *bookmarkRepository) Create(bookmark *models.Bookmark) error {
	return r.s.write(func(d *dataset) error {
		for _, b := range d.bookmarks {
			if b.UserID == bookmark.UserID && b.CapstoneID == bookmark.CapstoneID {
				return gorm.ErrDuplicatedKey
			}
		}
		bookmark.ID = d.id()
		if bookmark.CreatedAt.IsZero() {
			bookmark.CreatedAt = time.Now()
		}
		row := *bookmark
		row.Capstone = nil
		d.bookmarks[row.ID] = row
		return nil
	})
}

func (r *bookmarkRepository) Delete(userID, capstoneID uint) error {
	return r.s.write(func(d *dataset) error {
		for id, b := range d.bookmarks {
			if b.UserID == userID && b.CapstoneID == capstoneID {
				delete(d.bookmarks, id)
			}
		}
		return nil
	})
}

func (r *bookmarkRepository) ListByUser(userID uint) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := r.s.read(func(d *dataset) error {
		for _, b := range d.bookmarks {
			if b.UserID != userID {
				continue
			}
			if c, ok := d.capstones[b.CapstoneID]; ok {
				c := c
				b.Capstone = &c
			}
			bookmarks = append(bookmarks, b)
		}
		return nil
	})
	sort.Slice(bookmarks, func(i, j int) bool { return bookmarks[i].ID > bookmarks[j].ID })
	return bookmarks, err
}
