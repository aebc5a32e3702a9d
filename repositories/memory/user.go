package memory

import (
	"sort"

	"capstone-tracker/models"

	"gorm.io/gorm"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(user *models.User) error {
	return r.s.write(func(d *dataset) error {
		for _, u := range d.users {
			if u.Email == user.Email || u.Username == user.Username {
				return gorm.ErrDuplicatedKey
			}
		}
		user.ID = d.id()
		stamp(&user.CreatedAt, &user.UpdatedAt)
		d.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.s.read(func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		user = u
		return nil
	})
	return &user, err
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.s.read(func(d *dataset) error {
		for _, u := range d.users {
			if u.Email == email {
				user = u
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	})
	return &user, err
}

func (r *userRepository) ListByGroupCode(groupCode string) ([]models.User, error) {
	return r.filter(func(u models.User) bool { return u.GroupCode == groupCode })
}

func (r *userRepository) ListByRole(role models.UserRole) ([]models.User, error) {
	return r.filter(func(u models.User) bool { return u.Role == role })
}

func (r *userRepository) filter(keep func(models.User) bool) ([]models.User, error) {
	var users []models.User
	err := r.s.read(func(d *dataset) error {
		for _, u := range d.users {
			if keep(u) {
				users = append(users, u)
			}
		}
		return nil
	})
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, err
}
