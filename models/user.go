package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleFaculty    UserRole = "faculty"
	RoleDean       UserRole = "dean"
	RoleGrammarian UserRole = "grammarian"
	RoleAdmin      UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleDean, RoleGrammarian, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	Username    string         `json:"username" gorm:"uniqueIndex;not null"`
	Email       string         `json:"email" gorm:"uniqueIndex;not null"`
	Password    string         `json:"-" gorm:"not null"`
	Role        UserRole       `json:"role" gorm:"size:20;default:'student'"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	GroupCode   string         `json:"group_code" gorm:"size:64;index"`
	YearSection string         `json:"year_section" gorm:"size:16"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsFinalYear reports whether the student's year-section code marks the final (fourth) year.
func (u User) IsFinalYear() bool {
	return strings.HasPrefix(strings.TrimSpace(u.YearSection), "4")
}

func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func (u User) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
