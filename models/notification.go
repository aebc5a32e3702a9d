package models

import "time"

type NotificationSeverity string

const (
	SeverityInfo    NotificationSeverity = "info"
	SeveritySuccess NotificationSeverity = "success"
	SeverityWarning NotificationSeverity = "warning"
	SeverityError   NotificationSeverity = "error"
)

type Notification struct {
	ID          uint                 `json:"id" gorm:"primarykey"`
	UserID      uint                 `json:"user_id" gorm:"index;not null"`
	Title       string               `json:"title" gorm:"not null"`
	Message     string               `json:"message" gorm:"type:text"`
	Type        NotificationSeverity `json:"type" gorm:"size:16;default:'info'"` // info|success|warning|error
	RelatedID   *uint                `json:"related_id,omitempty"`
	RelatedType string               `json:"related_type,omitempty" gorm:"size:40"`
	IsRead      bool                 `json:"is_read" gorm:"default:false"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"-"`
}

func (Notification) TableName() string { return "notifications" }
