package models

import "time"

type Bookmark struct {
	ID         uint                `json:"id" gorm:"primarykey"`
	UserID     uint                `json:"user_id" gorm:"uniqueIndex:idx_bookmark_user_capstone;not null"`
	CapstoneID uint                `json:"capstone_id" gorm:"uniqueIndex:idx_bookmark_user_capstone;not null"`
	Capstone   *CapstoneSubmission `json:"capstone,omitempty" gorm:"foreignKey:CapstoneID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time           `json:"created_at"`
}
