package models

import (
	"time"

	"gorm.io/gorm"
)

type List struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Color       string         `gorm:"type:varchar(50)" json:"color"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members []ListMembership `gorm:"foreignKey:ListID" json:"members,omitempty"`
	Tasks   []Task           `gorm:"foreignKey:ListID" json:"tasks,omitempty"`
}
