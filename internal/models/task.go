package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskSeverity string

const (
	SeverityLow      TaskSeverity = "low"
	SeverityNormal   TaskSeverity = "normal"
	SeverityCritical TaskSeverity = "critical"
)

// Valid reports whether the severity is one of the known values.
func (s TaskSeverity) Valid() bool {
	return s == SeverityLow || s == SeverityNormal || s == SeverityCritical
}

// Task is owned by the user who created it. UserID is nullable: a task
// whose owning user has been detached is "unassigned" and may be picked up
// by the membership backfill.
type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Severity    TaskSeverity   `gorm:"type:varchar(20);not null;default:'normal'" json:"severity"`
	Completed   bool           `gorm:"not null;default:false" json:"completed"`
	DueDate     *time.Time     `json:"due_date"`
	UserID      *uint64        `gorm:"index" json:"user_id"`
	ListID      *uint64        `gorm:"index" json:"list_id"`
	ParentID    *uint64        `gorm:"index" json:"parent_id"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	List     *List  `gorm:"foreignKey:ListID" json:"list,omitempty"`
	Parent   *Task  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Subtasks []Task `gorm:"foreignKey:ParentID" json:"subtasks,omitempty"`
	Tags     []Tag  `gorm:"many2many:task_tags;" json:"tags,omitempty"`
}
