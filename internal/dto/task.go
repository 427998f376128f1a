package dto

import (
	"time"

	"github.com/vidolch/ai-todo/internal/models"
)

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Severity    models.TaskSeverity `json:"severity"`
	Completed   bool                `json:"completed"`
	DueDate     *time.Time          `json:"due_date"`
	UserID      *uint64             `json:"user_id"`
	ListID      *uint64             `json:"list_id"`
	ParentID    *uint64             `json:"parent_id"`
	Position    int                 `json:"position"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	User        *UserDTO            `json:"user,omitempty"`
	Parent      *TaskDTO            `json:"parent,omitempty"`
	Subtasks    []TaskDTO           `json:"subtasks,omitempty"`
	Tags        []TagDTO            `json:"tags,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// ToTagDTO converts a Tag model to TagDTO
func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{
		ID:   tag.ID,
		Name: tag.Name,
	}
}

// ToTagDTOs converts a slice of tags
func ToTagDTOs(tags []models.Tag) []TagDTO {
	dtos := make([]TagDTO, len(tags))
	for i, tag := range tags {
		dtos[i] = ToTagDTO(tag)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Severity:    task.Severity,
		Completed:   task.Completed,
		DueDate:     task.DueDate,
		UserID:      task.UserID,
		ListID:      task.ListID,
		ParentID:    task.ParentID,
		Position:    task.Position,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	if task.User != nil {
		user := ToUserDTO(*task.User)
		dto.User = &user
	}

	if task.Parent != nil {
		parent := ToTaskDTO(*task.Parent)
		dto.Parent = &parent
	}

	if len(task.Subtasks) > 0 {
		dto.Subtasks = make([]TaskDTO, len(task.Subtasks))
		for i, sub := range task.Subtasks {
			dto.Subtasks[i] = ToTaskDTO(sub)
		}
	}

	if len(task.Tags) > 0 {
		dto.Tags = ToTagDTOs(task.Tags)
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
