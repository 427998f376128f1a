package repository

import (
	"github.com/vidolch/ai-todo/internal/database"
	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByOwner retrieves a user's own tasks, newest first, paginated
func (r *GormTaskRepository) ListByOwner(userID uint64, params utils.PaginationParams) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	if err := query.
		Preload("Tags").
		Preload("Parent").
		Preload("Subtasks").
		Preload("Subtasks.User").
		Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListByList retrieves every task in a list regardless of creator,
// newest first
func (r *GormTaskRepository) ListByList(listID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.
		Preload("Tags").
		Preload("User").
		Preload("Parent").
		Preload("Subtasks").
		Preload("Subtasks.User").
		Where("list_id = ?", listID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// ReplaceTags replaces a task's tag associations
func (r *GormTaskRepository) ReplaceTags(task *models.Task, tags []models.Tag) error {
	return r.db.Model(task).Association("Tags").Replace(tags)
}

// HasSubtasks reports whether any task has the given task as its parent
func (r *GormTaskRepository) HasSubtasks(id uint64) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Task{}).
		Where("parent_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete soft deletes a task together with its subtasks
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// MoveOwnedTasks moves a user's tasks from one list to another
func (r *GormTaskRepository) MoveOwnedTasks(listID, targetListID, userID uint64) error {
	return r.db.Model(&models.Task{}).
		Where("list_id = ? AND user_id = ?", listID, userID).
		Update("list_id", targetListID).Error
}

// DeleteOwnedTasks deletes a user's tasks within a list
func (r *GormTaskRepository) DeleteOwnedTasks(listID, userID uint64) error {
	return r.db.Where("list_id = ? AND user_id = ?", listID, userID).
		Delete(&models.Task{}).Error
}
