package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/repository"
	"github.com/vidolch/ai-todo/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTitleRequired        = errors.New("title is required")
	ErrTitleEmpty           = errors.New("title cannot be empty")
	ErrInvalidSeverity      = errors.New("severity must be low, normal or critical")
	ErrNotTaskOwner         = errors.New("only the task owner can perform this action")
	ErrTaskPermissionDenied = errors.New("user does not have permission to modify this task")
	ErrParentNotFound       = errors.New("parent task not found")
	ErrSubtaskDepth         = errors.New("a subtask cannot have subtasks of its own")
	ErrTagNotFound          = errors.New("one or more tags do not exist")
	ErrTargetListNotFound   = errors.New("target list not found")
)

// taskPreloads are the relations loaded for single-task responses.
var taskPreloads = []string{"Tags", "User", "Parent", "Subtasks", "Subtasks.User"}

// TaskService handles task business logic, including the capability model:
// a task's owner has full modification rights, other members of the task's
// list may only toggle completion, everyone else has no rights.
type TaskService struct {
	taskRepo repository.TaskRepository
	listRepo repository.ListRepository
	tagRepo  repository.TagRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, listRepo repository.ListRepository, tagRepo repository.TagRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		listRepo: listRepo,
		tagRepo:  tagRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Severity    models.TaskSeverity
	DueDate     *time.Time
	ListID      *uint64
	ParentID    *uint64
	TagIDs      []uint64
	CreatorID   uint64
}

// UpdateTaskInput represents a full task update, available to the task's
// owner only. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Severity     *models.TaskSeverity
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
	ListID       *uint64
	ClearListID  bool
	ParentID     *uint64
	ClearParent  bool
	Position     *int
	TagIDs       []uint64
	HasTagIDs    bool
}

// ListOwnTasks returns the user's own tasks, newest first
func (s *TaskService) ListOwnTasks(userID uint64, params utils.PaginationParams) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.ListByOwner(userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListTasksForList returns every task in a list regardless of creator. The
// caller's membership must already be verified.
func (s *TaskService) ListTasksForList(listID uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListByList(listID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task with related data. Visibility follows the
// capability model: the owner and members of the task's list see the task,
// everyone else sees not found.
func (s *TaskService) GetTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !isTaskOwner(task, actorID) {
		if task.ListID == nil {
			return nil, ErrTaskNotFound
		}
		if err := s.ensureListMember(*task.ListID, actorID); err != nil {
			return nil, ErrTaskNotFound
		}
	}

	return task, nil
}

// CreateTask creates a task owned by its creator
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if input.Severity == "" {
		input.Severity = models.SeverityNormal
	}
	if !input.Severity.Valid() {
		return nil, ErrInvalidSeverity
	}

	if input.ListID != nil {
		if err := s.ensureListMember(*input.ListID, input.CreatorID); err != nil {
			return nil, err
		}
	}

	if input.ParentID != nil {
		if err := s.checkParent(*input.ParentID); err != nil {
			return nil, err
		}
	}

	tags, err := s.resolveTags(input.TagIDs)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Severity:    input.Severity,
		DueDate:     input.DueDate,
		UserID:      &input.CreatorID,
		ListID:      input.ListID,
		ParentID:    input.ParentID,
		Tags:        tags,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// SetCompletion toggles a task's completed flag. The owner may always do
// this; a non-owner needs membership in the task's list. Absent membership
// surfaces as not found so task existence is not confirmed to outsiders.
func (s *TaskService) SetCompletion(taskID, actorID uint64, completed bool) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !isTaskOwner(task, actorID) {
		if task.ListID == nil {
			return nil, ErrTaskNotFound
		}
		if err := s.ensureListMember(*task.ListID, actorID); err != nil {
			return nil, ErrTaskNotFound
		}
	}

	task.Completed = completed
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateTask applies a full update to a task. Only the owner may do this;
// a list member who is not the owner is refused, and a caller with no
// relationship to the task sees not found.
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !isTaskOwner(task, actorID) {
		if task.ListID != nil && s.ensureListMember(*task.ListID, actorID) == nil {
			return nil, ErrTaskPermissionDenied
		}
		return nil, ErrTaskNotFound
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Severity != nil {
		if !input.Severity.Valid() {
			return nil, ErrInvalidSeverity
		}
		task.Severity = *input.Severity
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearListID {
		task.ListID = nil
	} else if input.ListID != nil {
		if err := s.ensureListMember(*input.ListID, actorID); err != nil {
			return nil, err
		}
		task.ListID = input.ListID
	}
	if input.ClearParent {
		task.ParentID = nil
	} else if input.ParentID != nil {
		if *input.ParentID == task.ID {
			return nil, ErrSubtaskDepth
		}
		// A task with subtasks of its own can never become a subtask.
		hasChildren, err := s.taskRepo.HasSubtasks(task.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check subtasks: %w", err)
		}
		if hasChildren {
			return nil, ErrSubtaskDepth
		}
		if err := s.checkParent(*input.ParentID); err != nil {
			return nil, err
		}
		task.ParentID = input.ParentID
	}
	if input.Position != nil {
		task.Position = *input.Position
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if input.HasTagIDs {
		tags, err := s.resolveTags(input.TagIDs)
		if err != nil {
			return nil, err
		}
		if err := s.taskRepo.ReplaceTags(task, tags); err != nil {
			return nil, fmt.Errorf("failed to update tags: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// DeleteTask deletes a task if the actor owns it
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !isTaskOwner(task, actorID) {
		if task.ListID != nil && s.ensureListMember(*task.ListID, actorID) == nil {
			return ErrNotTaskOwner
		}
		return ErrTaskNotFound
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// MoveListTasks moves the actor's tasks from one list to another. The actor
// must be a member of both; the source membership is checked by the caller.
func (s *TaskService) MoveListTasks(listID, targetListID, actorID uint64) error {
	if err := s.ensureListMember(targetListID, actorID); err != nil {
		return ErrTargetListNotFound
	}

	if err := s.taskRepo.MoveOwnedTasks(listID, targetListID, actorID); err != nil {
		return fmt.Errorf("failed to move tasks: %w", err)
	}

	return nil
}

// DeleteListTasks deletes the actor's tasks within a list
func (s *TaskService) DeleteListTasks(listID, actorID uint64) error {
	if err := s.taskRepo.DeleteOwnedTasks(listID, actorID); err != nil {
		return fmt.Errorf("failed to delete tasks: %w", err)
	}
	return nil
}

func isTaskOwner(task *models.Task, userID uint64) bool {
	return task.UserID != nil && *task.UserID == userID
}

func (s *TaskService) ensureListMember(listID, userID uint64) error {
	if _, err := s.listRepo.FindMembership(listID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotListMember
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	return nil
}

// checkParent enforces the one-level subtask hierarchy: the parent must
// exist and must not itself be a subtask.
func (s *TaskService) checkParent(parentID uint64) error {
	parent, err := s.taskRepo.FindByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParentNotFound
		}
		return fmt.Errorf("failed to find parent task: %w", err)
	}
	if parent.ParentID != nil {
		return ErrSubtaskDepth
	}
	return nil
}

func (s *TaskService) resolveTags(tagIDs []uint64) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	tags, err := s.tagRepo.FindByIDs(tagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find tags: %w", err)
	}
	if len(tags) != len(uniqueUint64(tagIDs)) {
		return nil, ErrTagNotFound
	}
	return tags, nil
}

func uniqueUint64(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	result := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
