package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidolch/ai-todo/internal/dto"
	apierrors "github.com/vidolch/ai-todo/internal/errors"
	"github.com/vidolch/ai-todo/internal/middleware"
	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/services"
	"github.com/vidolch/ai-todo/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the caller's own tasks, newest first, paginated.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListOwnTasks(userID, params)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks:      dto.ToTaskDTOs(tasks),
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
	})
}

// CreateTask creates a task owned by the caller.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Severity    string     `json:"severity"`
		DueDate     *time.Time `json:"due_date"`
		ListID      *uint64    `json:"list_id"`
		ParentID    *uint64    `json:"parent_id"`
		TagIDs      []uint64   `json:"tag_ids"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    models.TaskSeverity(req.Severity),
		DueDate:     req.DueDate,
		ListID:      req.ListID,
		ParentID:    req.ParentID,
		TagIDs:      req.TagIDs,
		CreatorID:   userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a task with related data.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies either a completion-only update or a full update,
// depending on the request shape. A body whose only key is `completed`
// is a completion toggle, available to any member of the task's list; any
// other shape is a full update, available to the task's owner only.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if len(raw) == 0 {
		apierrors.BadRequest(c, "No fields to update")
		return
	}

	if completed, isCompletionOnly := completionOnlyUpdate(raw); isCompletionOnly {
		task, err := h.taskService.SetCompletion(taskID, userID, completed)
		if err != nil {
			respondTaskError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
		return
	}

	input, err := parseTaskUpdate(raw)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(taskID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes the caller's own task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTasksForList returns every task in the list regardless of creator.
// Membership is verified by RequireListAccess.
func (h *TaskHandler) ListTasksForList(c *gin.Context) {
	list, ok := middleware.GetList(c)
	if !ok {
		apierrors.InternalError(c, "List not found in context")
		return
	}

	tasks, err := h.taskService.ListTasksForList(list.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// MoveListTasks moves the caller's tasks from this list to another list
// the caller is also a member of.
func (h *TaskHandler) MoveListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	list, ok := middleware.GetList(c)
	if !ok {
		apierrors.InternalError(c, "List not found in context")
		return
	}

	type MoveTasksRequest struct {
		TargetListID uint64 `json:"target_list_id" binding:"required"`
	}

	var req MoveTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Target list ID is required")
		return
	}

	if err := h.taskService.MoveListTasks(list.ID, req.TargetListID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteListTasks bulk-deletes the caller's tasks in the list.
func (h *TaskHandler) DeleteListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	list, ok := middleware.GetList(c)
	if !ok {
		apierrors.InternalError(c, "List not found in context")
		return
	}

	if err := h.taskService.DeleteListTasks(list.ID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseTaskID(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return taskID, true
}

// completionOnlyUpdate reports whether the raw payload is the completion
// variant: exactly one key, `completed`, holding a boolean.
func completionOnlyUpdate(raw map[string]any) (bool, bool) {
	if len(raw) != 1 {
		return false, false
	}
	value, present := raw["completed"]
	if !present {
		return false, false
	}
	completed, isBool := value.(bool)
	return completed, isBool
}

// parseTaskUpdate converts the raw full-update payload into the service
// input, distinguishing absent fields from explicit nulls.
func parseTaskUpdate(raw map[string]any) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput

	if value, present := raw["title"]; present {
		title, ok := value.(string)
		if !ok {
			return input, errors.New("title must be a string")
		}
		input.Title = &title
	}
	if value, present := raw["description"]; present {
		description, ok := value.(string)
		if !ok {
			return input, errors.New("description must be a string")
		}
		input.Description = &description
	}
	if value, present := raw["severity"]; present {
		severityStr, ok := value.(string)
		if !ok {
			return input, errors.New("severity must be a string")
		}
		severity := models.TaskSeverity(severityStr)
		input.Severity = &severity
	}
	if value, present := raw["completed"]; present {
		completed, ok := value.(bool)
		if !ok {
			return input, errors.New("completed must be a boolean")
		}
		input.Completed = &completed
	}
	if value, present := raw["due_date"]; present {
		if value == nil {
			input.ClearDueDate = true
		} else {
			dueDateStr, ok := value.(string)
			if !ok {
				return input, errors.New("due_date must be a timestamp string or null")
			}
			dueDate, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				return input, errors.New("due_date must be RFC 3339 formatted")
			}
			input.DueDate = &dueDate
		}
	}
	if value, present := raw["list_id"]; present {
		if value == nil {
			input.ClearListID = true
		} else {
			listID, ok := jsonUint64(value)
			if !ok {
				return input, errors.New("list_id must be a number or null")
			}
			input.ListID = &listID
		}
	}
	if value, present := raw["parent_id"]; present {
		if value == nil {
			input.ClearParent = true
		} else {
			parentID, ok := jsonUint64(value)
			if !ok {
				return input, errors.New("parent_id must be a number or null")
			}
			input.ParentID = &parentID
		}
	}
	if value, present := raw["position"]; present {
		number, ok := value.(float64)
		if !ok {
			return input, errors.New("position must be a number")
		}
		position := int(number)
		input.Position = &position
	}
	if value, present := raw["tag_ids"]; present {
		items, ok := value.([]any)
		if !ok {
			return input, errors.New("tag_ids must be an array of numbers")
		}
		tagIDs := make([]uint64, 0, len(items))
		for _, item := range items {
			id, ok := jsonUint64(item)
			if !ok {
				return input, errors.New("tag_ids must be an array of numbers")
			}
			tagIDs = append(tagIDs, id)
		}
		input.HasTagIDs = true
		input.TagIDs = tagIDs
	}

	return input, nil
}

func jsonUint64(value any) (uint64, bool) {
	number, ok := value.(float64)
	if !ok || number < 0 {
		return 0, false
	}
	return uint64(number), true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidSeverity),
		errors.Is(err, services.ErrSubtaskDepth),
		errors.Is(err, services.ErrTagNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrParentNotFound),
		errors.Is(err, services.ErrNotListMember),
		errors.Is(err, services.ErrTargetListNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTaskOwner),
		errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	default:
		logHandlerError(c, "TASKS", err)
		apierrors.InternalError(c, "")
	}
}
