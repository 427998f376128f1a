package repository

import (
	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/utils"
)

// ListWithMeta bundles a list with the caller's role and the number of
// tasks currently in the list.
type ListWithMeta struct {
	List      models.List
	Role      models.ListRole
	TaskCount int64
}

// MembershipChangeSet holds the reconciled membership mutations to apply to
// a list in one transaction. BackfillUserID, when set, receives ownership
// of every unassigned task in the list after the additions are committed.
type MembershipChangeSet struct {
	Additions      []models.ListMembership
	RemoveUserIDs  []uint64
	RoleUpdates    []models.ListMembership
	BackfillUserID *uint64
}

// ListRepository defines the interface for list and membership data access
type ListRepository interface {
	// Create creates a list along with its initial memberships
	Create(list *models.List, memberships []models.ListMembership) error

	// FindByID finds a list by ID
	FindByID(id uint64) (*models.List, error)

	// Update updates a list
	Update(list *models.List) error

	// Delete removes a list and its memberships, detaching (not deleting)
	// the list's tasks
	Delete(id uint64) error

	// ListForUser returns the lists a user belongs to, with role and task count
	ListForUser(userID uint64) ([]ListWithMeta, error)

	// FindMembership finds a specific list membership
	FindMembership(listID, userID uint64) (*models.ListMembership, error)

	// ListMembers lists all members of a list with user info
	ListMembers(listID uint64) ([]models.ListMembership, error)

	// AddMember adds a member; when backfillUserID is set, unassigned tasks
	// in the list are assigned to that user in the same transaction
	AddMember(member *models.ListMembership, backfillUserID *uint64) error

	// RemoveMember removes a member from a list
	RemoveMember(listID, userID uint64) error

	// ApplyMembershipChanges applies a reconciled change set atomically
	ApplyMembershipChanges(listID uint64, changes MembershipChangeSet) error

	// CountOwners counts OWNER memberships of a list, excluding the given
	// user ID when it is non-zero
	CountOwners(listID, excludeUserID uint64) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListByOwner retrieves a user's own tasks, newest first, paginated
	ListByOwner(userID uint64, params utils.PaginationParams) ([]models.Task, int64, error)

	// ListByList retrieves every task in a list regardless of creator
	ListByList(listID uint64) ([]models.Task, error)

	// Update updates a task
	Update(task *models.Task) error

	// ReplaceTags replaces a task's tag associations
	ReplaceTags(task *models.Task, tags []models.Tag) error

	// HasSubtasks reports whether any task has the given task as its parent
	HasSubtasks(id uint64) (bool, error)

	// Delete soft deletes a task and its subtasks
	Delete(id uint64) error

	// MoveOwnedTasks moves a user's tasks from one list to another
	MoveOwnedTasks(listID, targetListID, userID uint64) error

	// DeleteOwnedTasks deletes a user's tasks within a list
	DeleteOwnedTasks(listID, userID uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Search finds active users matching the query by name or email,
	// excluding the given user, capped at limit results
	Search(query string, excludeUserID uint64, limit int) ([]models.User, error)
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	// Create creates a new tag
	Create(tag *models.Tag) error

	// List returns all tags
	List() ([]models.Tag, error)

	// FindByIDs returns the tags matching the given IDs
	FindByIDs(ids []uint64) ([]models.Tag, error)

	// FindByName finds a tag by name
	FindByName(name string) (*models.Tag, error)
}
