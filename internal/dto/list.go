package dto

import (
	"time"

	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/repository"
)

// ListDTO represents a list in API responses
type ListDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListSummaryDTO is a list entry in the caller's list view, carrying the
// caller's role and the list's task count
type ListSummaryDTO struct {
	ListDTO
	Role      models.ListRole `json:"role"`
	TaskCount int64           `json:"task_count"`
}

// ListMemberDTO represents a member of a list
type ListMemberDTO struct {
	UserID   uint64          `json:"user_id"`
	Role     models.ListRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
	User     UserDTO         `json:"user"`
}

// ListDetailDTO represents a list with its members and the caller's role
type ListDetailDTO struct {
	ListDTO
	Members  []ListMemberDTO `json:"members"`
	YourRole models.ListRole `json:"your_role"`
}

// ToListDTO converts a List model to ListDTO
func ToListDTO(list models.List) ListDTO {
	return ListDTO{
		ID:          list.ID,
		Name:        list.Name,
		Description: list.Description,
		Color:       list.Color,
		CreatedAt:   list.CreatedAt,
		UpdatedAt:   list.UpdatedAt,
	}
}

// ToListSummaryDTO converts a list with metadata to a summary entry
func ToListSummaryDTO(meta repository.ListWithMeta) ListSummaryDTO {
	return ListSummaryDTO{
		ListDTO:   ToListDTO(meta.List),
		Role:      meta.Role,
		TaskCount: meta.TaskCount,
	}
}

// ToListMemberDTO converts a membership to DTO
func ToListMemberDTO(member models.ListMembership) ListMemberDTO {
	return ListMemberDTO{
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
		User:     ToUserDTO(member.User),
	}
}

// ToListDetailDTO converts a list with members to a detailed DTO
func ToListDetailDTO(list models.List, members []models.ListMembership, yourRole models.ListRole) ListDetailDTO {
	memberDTOs := make([]ListMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToListMemberDTO(member)
	}

	return ListDetailDTO{
		ListDTO:  ToListDTO(list),
		Members:  memberDTOs,
		YourRole: yourRole,
	}
}
