package services

import (
	"fmt"
	"strings"

	"github.com/vidolch/ai-todo/internal/constants"
	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/repository"
)

// UserService provides collaborator lookup.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// SearchCollaborators finds active users matching the query by name or
// email. The caller is always excluded and results are capped.
func (s *UserService) SearchCollaborators(query string, callerID uint64) ([]models.User, error) {
	users, err := s.userRepo.Search(strings.TrimSpace(query), callerID, constants.MaxUserSearchResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}
