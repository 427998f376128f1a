package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTagNameRequired = errors.New("tag name is required")
	ErrTagExists       = errors.New("tag already exists")
)

// TagService provides tag lookup and creation.
type TagService struct {
	tagRepo repository.TagRepository
}

// NewTagService creates a new TagService.
func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{
		tagRepo: tagRepo,
	}
}

// ListTags returns all tags.
func (s *TagService) ListTags() ([]models.Tag, error) {
	tags, err := s.tagRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// CreateTag creates a tag with a unique name.
func (s *TagService) CreateTag(name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTagNameRequired
	}

	if _, err := s.tagRepo.FindByName(name); err == nil {
		return nil, ErrTagExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check tag name: %w", err)
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	return tag, nil
}
