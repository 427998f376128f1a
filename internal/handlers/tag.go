package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidolch/ai-todo/internal/dto"
	apierrors "github.com/vidolch/ai-todo/internal/errors"
	"github.com/vidolch/ai-todo/internal/services"
)

// TagHandler coordinates tag HTTP handlers.
type TagHandler struct {
	tagService *services.TagService
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{
		tagService: tagService,
	}
}

// ListTags returns all tags.
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags()
	if err != nil {
		logHandlerError(c, "TAGS", err)
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTOs(tags))
}

// CreateTag creates a tag with a unique name.
func (h *TagHandler) CreateTag(c *gin.Context) {
	type CreateTagRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Tag name is required")
		return
	}

	tag, err := h.tagService.CreateTag(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTagNameRequired):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrTagExists):
			apierrors.Conflict(c, err.Error())
		default:
			logHandlerError(c, "TAGS", err)
			apierrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}
