package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidolch/ai-todo/internal/dto"
	apierrors "github.com/vidolch/ai-todo/internal/errors"
	"github.com/vidolch/ai-todo/internal/middleware"
	"github.com/vidolch/ai-todo/internal/services"
)

// UserHandler coordinates collaborator lookup handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SearchUsers finds collaborators by name or email. The caller is excluded,
// only active accounts match, and results are capped.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.SearchCollaborators(c.Query("search"), userID)
	if err != nil {
		logHandlerError(c, "USERS", err)
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}
