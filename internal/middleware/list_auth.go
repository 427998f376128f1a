package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidolch/ai-todo/internal/database"
	apierrors "github.com/vidolch/ai-todo/internal/errors"
	"github.com/vidolch/ai-todo/internal/models"
)

// Context keys set by the list middleware chain.
const (
	ContextKeyList           = "list"
	ContextKeyListMembership = "list_membership"
)

// RequireListAccess checks if the user is a member of the list. Non-members
// get 404 rather than 403 so list existence is not confirmed to outsiders.
func RequireListAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		listIDStr := c.Param("id")
		listID, err := strconv.ParseUint(listIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid list ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var list models.List
		if err := database.GetDB().First(&list, listID).Error; err != nil {
			apierrors.NotFound(c, "List not found")
			c.Abort()
			return
		}

		var member models.ListMembership
		if err := database.GetDB().
			Where("list_id = ? AND user_id = ?", listID, userID).
			First(&member).Error; err != nil {
			apierrors.NotFound(c, "List not found")
			c.Abort()
			return
		}

		c.Set(ContextKeyList, list)
		c.Set(ContextKeyListMembership, member)
		c.Next()
	}
}

// RequireListOwner checks if the user is an owner of the list. Must run
// after RequireListAccess.
func RequireListOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberInterface, exists := c.Get(ContextKeyListMembership)
		if !exists {
			apierrors.Forbidden(c, "List access required")
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.ListMembership)
		if !ok {
			apierrors.InternalError(c, "Invalid list membership data")
			c.Abort()
			return
		}

		if member.Role != models.RoleOwner {
			apierrors.Forbidden(c, "Only list owners can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetList retrieves the list loaded by RequireListAccess
func GetList(c *gin.Context) (models.List, bool) {
	listInterface, exists := c.Get(ContextKeyList)
	if !exists {
		return models.List{}, false
	}
	list, ok := listInterface.(models.List)
	return list, ok
}

// GetListMembership retrieves the membership loaded by RequireListAccess
func GetListMembership(c *gin.Context) (models.ListMembership, bool) {
	memberInterface, exists := c.Get(ContextKeyListMembership)
	if !exists {
		return models.ListMembership{}, false
	}
	member, ok := memberInterface.(models.ListMembership)
	return member, ok
}
