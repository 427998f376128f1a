package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidolch/ai-todo/internal/dto"
	apierrors "github.com/vidolch/ai-todo/internal/errors"
	"github.com/vidolch/ai-todo/internal/middleware"
	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/services"
)

// ListHandler coordinates list and membership HTTP handlers.
type ListHandler struct {
	listService *services.ListService
}

// NewListHandler creates a new ListHandler.
func NewListHandler(listService *services.ListService) *ListHandler {
	return &ListHandler{
		listService: listService,
	}
}

// MemberRequest is a (user, role) pair in list create/update payloads.
type MemberRequest struct {
	UserID uint64 `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

func toMemberSpecs(reqs []MemberRequest) []services.MemberSpec {
	specs := make([]services.MemberSpec, len(reqs))
	for i, r := range reqs {
		specs[i] = services.MemberSpec{
			UserID: r.UserID,
			Role:   models.ListRole(r.Role),
		}
	}
	return specs
}

// CreateList creates a new list with the caller as owner, optionally
// inviting collaborators in the same request.
func (h *ListHandler) CreateList(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateListRequest struct {
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Color       string          `json:"color"`
		Members     []MemberRequest `json:"members"`
	}

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	list, err := h.listService.CreateList(services.CreateListInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		CreatorID:   userID,
		Members:     toMemberSpecs(req.Members),
	})
	if err != nil {
		respondListError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToListDTO(*list))
}

// ListLists returns the lists visible to the caller with task counts and
// the caller's role, newest first.
func (h *ListHandler) ListLists(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	lists, err := h.listService.ListsForUser(userID)
	if err != nil {
		respondListError(c, err)
		return
	}

	summaries := make([]dto.ListSummaryDTO, len(lists))
	for i, meta := range lists {
		summaries[i] = dto.ToListSummaryDTO(meta)
	}

	c.JSON(http.StatusOK, gin.H{
		"lists": summaries,
	})
}

// GetList returns list details with members and the caller's role.
func (h *ListHandler) GetList(c *gin.Context) {
	list, ok := middleware.GetList(c)
	if !ok {
		apierrors.InternalError(c, "List not found in context")
		return
	}
	member, ok := middleware.GetListMembership(c)
	if !ok {
		apierrors.InternalError(c, "Membership not found in context")
		return
	}

	members, err := h.listService.Members(list.ID)
	if err != nil {
		respondListError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListDetailDTO(list, members, member.Role))
}

// UpdateList renames/recolors the list and/or reconciles its membership
// against a full desired member set.
func (h *ListHandler) UpdateList(c *gin.Context) {
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

	type UpdateListRequest struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Color       *string          `json:"color"`
		Members     *[]MemberRequest `json:"members"`
	}

	var req UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateListInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	if req.Members != nil {
		input.HasMembers = true
		input.Members = toMemberSpecs(*req.Members)
	}

	updated, err := h.listService.UpdateList(list.ID, userID, input)
	if err != nil {
		respondListError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListDTO(*updated))
}

// DeleteList removes a list. Tasks in the list are detached, not deleted;
// callers wanting a different outcome move or bulk-delete tasks first.
func (h *ListHandler) DeleteList(c *gin.Context) {
	list, ok := middleware.GetList(c)
	if !ok {
		apierrors.InternalError(c, "List not found in context")
		return
	}

	if err := h.listService.DeleteList(list.ID); err != nil {
		respondListError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers returns the members of a list with their roles.
func (h *ListHandler) ListMembers(c *gin.Context) {
	list, ok := middleware.GetList(c)
	if !ok {
		apierrors.InternalError(c, "List not found in context")
		return
	}

	members, err := h.listService.Members(list.ID)
	if err != nil {
		respondListError(c, err)
		return
	}

	memberDTOs := make([]dto.ListMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToListMemberDTO(member)
	}

	c.JSON(http.StatusOK, memberDTOs)
}

// AddMember invites a user to the list. Unassigned tasks in the list are
// handed to the caller as part of the same operation.
func (h *ListHandler) AddMember(c *gin.Context) {
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

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "User ID and role are required")
		return
	}

	member, err := h.listService.AddMember(list.ID, userID, services.MemberSpec{
		UserID: req.UserID,
		Role:   models.ListRole(req.Role),
	})
	if err != nil {
		respondListError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id": member.UserID,
		"role":    member.Role,
	})
}

// RemoveMember removes a member from the list. Removing the sole owner is
// rejected with a conflict.
func (h *ListHandler) RemoveMember(c *gin.Context) {
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

	targetIDStr := c.Query("user_id")
	if targetIDStr == "" {
		apierrors.BadRequest(c, "User ID is required")
		return
	}
	targetID, err := strconv.ParseUint(targetIDStr, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.listService.RemoveMember(list.ID, targetID, userID); err != nil {
		respondListError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondListError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrListNameRequired),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInviteeInactive):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrListNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrNotListMember),
		errors.Is(err, services.ErrInviteeNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyListMember),
		errors.Is(err, services.ErrLastOwner):
		apierrors.Conflict(c, err.Error())
	default:
		logHandlerError(c, "LISTS", err)
		apierrors.InternalError(c, "")
	}
}
