package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/vidolch/ai-todo/internal/constants"
	"github.com/vidolch/ai-todo/internal/database"
	"github.com/vidolch/ai-todo/internal/dto"
	"github.com/vidolch/ai-todo/internal/middleware"
	"github.com/vidolch/ai-todo/internal/models"
	"github.com/vidolch/ai-todo/internal/repository"
	"github.com/vidolch/ai-todo/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type listTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

// testUserHeader authenticates requests in tests: the X-Test-User header
// carries the user ID that RequireAuth would normally read from the session.
func testUserHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if v := c.GetHeader("X-Test-User"); v != "" {
			uid, err := strconv.ParseUint(v, 10, 64)
			if err == nil {
				c.Set(constants.ContextKeyUserID, uid)
			}
		}
		c.Next()
	}
}

func setupListTestEnv(t *testing.T) listTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.List{},
		&models.ListMembership{},
		&models.Task{},
		&models.Tag{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)

	listService := services.NewListService(listRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, listRepo, tagRepo)

	listHandler := NewListHandler(listService)
	taskHandler := NewTaskHandler(taskService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(testUserHeader())

	lists := router.Group("/api/lists")
	{
		lists.GET("", listHandler.ListLists)
		lists.POST("", listHandler.CreateList)
		lists.GET("/:id", middleware.RequireListAccess(), listHandler.GetList)
		lists.PATCH("/:id", middleware.RequireListAccess(), middleware.RequireListOwner(), listHandler.UpdateList)
		lists.DELETE("/:id", middleware.RequireListAccess(), middleware.RequireListOwner(), listHandler.DeleteList)
		lists.GET("/:id/users", middleware.RequireListAccess(), listHandler.ListMembers)
		lists.POST("/:id/users", middleware.RequireListAccess(), middleware.RequireListOwner(), listHandler.AddMember)
		lists.DELETE("/:id/users", middleware.RequireListAccess(), middleware.RequireListOwner(), listHandler.RemoveMember)
		lists.GET("/:id/tasks", middleware.RequireListAccess(), taskHandler.ListTasksForList)
		lists.PATCH("/:id/tasks", middleware.RequireListAccess(), taskHandler.MoveListTasks)
		lists.DELETE("/:id/tasks", middleware.RequireListAccess(), taskHandler.DeleteListTasks)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return listTestEnv{db: db, router: router}
}

func (env listTestEnv) do(t *testing.T, method, url string, payload any, userID uint64) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(userID, 10))
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func createListTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", name),
		PasswordHash: "hashed",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestListHandler_CreateAndList(t *testing.T) {
	env := setupListTestEnv(t)
	user := createListTestUser(t, env.db, "alice")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{
		"name":  "Groceries",
		"color": "#00ff00",
	}, user.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "Groceries", created.Name)

	w = env.do(t, http.MethodGet, "/api/lists", nil, user.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string][]dto.ListSummaryDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	lists := response["lists"]
	require.Len(t, lists, 1)
	require.Equal(t, models.RoleOwner, lists[0].Role)
	require.Equal(t, int64(0), lists[0].TaskCount)
}

func TestListHandler_CreateList_NameRequired(t *testing.T) {
	env := setupListTestEnv(t)
	user := createListTestUser(t, env.db, "alice")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{"color": "#fff"}, user.ID)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListHandler_Unauthenticated(t *testing.T) {
	env := setupListTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/lists", nil, 0)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListHandler_NonMemberSeesNotFound(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")
	outsider := createListTestUser(t, env.db, "mallory")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{"name": "Private"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// A non-member gets 404, not 403, so list existence is not leaked.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/lists/%d", created.ID), nil, outsider.ID)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/lists/%d", created.ID), nil, outsider.ID)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListHandler_ContributorCannotMutateList(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")
	contributor := createListTestUser(t, env.db, "bob")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{
		"name": "Shared",
		"members": []map[string]any{
			{"user_id": contributor.ID, "role": "CONTRIBUTOR"},
		},
	}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/lists/%d", created.ID), map[string]any{
		"name": "Renamed",
	}, contributor.ID)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/lists/%d", created.ID), nil, contributor.ID)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestListHandler_InviteBackfillScenario(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")
	contributor := createListTestUser(t, env.db, "bob")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{"name": "Groceries"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Two pre-existing ownerless tasks in the list.
	for _, title := range []string{"milk", "eggs"} {
		task := &models.Task{Title: title, ListID: &created.ID}
		require.NoError(t, env.db.Create(task).Error)
	}

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/lists/%d/users", created.ID), map[string]any{
		"user_id": contributor.ID,
		"role":    "CONTRIBUTOR",
	}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var assigned int64
	require.NoError(t, env.db.Model(&models.Task{}).
		Where("list_id = ? AND user_id = ?", created.ID, owner.ID).
		Count(&assigned).Error)
	require.Equal(t, int64(2), assigned)
}

func TestListHandler_AddMember_UnknownRole(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")
	invitee := createListTestUser(t, env.db, "bob")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{"name": "Groceries"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/lists/%d/users", created.ID), map[string]any{
		"user_id": invitee.ID,
		"role":    "SUPERVISOR",
	}, owner.ID)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListHandler_RemoveLastOwnerConflict(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")
	contributor := createListTestUser(t, env.db, "bob")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{
		"name": "Groceries",
		"members": []map[string]any{
			{"user_id": contributor.ID, "role": "CONTRIBUTOR"},
		},
	}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodDelete,
		fmt.Sprintf("/api/lists/%d/users?user_id=%d", created.ID, owner.ID), nil, owner.ID)
	require.Equal(t, http.StatusConflict, w.Code)

	// Promote the contributor, then self-removal succeeds.
	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/lists/%d", created.ID), map[string]any{
		"members": []map[string]any{
			{"user_id": owner.ID, "role": "OWNER"},
			{"user_id": contributor.ID, "role": "OWNER"},
		},
	}, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete,
		fmt.Sprintf("/api/lists/%d/users?user_id=%d", created.ID, owner.ID), nil, owner.ID)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/lists/%d/users", created.ID), nil, contributor.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var members []dto.ListMemberDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Len(t, members, 1)
	require.Equal(t, contributor.ID, members[0].UserID)
	require.Equal(t, models.RoleOwner, members[0].Role)
}

func TestListHandler_UpdateMembership(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")
	bob := createListTestUser(t, env.db, "bob")
	carol := createListTestUser(t, env.db, "carol")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{
		"name": "Groceries",
		"members": []map[string]any{
			{"user_id": bob.ID, "role": "CONTRIBUTOR"},
		},
	}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Replace bob with carol in one reconciliation.
	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/lists/%d", created.ID), map[string]any{
		"name": "Errands",
		"members": []map[string]any{
			{"user_id": owner.ID, "role": "OWNER"},
			{"user_id": carol.ID, "role": "CONTRIBUTOR"},
		},
	}, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/lists/%d/users", created.ID), nil, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var members []dto.ListMemberDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	require.Len(t, members, 2)

	ids := []uint64{members[0].UserID, members[1].UserID}
	require.ElementsMatch(t, []uint64{owner.ID, carol.ID}, ids)

	// bob no longer sees the list at all.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/lists/%d", created.ID), nil, bob.ID)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListHandler_UpdateList_RejectedMembersKeepName(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")
	contributor := createListTestUser(t, env.db, "bob")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{"name": "Groceries"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/lists/%d", created.ID), map[string]any{
		"name": "Hijacked",
		"members": []map[string]any{
			{"user_id": owner.ID, "role": "OWNER"},
			{"user_id": contributor.ID, "role": "ADMIN"},
		},
	}, owner.ID)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/lists/%d", created.ID), nil, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var detail dto.ListDetailDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Equal(t, "Groceries", detail.Name)
	require.Len(t, detail.Members, 1)
}

func TestListHandler_MoveAndBulkDeleteTasks(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{"name": "Source"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var source dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &source))

	w = env.do(t, http.MethodPost, "/api/lists", map[string]any{"name": "Target"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var target dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &target))

	for _, title := range []string{"one", "two"} {
		task := &models.Task{Title: title, ListID: &source.ID, UserID: &owner.ID}
		require.NoError(t, env.db.Create(task).Error)
	}

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/lists/%d/tasks", source.ID), map[string]any{
		"target_list_id": target.ID,
	}, owner.ID)
	require.Equal(t, http.StatusNoContent, w.Code)

	var moved int64
	require.NoError(t, env.db.Model(&models.Task{}).
		Where("list_id = ?", target.ID).
		Count(&moved).Error)
	require.Equal(t, int64(2), moved)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/lists/%d/tasks", target.ID), nil, owner.ID)
	require.Equal(t, http.StatusNoContent, w.Code)

	var remaining int64
	require.NoError(t, env.db.Model(&models.Task{}).
		Where("list_id = ?", target.ID).
		Count(&remaining).Error)
	require.Equal(t, int64(0), remaining)
}

func TestListHandler_MoveTasks_TargetNotAccessible(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")
	other := createListTestUser(t, env.db, "bob")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{"name": "Source"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var source dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &source))

	w = env.do(t, http.MethodPost, "/api/lists", map[string]any{"name": "Foreign"}, other.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var foreign dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &foreign))

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/api/lists/%d/tasks", source.ID), map[string]any{
		"target_list_id": foreign.ID,
	}, owner.ID)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListHandler_DeleteList(t *testing.T) {
	env := setupListTestEnv(t)
	owner := createListTestUser(t, env.db, "alice")

	w := env.do(t, http.MethodPost, "/api/lists", map[string]any{"name": "Doomed"}, owner.ID)
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.ListDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	task := &models.Task{Title: "survivor", ListID: &created.ID, UserID: &owner.ID}
	require.NoError(t, env.db.Create(task).Error)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/lists/%d", created.ID), nil, owner.ID)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/lists", nil, owner.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var response map[string][]dto.ListSummaryDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Empty(t, response["lists"])

	// The task survives deletion, detached from the list.
	var refreshed models.Task
	require.NoError(t, env.db.First(&refreshed, task.ID).Error)
	require.Nil(t, refreshed.ListID)
}
