package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/vidolch/ai-todo/internal/config"
	"github.com/vidolch/ai-todo/internal/constants"
	"github.com/vidolch/ai-todo/internal/database"
	"github.com/vidolch/ai-todo/internal/handlers"
	"github.com/vidolch/ai-todo/internal/middleware"
	"github.com/vidolch/ai-todo/internal/repository"
	"github.com/vidolch/ai-todo/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Wire repositories, services and handlers
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)

	authService := services.NewAuthService(userRepo)
	listService := services.NewListService(listRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, listRepo, tagRepo)
	userService := services.NewUserService(userRepo)
	tagService := services.NewTagService(tagRepo)

	authHandler := handlers.NewAuthHandler(authService)
	listHandler := handlers.NewListHandler(listService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)
	tagHandler := handlers.NewTagHandler(tagService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Todo API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// List routes (protected)
		lists := api.Group("/lists")
		lists.Use(middleware.RequireAuth())
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

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Collaborator search (protected)
		api.GET("/users", middleware.RequireAuth(), userHandler.SearchUsers)

		// Tag routes (protected)
		tags := api.Group("/tags")
		tags.Use(middleware.RequireAuth())
		{
			tags.GET("", tagHandler.ListTags)
			tags.POST("", tagHandler.CreateTag)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
