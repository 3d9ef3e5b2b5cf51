package main

import (
	"log"
	"os"

	"github.com/portuna85/kraft/internal/db"
	"github.com/portuna85/kraft/internal/handlers"
	"github.com/portuna85/kraft/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	gdb := db.Init()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("kraft_session", store))

	// Middleware
	r.Use(middleware.LoadUser())

	// One write per second per IP, small burst for form retries.
	writeLimiter := middleware.NewIPRateLimiter(rate.Limit(1), 5)

	// Handlers
	userHandler := handlers.NewUserHandler(gdb)
	postHandler := handlers.NewPostHandler(gdb)
	commentHandler := handlers.NewCommentHandler(gdb)
	categoryHandler := handlers.NewCategoryHandler(gdb)

	api := r.Group("/api")

	// Users
	users := api.Group("/users")
	{
		users.POST("/signup", middleware.RateLimit(writeLimiter), userHandler.Signup)
		users.POST("/login", middleware.RateLimit(writeLimiter), userHandler.Login)
		users.POST("/logout", userHandler.Logout)

		me := users.Group("/me")
		me.Use(middleware.AuthRequired())
		{
			me.GET("", userHandler.Me)
			me.PATCH("/email", userHandler.UpdateEmail)
			me.PATCH("/password", userHandler.ChangePassword)
			me.DELETE("", userHandler.Delete)
		}
	}

	// Posts (public reads)
	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.ListPage)
		posts.GET("/list", postHandler.ListAll)
		posts.GET("/search", postHandler.Search)
		posts.GET("/popular", postHandler.Popular)
		posts.GET("/author/:authorId", postHandler.ListByAuthor)
		posts.GET("/category/:categoryId", postHandler.ListByCategory)
		posts.GET("/:id", postHandler.Get)
		posts.GET("/:id/view", postHandler.GetWithView)

		posts.GET("/:id/comments", commentHandler.List)
		posts.GET("/:id/comments/parents", commentHandler.ListParents)
		posts.GET("/:id/comments/thread", commentHandler.ListThread)
		posts.GET("/:id/comments/page", commentHandler.ListParentsPage)
		posts.GET("/:id/comments/count", commentHandler.Count)
	}

	// Posts (authenticated writes)
	postWrites := api.Group("/posts")
	postWrites.Use(middleware.AuthRequired(), middleware.RateLimit(writeLimiter))
	{
		postWrites.POST("", postHandler.Create)
		postWrites.PUT("/:id", postHandler.Update)
		postWrites.PATCH("/:id/category", postHandler.UpdateCategory)
		postWrites.DELETE("/:id", postHandler.Delete)

		postWrites.POST("/:id/comments", commentHandler.Create)
		postWrites.POST("/:id/comments/:parentId/replies", commentHandler.CreateReply)
	}

	// Comments addressed directly
	comments := api.Group("/comments")
	{
		comments.GET("/:commentId/replies", commentHandler.ListReplies)

		authed := comments.Group("")
		authed.Use(middleware.AuthRequired(), middleware.RateLimit(writeLimiter))
		{
			authed.PUT("/:commentId", commentHandler.Update)
			authed.DELETE("/:commentId", commentHandler.Delete)
		}
	}

	// Categories
	categories := api.Group("/categories")
	{
		categories.GET("", categoryHandler.List)
		categories.GET("/:id", categoryHandler.Get)

		admin := categories.Group("")
		admin.Use(middleware.AuthRequired(), middleware.RateLimit(writeLimiter))
		{
			admin.POST("", categoryHandler.Create)
			admin.PUT("/:id", categoryHandler.Update)
			admin.DELETE("/:id", categoryHandler.Delete)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("kraft server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
