package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/penske-media-corp/code-review-bot/handlers"
	"github.com/penske-media-corp/code-review-bot/models"
	"github.com/penske-media-corp/code-review-bot/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "code_reviews.db"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.CodeReview{},
		&models.CodeReviewRelation{},
		&models.Archive{},
		&models.RepoConfig{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	userCache := services.NewUserCache()
	configCache := services.NewConfigCache()

	stop := make(chan struct{})
	defer close(stop)
	go services.RunStaleReviewChecker(db, time.Hour, stop)

	r := gin.Default()
	r.POST("/webhook/slack/events", handlers.HandleSlackEvents(db, userCache, configCache))
	r.POST("/webhook/slack/actions", handlers.HandleSlackAction(db, userCache))

	api := r.Group("/api")
	{
		api.GET("/reviews", handlers.HandleListReviews(db))
		api.GET("/review/:id", handlers.HandleGetReview(db))
		api.POST("/review/:id/action", handlers.HandleReviewAction(db, userCache))
		api.GET("/config", handlers.HandleGetRepoConfig(db, configCache))
		api.POST("/config", handlers.HandleSaveRepoConfig(db, configCache))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
