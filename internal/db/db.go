package db

import (
	"log"
	"os"

	"github.com/portuna85/kraft/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=kraft port=5432 sslmode=disable"
	}

	var err error
	// TranslateError turns driver unique violations into
	// gorm.ErrDuplicatedKey so the service layer can surface Conflict.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedCategories(DB)

	return DB
}

// Migrate runs schema migration for every entity.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Post{},
		&models.Comment{},
	)
}

func seedCategories(gdb *gorm.DB) {
	var count int64
	gdb.Model(&models.Category{}).Count(&count)
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return
	}

	categories := []models.Category{
		{Name: "general", Description: "General discussion", DisplayOrder: 0},
		{Name: "tech", Description: "Technology and programming", DisplayOrder: 1},
		{Name: "showcase", Description: "Show off your work", DisplayOrder: 2},
	}

	for _, category := range categories {
		if err := gdb.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Name, err)
		}
	}
	log.Println("Initial categories created successfully")
}
