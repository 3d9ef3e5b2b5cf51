package services

import (
	"testing"

	"github.com/portuna85/kraft/internal/db"
	"github.com/portuna85/kraft/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory database per test. The pool is pinned to a
// single connection so concurrent test goroutines serialize the same way a
// row-locked Postgres would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "not-a-real-hash",
		Role:     models.RoleUser,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

func createAdmin(t *testing.T, gdb *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "not-a-real-hash",
		Role:     models.RoleAdmin,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create admin %s: %v", name, err)
	}
	return user
}

func createPost(t *testing.T, gdb *gorm.DB, author models.User, title string) models.Post {
	t.Helper()
	post := models.Post{
		Title:    title,
		Content:  "content of " + title,
		AuthorID: author.ID,
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to create post %s: %v", title, err)
	}
	return post
}

func asPrincipal(u models.User) Principal {
	return Principal{ID: u.ID, Name: u.Name, Role: u.Role}
}
