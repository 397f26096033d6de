// Package testutil provides an in-memory SQLite database with the full
// schema and small fixture builders for repository and service tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/pkg/database"
)

// Password is the plain-text password of every fixture user.
const Password = "Passw0rd!"

// NewDB opens a private in-memory database and migrates every model.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=on", name, uuid.New().String()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db, model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

var passwordHash string

func hash(t testing.TB) string {
	if passwordHash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		passwordHash = string(h)
	}
	return passwordHash
}

// CreateUser inserts an active user with the given role. Students get a
// profile row.
func CreateUser(t testing.TB, db *gorm.DB, username, role string) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash(t),
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	if role == model.RoleStudent {
		if err := db.Create(&model.Student{UserID: u.UserID}).Error; err != nil {
			t.Fatalf("create student %s: %v", username, err)
		}
	}
	return u
}

// CreateCourse inserts a course with sensible defaults.
func CreateCourse(t testing.TB, db *gorm.DB, name string) *model.Course {
	t.Helper()
	c := &model.Course{
		Name:          name,
		Title:         name + " title",
		DurationWeeks: model.DefaultDurationWeeks,
		Price:         100,
		TrainingLevel: model.LevelBeginner,
		ClassType:     model.ClassOnline,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create course %s: %v", name, err)
	}
	return c
}

// CreateCategory inserts a category.
func CreateCategory(t testing.TB, db *gorm.DB, name string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

// Reload fetches a fresh copy of the user.
func Reload(t testing.TB, db *gorm.DB, userID string) *model.User {
	t.Helper()
	var u model.User
	if err := db.WithContext(context.Background()).Preload("Student").First(&u, "user_id = ?", userID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &u
}
