// Command createadmin creates an administrator account. Admins cannot be
// registered over HTTP, so this is how the first one comes to exist.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/astro81/pathsala-backend/config"
	"github.com/astro81/pathsala-backend/internal/model"
	"github.com/astro81/pathsala-backend/internal/permission"
	"github.com/astro81/pathsala-backend/internal/repository"
	"github.com/astro81/pathsala-backend/internal/service"
	"github.com/astro81/pathsala-backend/pkg/database"
	apperrors "github.com/astro81/pathsala-backend/pkg/errors"
	"github.com/astro81/pathsala-backend/pkg/jwt"
	applogger "github.com/astro81/pathsala-backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config/config.yaml)")
	username := flag.String("username", "", "admin username (required)")
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password; falls back to PATHSALA_ADMIN_PASSWORD")
	firstName := flag.String("first-name", "", "first name")
	lastName := flag.String("last-name", "", "last name")
	flag.Parse()

	_ = godotenv.Load()

	if *password == "" {
		*password = os.Getenv("PATHSALA_ADMIN_PASSWORD")
	}
	if *username == "" || *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.Driver == "sqlite" {
		err = database.AutoMigrate(db, model.All()...)
	} else {
		err = database.RunMigrations(sqlDB, logger)
	}
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	oracle, err := permission.FromConfig(cfg.RBAC.Roles)
	if err != nil {
		logger.Fatal("invalid rbac table", zap.Error(err))
	}

	svc := service.NewService(cfg, repository.NewRepository(db), oracle, jwt.NewManager(&cfg.Auth), nil, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := svc.Auth.CreateUser(ctx, &service.NewUser{
		Username:  *username,
		Email:     *email,
		Password:  *password,
		Role:      model.RoleAdmin,
		FirstName: *firstName,
		LastName:  *lastName,
	})
	if err != nil {
		if e, ok := apperrors.As(err); ok && len(e.Fields) > 0 {
			for field, msg := range e.Fields {
				fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
			}
		} else if errors.Is(err, service.ErrDuplicateIdentity) {
			fmt.Fprintln(os.Stderr, "a user with this username or email already exists")
		} else {
			fmt.Fprintf(os.Stderr, "create admin: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("admin %q created (id %s)\n", user.Username, user.UserID)
}
