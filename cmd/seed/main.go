// Command seed creates demo accounts for local development. Running it twice
// leaves existing accounts untouched.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"event_management/internal/config"
	"event_management/internal/domain"
	"event_management/internal/repository"
	apperrors "event_management/pkg/errors"
	"event_management/pkg/logger"
)

type seedUser struct {
	username  string
	firstName string
	lastName  string
	role      string
	admin     bool
}

var demoUsers = []seedUser{
	{username: "admin", firstName: "Ada", lastName: "Admin", role: domain.RoleOrganizer, admin: true},
	{username: "organizer", firstName: "Olga", lastName: "Organizer", role: domain.RoleOrganizer},
	{username: "teacher", firstName: "Tomas", lastName: "Teacher", role: domain.RoleTeacher},
	{username: "student", firstName: "Sara", lastName: "Student", role: domain.RoleStudent},
}

func main() {
	password := flag.String("password", "password123", "password for every demo account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithWriter(os.Stdout, cfg.Log.Level, false)
	ctx := context.Background()

	dbPool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := repository.RunMigrations(ctx, dbPool, appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", "error", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		appLogger.Fatal("Failed to hash password", "error", err)
	}

	users := repository.NewUserRepository(dbPool, appLogger)
	created := 0
	for _, su := range demoUsers {
		now := time.Now().UTC()
		user := &domain.User{
			ID:           uuid.New(),
			Username:     su.username,
			Email:        su.username + "@events.local",
			PasswordHash: string(hash),
			FirstName:    su.firstName,
			LastName:     su.lastName,
			Role:         su.role,
			IsAdmin:      su.admin,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err := users.Create(ctx, user)
		switch {
		case apperrors.Is(err, apperrors.ErrUserAlreadyExists):
			appLogger.Info("User already present", "username", su.username)
		case err != nil:
			appLogger.Fatal("Failed to create user", "error", err, "username", su.username)
		default:
			created++
			appLogger.Info("User created", "username", su.username, "role", su.role, "admin", su.admin)
		}
	}

	appLogger.Info("Seed finished", "created", created, "total", len(demoUsers))
}
