package main

import (
	"context"
	"flag"

	"go-procurement-ws/internal/config"
	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/database"
	"go-procurement-ws/pkg/logger"

	"github.com/google/uuid"
)

// Resets a user's password and signs out their sessions.
func main() {
	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatalw("invalid configuration", "error", err)
	}
	log := logger.Default().WithComponent("reset-password")

	email := flag.String("email", cfg.AdminEmail, "email of the account to reset")
	newPassword := flag.String("password", cfg.AdminPassword, "new password")
	flag.Parse()

	if len(*newPassword) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(database.Options{DSN: cfg.DatabaseDSN}, log)
	if err != nil {
		log.Fatalw("connect database", "error", err)
	}
	users := repository.NewUserRepo(db)
	ctx := context.Background()

	// 3. Find user
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatalw("user not found", "email", *email, "error", err)
	}

	// 4. Hash new password
	var hashed model.User
	if err := hashed.SetPassword(*newPassword); err != nil {
		log.Fatalw("hash password", "error", err)
	}

	// 5. Update, and invalidate outstanding tokens
	if err := users.UpdatePassword(ctx, user.ID, hashed.Password); err != nil {
		log.Fatalw("update password", "error", err)
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		log.Fatalw("rotate token version", "error", err)
	}

	log.Infow("password reset", "email", *email)
}
