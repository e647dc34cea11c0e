// Seeds the initial SUPER_ADMIN account. Safe to run repeatedly: an existing
// account with the configured email is left untouched.
package main

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"payflow/internal/config"
	"payflow/internal/logger"
	"payflow/internal/models"
	"payflow/internal/repositories"
)

func main() {
	config.LoadEnv()
	log := logger.New()

	db, err := repositories.InitDB()
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}

	email := config.GetEnv("ADMIN_EMAIL", "admin@payflow.dev")
	password := config.GetEnv("ADMIN_PASSWORD", "")
	if password == "" {
		log.Fatal().Msg("ADMIN_PASSWORD must be set")
	}

	users := repositories.NewUserRepository(db)
	ctx := context.Background()

	if _, err := users.GetByEmail(ctx, email); err == nil {
		log.Info().Str("email", email).Msg("admin account already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		log.Fatal().Err(err).Msg("lookup failed")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), config.GetIntEnv("BCRYPT_ROUNDS", 12))
	if err != nil {
		log.Fatal().Err(err).Msg("password hash failed")
	}

	admin := &models.User{
		Email:         email,
		Password:      string(hashed),
		FirstName:     "Platform",
		LastName:      "Admin",
		Role:          models.RoleSuperAdmin,
		IsActive:      true,
		IsVerified:    true,
		EmailVerified: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("admin create failed")
	}

	log.Info().Str("email", email).Uint("id", admin.ID).Msg("admin account created")
}
