package model

import (
	"context"
	"errors"
	"strings"

	"glucolog/internal/auth"
	"glucolog/internal/config"
	"glucolog/internal/entity"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedAdminUser ensures the bootstrap admin account exists. Keyed by the
// configured email; idempotent across restarts.
func SeedAdminUser(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil {
		return nil
	}

	email := strings.TrimSpace(cfg.AdminEmail)
	if email == "" {
		return nil
	}

	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := &entity.DbUser{
		Email:         email,
		PasswordHash:  hash,
		Role:          entity.UserRoleAdmin,
		IsActive:      true,
		BeforeFoodMin: entity.DefaultBeforeFoodMin,
		BeforeFoodMax: entity.DefaultBeforeFoodMax,
		AfterFoodMin:  entity.DefaultAfterFoodMin,
		AfterFoodMax:  entity.DefaultAfterFoodMax,
	}

	if err := repo.CreateUser(ctx, admin); err != nil {
		return err
	}

	logrus.WithField("email", email).Info("bootstrap admin user created")
	return nil
}
