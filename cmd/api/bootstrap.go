package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/itops-service/internal/command"
	"github.com/spec-kit/itops-service/internal/config"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

// bootstrapAdmin seeds the configured SUPERADMIN.
// Tokens for it are minted by the external identity provider.
func bootstrapAdmin(ctx context.Context, exec *command.Executor, cfg config.AuthConfig, logger *zap.Logger) error {
	if cfg.BootstrapUsername == "" {
		return nil
	}
	res, err := exec.SeedSuperAdmin(ctx, command.CreateUser{
		Username: cfg.BootstrapUsername,
		Email:    cfg.BootstrapEmail,
		FullName: cfg.BootstrapUsername,
		Password: cfg.BootstrapPassword,
	})
	switch {
	case err == nil:
		logger.Info("bootstrap admin created",
			zap.String("username", cfg.BootstrapUsername),
			zap.String("user_id", res.User.ID),
		)
		return nil
	case apperrors.HasCode(err, apperrors.CodeConflict):
		logger.Debug("bootstrap admin already present", zap.String("username", cfg.BootstrapUsername))
		return nil
	default:
		return err
	}
}
