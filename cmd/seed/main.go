package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sureshk/appointment_api/internal/app"
	"github.com/sureshk/appointment_api/internal/config"
	"github.com/sureshk/appointment_api/internal/model"
	"github.com/sureshk/appointment_api/internal/repository"
	"github.com/sureshk/appointment_api/internal/service"
)

// Заводит демо-аккаунты для ручной проверки: преподавателя P1 и
// студентов A1/A2. Запускается только явно — при старте сервера
// никакого сидинга нет.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, logger)

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "pass"
	}

	accounts := []struct {
		username string
		role     model.Role
	}{
		{"P1", model.RoleProfessor},
		{"A1", model.RoleStudent},
		{"A2", model.RoleStudent},
	}

	for _, account := range accounts {
		user, err := authService.Provision(ctx, account.username, password, account.role)
		if err != nil {
			logger.Fatal("Failed to provision user",
				zap.String("username", account.username),
				zap.Error(err),
			)
		}
		logger.Info("Seeded user",
			zap.String("user_id", user.ID),
			zap.String("username", user.Username),
			zap.String("role", string(user.Role)),
		)
	}
}
