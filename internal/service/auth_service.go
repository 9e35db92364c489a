package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sureshk/appointment_api/internal/auth"
	"github.com/sureshk/appointment_api/internal/model"
)

// AuthService выпускает токены по логину и паролю и заводит учётные
// записи. Проверка токенов живёт в пакете auth — сюда она не относится.
type AuthService struct {
	userStore UserStore
	secret    string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewAuthService(userStore UserStore, secret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		userStore: userStore,
		secret:    secret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Login проверяет пару логин/пароль и выпускает access-токен
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return "", wrapStore("get user", err)
	}

	if user == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(s.secret, s.tokenTTL, auth.Claims{
		UserID: user.ID,
		Role:   string(user.Role),
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID),
		zap.String("username", username),
		zap.String("role", string(user.Role)),
	)

	return token, nil
}

// Provision заводит учётную запись с заданной ролью. Идемпотентна:
// существующий пользователь возвращается как есть. Вызывается только
// явно (cmd/seed или тестовые фикстуры), никогда при старте процесса.
func (s *AuthService) Provision(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
	existing, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return nil, wrapStore("get user", err)
	}

	if existing != nil {
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, wrapStore("create user", err)
	}

	s.logger.Info("User provisioned",
		zap.String("user_id", user.ID),
		zap.String("username", username),
		zap.String("role", string(role)),
	)

	return user, nil
}
