package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User        *models.User
	AccessToken string
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
	}
}

// Register создаёт нового пользователя.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateName(in.Name); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось захешировать пароль: %w", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(passHash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("auth service: пользователь зарегистрирован")
	return s.issue(user)
}

// Login проверяет учётные данные и возвращает токен.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Authenticate проверяет access токен и возвращает id пользователя.
func (s *AuthService) Authenticate(ctx context.Context, token string) (int64, error) {
	userID, err := s.tokenManager.ParseAccess(token)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "invalid access token")
	}
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeUnauthorized, "invalid access token")
	}
	return userID, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, _, err := s.tokenManager.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось выпустить токен: %w", err)
	}
	return &AuthResult{User: user, AccessToken: token}, nil
}
