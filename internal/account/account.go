// Package account вход и регистрация на клиенте. Успешный ответ сервера
// сохраняется в хранилище сессии.
package account

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/session"
	"github.com/ignatzorin/report-accident/internal/validation"
)

// AuthAPI транспорт авторизации.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, name, email, password string) (*models.RegistrationResponse, error)
}

// Service управляет сессией пользователя.
type Service struct {
	api      AuthAPI
	sessions *session.Store
}

// NewService создаёт сервис аккаунта.
func NewService(api AuthAPI, sessions *session.Store) *Service {
	return &Service{api: api, sessions: sessions}
}

// Login входит и сохраняет токен с id пользователя.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateNonEmpty("email", email); err != nil {
		return models.User{}, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("password", password); err != nil {
		return models.User{}, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Warn("account: вход не выполнен")
		return models.User{}, err
	}
	if err := s.store(resp.AccessToken, resp.User); err != nil {
		return models.User{}, err
	}
	return resp.User, nil
}

// Register регистрирует пользователя и сразу открывает сессию.
func (s *Service) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validation.ValidateName(name); err != nil {
		return models.User{}, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return models.User{}, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return models.User{}, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	resp, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"email": email, "error": err.Error()}).Warn("account: регистрация не выполнена")
		return models.User{}, err
	}
	if err := s.store(resp.AccessToken, resp.User); err != nil {
		return models.User{}, err
	}
	return resp.User, nil
}

// Logout сбрасывает сессию.
func (s *Service) Logout() {
	s.sessions.Clear()
}

func (s *Service) store(token string, user models.User) error {
	if token == "" || user.ID == 0 {
		return apperror.UnexpectedResponse("auth response without token or user id")
	}
	s.sessions.Set(token, user.ID)
	logger.Log.WithField("user_id", user.ID).Info("account: сессия открыта")
	return nil
}
