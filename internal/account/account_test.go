package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/session"
)

type mockAuthAPI struct {
	mock.Mock
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *mockAuthAPI) Register(ctx context.Context, name, email, password string) (*models.RegistrationResponse, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegistrationResponse), args.Error(1)
}

func TestService_LoginStoresSession(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewStore()
	svc := NewService(apiMock, store)

	apiMock.On("Login", mock.Anything, "jane@example.com", "secret123").
		Return(&models.LoginResponse{AccessToken: "tok", User: models.User{ID: 42, Name: "Jane"}}, nil)

	user, err := svc.Login(context.Background(), " jane@example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)

	sess, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, int64(42), sess.UserID)
	apiMock.AssertExpectations(t)

	svc.Logout()
	assert.False(t, store.LoggedIn())
}

func TestService_LoginFailureKeepsSessionEmpty(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewStore()
	svc := NewService(apiMock, store)

	apiMock.On("Login", mock.Anything, "jane@example.com", "bad").
		Return(nil, apperror.ServerError(401, "invalid email or password"))

	_, err := svc.Login(context.Background(), "jane@example.com", "bad")
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", apperror.UserMessage(err))
	assert.False(t, store.LoggedIn())
}

func TestService_LoginRejectsMissingUserID(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewStore()
	svc := NewService(apiMock, store)

	apiMock.On("Login", mock.Anything, "jane@example.com", "secret123").
		Return(&models.LoginResponse{AccessToken: "tok"}, nil)

	_, err := svc.Login(context.Background(), "jane@example.com", "secret123")
	assert.True(t, apperror.IsUnexpectedResponse(err))
	assert.False(t, store.LoggedIn())
}

func TestService_RegisterValidatesBeforeRequest(t *testing.T) {
	apiMock := new(mockAuthAPI)
	svc := NewService(apiMock, session.NewStore())

	_, err := svc.Register(context.Background(), "Jane", "not-an-email", "secret123")
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Register(context.Background(), "Jane", "jane@example.com", "short")
	assert.True(t, apperror.IsValidation(err))

	apiMock.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RegisterOpensSession(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewStore()
	svc := NewService(apiMock, store)

	apiMock.On("Register", mock.Anything, "Jane", "jane@example.com", "secret123").
		Return(&models.RegistrationResponse{AccessToken: "tok", TokenType: "Bearer", User: models.User{ID: 7}}, nil)

	_, err := svc.Register(context.Background(), "Jane", "jane@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", store.Token())
}

func TestService_RegisterTransportError(t *testing.T) {
	apiMock := new(mockAuthAPI)
	svc := NewService(apiMock, session.NewStore())

	apiMock.On("Register", mock.Anything, "Jane", "jane@example.com", "secret123").
		Return(nil, apperror.NetworkFailure(errors.New("connection refused")))

	_, err := svc.Register(context.Background(), "Jane", "jane@example.com", "secret123")
	assert.True(t, apperror.IsNetworkFailure(err))
}
