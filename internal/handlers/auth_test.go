package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/makemydestiny/travel-booking/internal/auth"
	"github.com/makemydestiny/travel-booking/internal/config"
	"github.com/makemydestiny/travel-booking/internal/middleware"
	"github.com/makemydestiny/travel-booking/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) MarkVerified(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserCollection) DeleteAllUsers(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func testLog() *logrus.Entry {
	logger, _ := test.NewNullLogger()
	return logrus.NewEntry(logger)
}

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(config.JWTConfig{Secret: "handler-test-secret"})
	require.NoError(t, err)
	return svc
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthHandler_Login(t *testing.T) {
	authService := newAuthService(t)

	passwordHash, err := authService.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Name:         "Asha",
		Email:        "asha@example.com",
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	}

	t.Run("successful login", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, testLog())
		users.On("FindUserByEmail", mock.Anything, "asha@example.com").Return(user, nil)
		users.On("UpdateLastLogin", mock.Anything, user.ID.Hex()).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, models.LoginRequest{Email: "asha@example.com", Password: "password123"}))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, user.Email, resp.User.Email)
		assert.NotContains(t, w.Body.String(), passwordHash)

		claims, err := authService.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.UserID)
		users.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, testLog())
		users.On("FindUserByEmail", mock.Anything, "asha@example.com").Return(user, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, models.LoginRequest{Email: "asha@example.com", Password: "nope-nope"}))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", envelope(t, w).Message)
		users.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, testLog())
		users.On("FindUserByEmail", mock.Anything, "ghost@example.com").Return(nil, models.ErrUserNotFound)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, models.LoginRequest{Email: "ghost@example.com", Password: "password123"}))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, testLog())
		users.On("FindUserByEmail", mock.Anything, "asha@example.com").Return(nil, errors.New("connection reset"))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			jsonBody(t, models.LoginRequest{Email: "asha@example.com", Password: "password123"}))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "connection reset", envelope(t, w).Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection), testLog())
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, models.LoginRequest{Email: "a@b.co"}))
		w := httptest.NewRecorder()
		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Please provide an email and password", envelope(t, w).Message)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	authService := newAuthService(t)

	t.Run("successful registration", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, testLog())
		users.On("InsertUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "ravi@example.com" &&
				u.Name == "Ravi" &&
				u.Role == models.RoleUser &&
				!u.IsVerified &&
				len(u.VerificationToken) == 32 &&
				authService.CheckPassword("secret1", u.PasswordHash)
		})).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", jsonBody(t, models.RegisterRequest{
			Name: " Ravi ", Email: "Ravi@Example.com", Password: "secret1", Phone: "9876500000",
		}))
		w := httptest.NewRecorder()
		handler.Register(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, models.RoleUser, resp.User.Role)
		assert.NotContains(t, w.Body.String(), "verification_token")
		users.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, testLog())
		users.On("InsertUser", mock.Anything, mock.Anything).Return(models.ErrEmailTaken)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", jsonBody(t, models.RegisterRequest{
			Name: "Ravi", Email: "ravi@example.com", Password: "secret1",
		}))
		w := httptest.NewRecorder()
		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User already exists", envelope(t, w).Message)
	})

	t.Run("short password", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, testLog())

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", jsonBody(t, models.RegisterRequest{
			Name: "Ravi", Email: "ravi@example.com", Password: "123",
		}))
		w := httptest.NewRecorder()
		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		users.AssertNotCalled(t, "InsertUser", mock.Anything, mock.Anything)
	})

	t.Run("invalid json", func(t *testing.T) {
		handler := NewAuthHandler(authService, new(MockUserCollection), testLog())
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", envelope(t, w).Message)
	})
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	authService := newAuthService(t)
	user := &models.User{ID: primitive.NewObjectID(), Email: "asha@example.com", VerificationToken: "tok"}

	t.Run("known token", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, testLog())
		users.On("FindUserByVerificationToken", mock.Anything, "tok").Return(user, nil)
		users.On("MarkVerified", mock.Anything, user.ID.Hex()).Return(nil)

		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/auth/verify-email/tok", nil),
			map[string]string{"token": "tok"})
		w := httptest.NewRecorder()
		handler.VerifyEmail(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		users.AssertExpectations(t)
	})

	t.Run("unknown token", func(t *testing.T) {
		users := new(MockUserCollection)
		handler := NewAuthHandler(authService, users, testLog())
		users.On("FindUserByVerificationToken", mock.Anything, "bad").Return(nil, models.ErrUserNotFound)

		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/auth/verify-email/bad", nil),
			map[string]string{"token": "bad"})
		w := httptest.NewRecorder()
		handler.VerifyEmail(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrInvalidVerification.Message, envelope(t, w).Message)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	authService := newAuthService(t)
	user := &models.User{ID: primitive.NewObjectID(), Name: "Asha", Email: "asha@example.com", Role: models.RoleUser}

	users := new(MockUserCollection)
	handler := NewAuthHandler(authService, users, testLog())
	users.On("FindUserByID", mock.Anything, user.ID.Hex()).Return(user, nil)

	claims := &models.Claims{UserID: user.ID.Hex(), Email: user.Email, Role: models.RoleUser}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
	w := httptest.NewRecorder()
	handler.Me(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := envelope(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "asha@example.com", data["email"])
}
