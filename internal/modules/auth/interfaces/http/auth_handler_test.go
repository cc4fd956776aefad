package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityaraina/pulsefeed/internal/gateway/middleware"
	"github.com/adityaraina/pulsefeed/internal/modules/auth/application"
	"github.com/adityaraina/pulsefeed/internal/modules/auth/domain"
)

type authServiceMock struct {
	registerFn func(context.Context, application.RegisterRequest) (*domain.User, error)
	loginFn    func(context.Context, application.LoginRequest) (string, error)
	getUserFn  func(context.Context, uuid.UUID) (*domain.User, error)
}

func (m authServiceMock) Register(ctx context.Context, req application.RegisterRequest) (*domain.User, error) {
	return m.registerFn(ctx, req)
}

func (m authServiceMock) Login(ctx context.Context, req application.LoginRequest) (string, error) {
	return m.loginFn(ctx, req)
}

func (m authServiceMock) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getUserFn(ctx, id)
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h := NewAuthHandler(authServiceMock{
			registerFn: func(_ context.Context, req application.RegisterRequest) (*domain.User, error) {
				return &domain.User{ID: uuid.New(), Email: req.Email}, nil
			},
		})

		body := `{"email":"a@b.com","password":"long-enough-password"}`
		w := httptest.NewRecorder()
		h.Register(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, w.Code)
		var user domain.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
		assert.Equal(t, "a@b.com", user.Email)
	})

	t.Run("conflict", func(t *testing.T) {
		h := NewAuthHandler(authServiceMock{
			registerFn: func(context.Context, application.RegisterRequest) (*domain.User, error) {
				return nil, domain.ErrUserAlreadyExists
			},
		})

		w := httptest.NewRecorder()
		h.Register(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{"email":"a@b.com"}`)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		h := NewAuthHandler(authServiceMock{})

		w := httptest.NewRecorder()
		h.Register(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{not json")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := NewAuthHandler(authServiceMock{
			loginFn: func(context.Context, application.LoginRequest) (string, error) {
				return "signed-token", nil
			},
		})

		w := httptest.NewRecorder()
		h.Login(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.com","password":"pw"}`)))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"token":"signed-token"}`, w.Body.String())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h := NewAuthHandler(authServiceMock{
			loginFn: func(context.Context, application.LoginRequest) (string, error) {
				return "", domain.ErrInvalidCredentials
			},
		})

		w := httptest.NewRecorder()
		h.Login(w, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.com","password":"pw"}`)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	userID := uuid.New()
	h := NewAuthHandler(authServiceMock{
		getUserFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
			assert.Equal(t, userID, id)
			return &domain.User{ID: id, Email: "a@b.com"}, nil
		},
	})

	t.Run("unauthorized without identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns the caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, userID)

		w := httptest.NewRecorder()
		h.Me(w, req.WithContext(ctx))

		require.Equal(t, http.StatusOK, w.Code)
		var user domain.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
		assert.Equal(t, userID, user.ID)
	})
}
