package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"biteback/internal/auth"
	"biteback/internal/middleware"
	"biteback/internal/model"
	"biteback/internal/repository"
	"biteback/internal/service"
)

// memoryTokenStore is an in-memory TokenStoreInterface for handler tests.
type memoryTokenStore struct {
	mu        sync.Mutex
	refresh   map[string]auth.RefreshTokenData
	blacklist map[string]bool
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{
		refresh:   make(map[string]auth.RefreshTokenData),
		blacklist: make(map[string]bool),
	}
}

func (s *memoryTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, data auth.RefreshTokenData, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[tokenID] = data
	return nil
}

func (s *memoryTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (*auth.RefreshTokenData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.refresh[tokenID]
	if !ok {
		return nil, errRefreshNotFound
	}
	return &data, nil
}

func (s *memoryTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, tokenID)
	return nil
}

func (s *memoryTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[tokenID] = true
	return nil
}

func (s *memoryTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blacklist[tokenID], nil
}

var errRefreshNotFound = errors.New("refresh token not found")

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

type authTestEnv struct {
	e          *echo.Echo
	jwtService *auth.JWTService
	tokenStore *memoryTokenStore
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	jwtService := auth.NewJWTService("test-secret")
	tokenStore := newMemoryTokenStore()
	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	authHandler := NewAuthHandler(authService)

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	e.POST("/auth/registro", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, middleware.Authenticate(jwtService, tokenStore))
	e.GET("/solo-admin", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, middleware.Authenticate(jwtService, tokenStore, model.RoleAdministrador))

	return &authTestEnv{e: e, jwtService: jwtService, tokenStore: tokenStore}
}

func (env *authTestEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *authTestEnv) register(t *testing.T, email, role string) AuthResponse {
	t.Helper()
	body := `{"nombre":"Usuario Prueba","email":"` + email + `","password":"clave123"`
	if role != "" {
		body += `,"tipo_usuario":"` + role + `"`
	}
	body += `}`
	rec := env.do(http.MethodPost, "/auth/registro", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthFlow_RegisterAndLogin(t *testing.T) {
	env := newAuthTestEnv(t)

	resp := env.register(t, "laura@biteback.dev", "")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	t.Run("duplicate email", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/auth/registro",
			`{"nombre":"Otra","email":"laura@biteback.dev","password":"clave123"}`, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "DUPLICATE_EMAIL")
	})

	t.Run("password never leaks in responses", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/auth/login",
			`{"email":"laura@biteback.dev","password":"clave123"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "clave123")
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/auth/login",
			`{"email":"laura@biteback.dev","password":"incorrecta"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/auth/login", `{"email":"no-es-email"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthFlow_MeRequiresValidToken(t *testing.T) {
	env := newAuthTestEnv(t)
	resp := env.register(t, "laura@biteback.dev", "")

	t.Run("valid token", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/auth/me", "", resp.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "laura@biteback.dev")
	})

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/auth/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/auth/me", "", "no.es.token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		claims := &auth.Claims{
			UserID: 42,
			Email:  "laura@biteback.dev",
			Role:   model.RoleCliente,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "expired-jti",
				ExpiresAt: jwt.NewNumericDate(past),
				IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
			},
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		rec := env.do(http.MethodGet, "/auth/me", "", expired)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthFlow_RoleGate(t *testing.T) {
	env := newAuthTestEnv(t)
	buyer := env.register(t, "laura@biteback.dev", "Cliente")
	seller := env.register(t, "espiga@biteback.dev", "Administrador")

	rec := env.do(http.MethodGet, "/solo-admin", "", buyer.AccessToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/solo-admin", "", seller.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow_RefreshAndLogout(t *testing.T) {
	env := newAuthTestEnv(t)
	resp := env.register(t, "laura@biteback.dev", "")

	t.Run("refresh mints a working access token", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/auth/refresh",
			`{"refresh_token":"`+resp.RefreshToken+`"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var refreshed AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
		require.NotEmpty(t, refreshed.AccessToken)

		rec = env.do(http.MethodGet, "/auth/me", "", refreshed.AccessToken)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("logout revokes both tokens", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/auth/logout",
			`{"refresh_token":"`+resp.RefreshToken+`"}`, resp.AccessToken)
		require.Equal(t, http.StatusOK, rec.Code)

		// Refresh token no longer works.
		rec = env.do(http.MethodPost, "/auth/refresh",
			`{"refresh_token":"`+resp.RefreshToken+`"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		// Access token is blacklisted for its remaining lifetime.
		rec = env.do(http.MethodGet, "/auth/me", "", resp.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
