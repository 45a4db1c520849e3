package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"biteback/internal/auth"
	errs "biteback/internal/errors"
	"biteback/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, data auth.RefreshTokenData, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, data, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (*auth.RefreshTokenData, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.RefreshTokenData), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		userName      string
		role          model.Role
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
		expectedRole  model.Role
	}{
		{
			name:     "successful registration defaults to Cliente",
			email:    "nueva@biteback.dev",
			password: "password123",
			userName: "Nueva Usuaria",
			role:     "",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "nueva@biteback.dev").Return(nil, gorm.ErrRecordNotFound)
				mRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, auth.RefreshTokenExpiry).Return(nil)
			},
			expectedRole: model.RoleCliente,
		},
		{
			name:     "seller registration keeps requested role",
			email:    "tienda@biteback.dev",
			password: "password123",
			userName: "Tienda Local",
			role:     model.RoleAdministrador,
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "tienda@biteback.dev").Return(nil, gorm.ErrRecordNotFound)
				mRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, auth.RefreshTokenExpiry).Return(nil)
			},
			expectedRole: model.RoleAdministrador,
		},
		{
			name:     "email already registered",
			email:    "existente@biteback.dev",
			password: "password123",
			userName: "Ya Existe",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "existente@biteback.dev").
					Return(&model.User{Email: "existente@biteback.dev"}, nil)
			},
			expectedError: errs.ErrDuplicateEmail,
		},
		{
			// A concurrent registration can pass the existence check and
			// then hit the unique email index on insert.
			name:     "concurrent registration hits unique index",
			email:    "carrera@biteback.dev",
			password: "password123",
			userName: "Registro Simultáneo",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "carrera@biteback.dev").Return(nil, gorm.ErrRecordNotFound)
				mRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: errs.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockRepo, jwtService, mockTokenStore)

			user, accessToken, refreshToken, err := svc.Register(
				context.Background(), tt.userName, tt.email, tt.password, tt.role)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.expectedRole, user.Role)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				// The stored hash must verify against the plaintext.
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(tt.password)))
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "laura@biteback.dev",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "laura@biteback.dev").Return(&model.User{
					ID:           7,
					Name:         "Laura Gómez",
					Email:        "laura@biteback.dev",
					PasswordHash: string(hashed),
					Role:         model.RoleCliente,
				}, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nadie@biteback.dev",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "nadie@biteback.dev").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errs.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "laura@biteback.dev",
			password: "incorrecta",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "laura@biteback.dev").Return(&model.User{
					ID:           7,
					Email:        "laura@biteback.dev",
					PasswordHash: string(hashed),
				}, nil)
			},
			expectedError: errs.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			svc := NewAuthService(mockRepo, jwtService, mockTokenStore)

			user, accessToken, refreshToken, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: 7, Name: "Laura Gómez", Email: "laura@biteback.dev", Role: model.RoleCliente}

	t.Run("valid refresh token mints a new access token", func(t *testing.T) {
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
		require.NoError(t, err)

		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(&auth.RefreshTokenData{
			UserID: 7, Email: "laura@biteback.dev", Role: model.RoleCliente,
		}, nil)

		svc := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
		accessToken, err := svc.Refresh(context.Background(), refreshToken)
		require.NoError(t, err)

		claims, err := jwtService.ValidateToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, model.RoleCliente, claims.Role)
		mockTokenStore.AssertExpectations(t)
	})

	t.Run("revoked refresh token is rejected", func(t *testing.T) {
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
		require.NoError(t, err)

		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(nil, assert.AnError)

		svc := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
		_, err = svc.Refresh(context.Background(), refreshToken)
		assert.ErrorIs(t, err, errs.ErrInvalidRefreshToken)
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore))
		_, err := svc.Refresh(context.Background(), "no-es-un-token")
		assert.ErrorIs(t, err, errs.ErrInvalidRefreshToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: 7, Name: "Laura Gómez", Email: "laura@biteback.dev", Role: model.RoleCliente}

	t.Run("deletes refresh token and blacklists access token", func(t *testing.T) {
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
		require.NoError(t, err)
		accessToken, err := jwtService.GenerateAccessToken(user)
		require.NoError(t, err)

		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)
		mockTokenStore.On("BlacklistAccessToken", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
		require.NoError(t, svc.Logout(context.Background(), refreshToken, accessToken))
		mockTokenStore.AssertExpectations(t)
	})

	t.Run("missing access token still clears the refresh token", func(t *testing.T) {
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
		require.NoError(t, err)

		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)

		svc := NewAuthService(new(MockUserRepository), jwtService, mockTokenStore)
		require.NoError(t, svc.Logout(context.Background(), refreshToken, ""))
		mockTokenStore.AssertNotCalled(t, "BlacklistAccessToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid refresh token is rejected", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore))
		err := svc.Logout(context.Background(), "basura", "")
		assert.ErrorIs(t, err, errs.ErrInvalidRefreshToken)
	})
}
