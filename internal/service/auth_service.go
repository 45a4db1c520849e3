package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"biteback/internal/auth"
	errs "biteback/internal/errors"
	"biteback/internal/model"
	"biteback/internal/repository"
)

const bcryptCost = 10

// AuthService handles the identity lifecycle: registration, login, token
// refresh and logout.
type AuthService interface {
	Register(ctx context.Context, name, email, password string, role model.Role) (user *model.User, accessToken, refreshToken string, err error)
	Login(ctx context.Context, email, password string) (user *model.User, accessToken, refreshToken string, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a user with a hashed password and logs it in.
func (s *authService) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, string, string, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", "", errs.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", "", fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", "", fmt.Errorf("hash password: %w", err)
	}

	if role == "" {
		role = model.RoleCliente
	}
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the existence check and
		// land on the unique email index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", "", errs.ErrDuplicateEmail
		}
		return nil, "", "", fmt.Errorf("create user: %w", err)
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

// Login authenticates a user and returns access and refresh tokens. Unknown
// email and wrong password produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", "", errs.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", errs.ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, "", "", err
	}
	return user, accessToken, refreshToken, nil
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", "", fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}

	data := auth.RefreshTokenData{UserID: user.ID, Email: user.Email, Role: user.Role}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, data, auth.RefreshTokenExpiry); err != nil {
		return "", "", fmt.Errorf("store refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

// Refresh validates a refresh token and mints a new access token carrying
// the same identity claims. The refresh token itself is not rotated; it
// stays valid until expiry or logout.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", errs.ErrInvalidRefreshToken
	}

	stored, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", errs.ErrInvalidRefreshToken
	}
	if stored.UserID != claims.UserID || stored.Email != claims.Email {
		return "", errs.ErrInvalidRefreshToken
	}

	user := &model.User{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.Role,
	}
	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates the refresh token and blacklists the presented access
// token for whatever lifetime it has left.
func (s *authService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return errs.ErrInvalidRefreshToken
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
		return err
	}

	if accessToken == "" {
		return nil
	}
	claims, err := s.jwtService.ValidateToken(accessToken)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		// Nothing valid left to blacklist.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.tokenStore.BlacklistAccessToken(ctx, claims.ID, ttl)
}
