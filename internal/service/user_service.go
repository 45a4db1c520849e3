package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"biteback/internal/auth"
	errs "biteback/internal/errors"
	"biteback/internal/model"
	"biteback/internal/repository"
)

// UserUpdateInput carries the mutable profile fields. Nil means "leave as is".
type UserUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *model.Role
}

// UserService exposes user CRUD. Role gating happens at the router; this
// layer enforces the self-or-admin rule on profile edits.
type UserService interface {
	CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, actor auth.Claims, id uint, in UserUpdateInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errs.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if role == "" {
		role = model.RoleCliente
	}

	user := &model.User{Name: name, Email: email, PasswordHash: string(hashed), Role: role}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// UpdateUser edits a profile. Non-admins may only edit themselves and may
// not change their own role.
func (s *userService) UpdateUser(ctx context.Context, actor auth.Claims, id uint, in UserUpdateInput) (*model.User, error) {
	isAdmin := actor.Role == model.RoleAdministrador
	if !isAdmin && actor.UserID != id {
		return nil, errs.ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil && *in.Email != user.Email {
		existing, err := s.repo.FindByEmail(ctx, *in.Email)
		if err == nil && existing != nil {
			return nil, errs.ErrDuplicateEmail
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}
	if in.Role != nil {
		if !isAdmin {
			return nil, errs.ErrForbidden
		}
		user.Role = *in.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
