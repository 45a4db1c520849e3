package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"biteback/internal/auth"
	errs "biteback/internal/errors"
	"biteback/internal/model"
)

func TestUserService_CreateUser(t *testing.T) {
	t.Run("creates user with hashed password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "nueva@biteback.dev").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo)
		user, err := svc.CreateUser(context.Background(), "Nueva Usuaria", "nueva@biteback.dev", "clave123", "")
		require.NoError(t, err)
		assert.Equal(t, model.RoleCliente, user.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("clave123")))
	})

	t.Run("existing email is rejected", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "existente@biteback.dev").
			Return(&model.User{ID: 3, Email: "existente@biteback.dev"}, nil)

		svc := NewUserService(mockRepo)
		_, err := svc.CreateUser(context.Background(), "Ya Existe", "existente@biteback.dev", "clave123", "")
		assert.ErrorIs(t, err, errs.ErrDuplicateEmail)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("concurrent insert on unique index reports duplicate", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "carrera@biteback.dev").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)

		svc := NewUserService(mockRepo)
		_, err := svc.CreateUser(context.Background(), "Registro Simultáneo", "carrera@biteback.dev", "clave123", "")
		assert.ErrorIs(t, err, errs.ErrDuplicateEmail)
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	self := auth.Claims{UserID: 7, Role: model.RoleCliente}
	admin := auth.Claims{UserID: 1, Role: model.RoleAdministrador}
	newName := "Nombre Nuevo"
	newEmail := "nuevo@biteback.dev"
	newPassword := "clave-nueva"
	adminRole := model.RoleAdministrador

	existing := func() *model.User {
		return &model.User{ID: 7, Name: "Laura Gómez", Email: "laura@biteback.dev", PasswordHash: "hash", Role: model.RoleCliente}
	}

	t.Run("user edits own profile", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(7)).Return(existing(), nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo)
		user, err := svc.UpdateUser(context.Background(), self, 7, UserUpdateInput{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, newName, user.Name)
	})

	t.Run("email change rechecks uniqueness", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(7)).Return(existing(), nil)
		mockRepo.On("FindByEmail", mock.Anything, newEmail).Return(&model.User{ID: 8, Email: newEmail}, nil)

		svc := NewUserService(mockRepo)
		_, err := svc.UpdateUser(context.Background(), self, 7, UserUpdateInput{Email: &newEmail})
		assert.ErrorIs(t, err, errs.ErrDuplicateEmail)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("password change is re-hashed", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(7)).Return(existing(), nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo)
		user, err := svc.UpdateUser(context.Background(), self, 7, UserUpdateInput{Password: &newPassword})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(newPassword)))
	})

	t.Run("user may not edit another profile", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository))
		_, err := svc.UpdateUser(context.Background(), self, 8, UserUpdateInput{Name: &newName})
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("role change requires admin", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(7)).Return(existing(), nil)

		svc := NewUserService(mockRepo)
		_, err := svc.UpdateUser(context.Background(), self, 7, UserUpdateInput{Role: &adminRole})
		assert.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("admin changes any profile and role", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(7)).Return(existing(), nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewUserService(mockRepo)
		user, err := svc.UpdateUser(context.Background(), admin, 7, UserUpdateInput{Role: &adminRole})
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdministrador, user.Role)
	})

	t.Run("missing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(7)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo)
		_, err := svc.UpdateUser(context.Background(), admin, 7, UserUpdateInput{Name: &newName})
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Run("missing user reports not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Delete", mock.Anything, uint(9)).Return(int64(0), nil)

		svc := NewUserService(mockRepo)
		err := svc.DeleteUser(context.Background(), 9)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("existing user is removed", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("Delete", mock.Anything, uint(9)).Return(int64(1), nil)

		svc := NewUserService(mockRepo)
		require.NoError(t, svc.DeleteUser(context.Background(), 9))
	})
}
