package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	errs "biteback/internal/errors"
	"biteback/internal/middleware"
	"biteback/internal/model"
	"biteback/internal/service"
)

// UserHandler handles user management endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents an admin user-creation request.
type CreateUserRequest struct {
	Name     string `json:"nombre" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"tipo_usuario" validate:"omitempty,oneof=Cliente Administrador"`
}

// UpdateUserRequest represents a profile update; absent fields are untouched.
type UpdateUserRequest struct {
	Name     *string `json:"nombre"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"tipo_usuario" validate:"omitempty,oneof=Cliente Administrador"`
}

// Create godoc
// @Summary Create a user
// @Tags usuarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /usuarios [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Error: "cuerpo de la petición inválido",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	user, err := h.userService.CreateUser(c.Request().Context(), req.Name, req.Email, req.Password, model.Role(req.Role))
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, user)
}

// List godoc
// @Summary List users
// @Tags usuarios
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Router /usuarios [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, users)
}

// Get godoc
// @Summary Get a user by ID
// @Tags usuarios
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /usuarios/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}

// Update godoc
// @Summary Update a user
// @Tags usuarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /usuarios/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Error: "cuerpo de la petición inválido",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	in := service.UserUpdateInput{Name: req.Name, Email: req.Email, Password: req.Password}
	if req.Role != nil {
		role := model.Role(*req.Role)
		in.Role = &role
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), *claims, id, in)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}

// Delete godoc
// @Summary Delete a user
// @Tags usuarios
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /usuarios/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := h.userService.DeleteUser(c.Request().Context(), id); err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "usuario eliminado correctamente",
	})
}

// parseIDParam reads the :id path parameter as an unsigned integer.
func parseIDParam(c echo.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Error: "identificador inválido",
			Code:  "INVALID_ID",
		})
	}
	return uint(id), nil
}
