package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	errs "biteback/internal/errors"
	"biteback/internal/middleware"
	"biteback/internal/model"
	"biteback/internal/service"
)

// PurchaseLineHandler handles raw line CRUD outside the order workflow.
type PurchaseLineHandler struct {
	orderService service.OrderService
}

// NewPurchaseLineHandler creates a new purchase line handler.
func NewPurchaseLineHandler(orderService service.OrderService) *PurchaseLineHandler {
	return &PurchaseLineHandler{orderService: orderService}
}

// CreateLineRequest appends a line to an existing purchase.
type CreateLineRequest struct {
	PurchaseID uint   `json:"compra_id" validate:"required"`
	ProductID  uint   `json:"producto_id" validate:"required"`
	Quantity   int    `json:"cantidad" validate:"required,gt=0"`
	UnitPrice  string `json:"precio_unitario" validate:"required"`
}

// UpdateLineRequest edits a line; absent fields are untouched.
type UpdateLineRequest struct {
	Quantity  *int    `json:"cantidad" validate:"omitempty,gt=0"`
	UnitPrice *string `json:"precio_unitario"`
}

// List godoc
// @Summary List purchase lines (own, or all for admins)
// @Tags detalle-compras
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.PurchaseLine
// @Router /detalle-compras [get]
func (h *PurchaseLineHandler) List(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	lines, err := h.orderService.ListLines(c.Request().Context(), *claims)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, lines)
}

// Get godoc
// @Summary Get one purchase line
// @Tags detalle-compras
// @Produce json
// @Security BearerAuth
// @Param id path int true "Line ID"
// @Success 200 {object} model.PurchaseLine
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /detalle-compras/{id} [get]
func (h *PurchaseLineHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	line, err := h.orderService.GetLine(c.Request().Context(), *claims, id)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, line)
}

// Create godoc
// @Summary Append a line to an existing purchase
// @Tags detalle-compras
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLineRequest true "Line data"
// @Success 201 {object} model.PurchaseLine
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /detalle-compras [post]
func (h *PurchaseLineHandler) Create(c echo.Context) error {
	var req CreateLineRequest
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

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Error: "precio_unitario inválido",
			Code:  "INVALID_AMOUNT",
		})
	}

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	line, err := h.orderService.CreateLine(c.Request().Context(), *claims, &model.PurchaseLine{
		PurchaseID: req.PurchaseID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		UnitPrice:  unitPrice,
	})
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, line)
}

// Update godoc
// @Summary Update a purchase line
// @Tags detalle-compras
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Line ID"
// @Param request body UpdateLineRequest true "Fields to change"
// @Success 200 {object} model.PurchaseLine
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /detalle-compras/{id} [put]
func (h *PurchaseLineHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req UpdateLineRequest
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

	in := service.LineUpdateInput{Quantity: req.Quantity}
	if req.UnitPrice != nil {
		unitPrice, err := decimal.NewFromString(*req.UnitPrice)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
				Error: "precio_unitario inválido",
				Code:  "INVALID_AMOUNT",
			})
		}
		in.UnitPrice = &unitPrice
	}

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	line, err := h.orderService.UpdateLine(c.Request().Context(), *claims, id, in)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, line)
}

// Delete godoc
// @Summary Delete a purchase line
// @Tags detalle-compras
// @Produce json
// @Security BearerAuth
// @Param id path int true "Line ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /detalle-compras/{id} [delete]
func (h *PurchaseLineHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if err := h.orderService.DeleteLine(c.Request().Context(), *claims, id); err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "detalle eliminado correctamente",
	})
}
