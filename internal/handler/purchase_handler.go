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

// PurchaseHandler handles purchase endpoints, including order placement.
type PurchaseHandler struct {
	orderService service.OrderService
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(orderService service.OrderService) *PurchaseHandler {
	return &PurchaseHandler{orderService: orderService}
}

// OrderLineRequest is one requested line of a new order.
type OrderLineRequest struct {
	ProductID uint   `json:"producto_id" validate:"required"`
	Quantity  int    `json:"cantidad" validate:"required,gt=0"`
	UnitPrice string `json:"precio_unitario" validate:"required"`
}

// PlaceOrderRequest represents a new order with its lines.
type PlaceOrderRequest struct {
	City          string             `json:"ciudad" validate:"required"`
	Address       string             `json:"direccion" validate:"required"`
	Phone         string             `json:"telefono" validate:"required"`
	PaymentMethod string             `json:"metodo_pago" validate:"required"`
	PaymentStatus string             `json:"estado_pago" validate:"omitempty,oneof=pendiente pagado cancelado"`
	Total         string             `json:"total" validate:"required"`
	Lines         []OrderLineRequest `json:"productos" validate:"required,min=1,dive"`
}

// PaymentStatusRequest represents a payment state transition.
type PaymentStatusRequest struct {
	Status string `json:"estado_pago" validate:"required,oneof=pendiente pagado cancelado"`
}

// ShippingStatusRequest represents a shipping state transition.
type ShippingStatusRequest struct {
	Status string `json:"estado_envio" validate:"required,oneof=Pendiente Enviado Entregado"`
}

// Create godoc
// @Summary Place an order
// @Tags compras
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PlaceOrderRequest true "Order data"
// @Success 201 {object} model.Purchase
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /compras [post]
func (h *PurchaseHandler) Create(c echo.Context) error {
	var req PlaceOrderRequest
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

	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Error: "total inválido",
			Code:  "INVALID_AMOUNT",
		})
	}

	in := service.PlaceOrderInput{
		City:          req.City,
		Address:       req.Address,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: model.PaymentStatus(req.PaymentStatus),
		Total:         total,
	}
	for _, line := range req.Lines {
		unitPrice, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
				Error: "precio_unitario inválido",
				Code:  "INVALID_AMOUNT",
			})
		}
		in.Lines = append(in.Lines, service.OrderLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
		})
	}

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	purchase, err := h.orderService.PlaceOrder(c.Request().Context(), *claims, in)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, purchase)
}

// List godoc
// @Summary List purchases (own, or all for admins)
// @Tags compras
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Purchase
// @Router /compras [get]
func (h *PurchaseHandler) List(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	purchases, err := h.orderService.ListPurchases(c.Request().Context(), *claims)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, purchases)
}

// Get godoc
// @Summary Get one purchase
// @Tags compras
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase ID"
// @Success 200 {object} model.Purchase
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /compras/{id} [get]
func (h *PurchaseHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	purchase, err := h.orderService.GetPurchase(c.Request().Context(), *claims, id)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, purchase)
}

// Delete godoc
// @Summary Delete a purchase with its lines
// @Tags compras
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /compras/{id} [delete]
func (h *PurchaseHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	if err := h.orderService.DeletePurchase(c.Request().Context(), id); err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "compra eliminada correctamente",
	})
}

// UpdatePaymentStatus godoc
// @Summary Update a purchase's payment status
// @Tags compras
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Purchase ID"
// @Param request body PaymentStatusRequest true "New status"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /compras/{id}/estado-pago [put]
func (h *PurchaseHandler) UpdatePaymentStatus(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req PaymentStatusRequest
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

	if err := h.orderService.UpdatePaymentStatus(c.Request().Context(), id, model.PaymentStatus(req.Status)); err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "estado de pago actualizado",
	})
}

// UpdateShippingStatus godoc
// @Summary Update a purchase line's shipping status
// @Tags compras
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Line ID"
// @Param request body ShippingStatusRequest true "New status"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /compras/detalle/{id}/estado-envio [put]
func (h *PurchaseHandler) UpdateShippingStatus(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req ShippingStatusRequest
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

	if err := h.orderService.UpdateShippingStatus(c.Request().Context(), id, model.ShippingStatus(req.Status)); err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "estado de envío actualizado",
	})
}
