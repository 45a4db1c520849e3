package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	errs "biteback/internal/errors"
	"biteback/internal/middleware"
	"biteback/internal/service"
)

// ProductHandler handles catalog endpoints.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProductRequest represents a new listing.
type CreateProductRequest struct {
	Name        string   `json:"nombre" validate:"required"`
	Description string   `json:"descripcion"`
	Price       string   `json:"precio" validate:"required"`
	Stock       int      `json:"stock" validate:"gte=0"`
	ImageURLs   []string `json:"imagenes" validate:"dive,url"`
}

// UpdateProductRequest represents a listing edit; absent fields are untouched.
type UpdateProductRequest struct {
	Name        *string `json:"nombre"`
	Description *string `json:"descripcion"`
	Price       *string `json:"precio"`
	Stock       *int    `json:"stock" validate:"omitempty,gte=0"`
}

// List godoc
// @Summary List the public catalog
// @Tags productos
// @Produce json
// @Success 200 {array} model.Product
// @Router /productos [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.productService.ListProducts(c.Request().Context())
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, products)
}

// Get godoc
// @Summary Get one product
// @Tags productos
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} model.Product
// @Failure 404 {object} errors.ErrorResponse
// @Router /productos/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	product, err := h.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, product)
}

// ListOwn godoc
// @Summary List the authenticated seller's products
// @Tags productos
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Product
// @Router /productos-auth/mis-productos [get]
func (h *ProductHandler) ListOwn(c echo.Context) error {
	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	products, err := h.productService.ListOwnProducts(c.Request().Context(), *claims)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, products)
}

// Create godoc
// @Summary Create a product listing
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateProductRequest true "Product data"
// @Success 201 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Router /productos-auth [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req CreateProductRequest
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

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
			Error: "precio inválido",
			Code:  "INVALID_PRICE",
		})
	}

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	product, err := h.productService.CreateProduct(c.Request().Context(), *claims, service.ProductCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		ImageURLs:   req.ImageURLs,
	})
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, product)
}

// Update godoc
// @Summary Update an owned product listing
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body UpdateProductRequest true "Fields to change"
// @Success 200 {object} model.Product
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /productos-auth/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var req UpdateProductRequest
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

	in := service.ProductUpdateInput{Name: req.Name, Description: req.Description, Stock: req.Stock}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
				Error: "precio inválido",
				Code:  "INVALID_PRICE",
			})
		}
		in.Price = &price
	}

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	product, err := h.productService.UpdateProduct(c.Request().Context(), *claims, id, in)
	if err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, product)
}

// Delete godoc
// @Summary Delete an owned product listing
// @Tags productos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /productos-auth/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		httpErr := errs.MapErrorToHTTP(errs.ErrUnauthenticated)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if err := h.productService.DeleteProduct(c.Request().Context(), *claims, id); err != nil {
		httpErr := errs.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "producto eliminado correctamente",
	})
}
