package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when request input is missing or malformed.
	ErrValidation = errors.New("datos inválidos o incompletos")
	// ErrDuplicateEmail is returned when registering an email that already exists.
	ErrDuplicateEmail = errors.New("email ya registrado")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	// ErrInvalidRefreshToken is returned when a refresh token does not verify.
	ErrInvalidRefreshToken = errors.New("refresh token inválido o expirado")
	// ErrUnauthenticated is returned when no valid identity was established.
	ErrUnauthenticated = errors.New("no autenticado")
	// ErrForbidden is returned on role mismatch or non-owner mutation.
	ErrForbidden = errors.New("acceso denegado")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("usuario no encontrado")
	// ErrPurchaseNotFound is returned when a purchase does not exist.
	ErrPurchaseNotFound = errors.New("compra no encontrada")
	// ErrLineNotFound is returned when a purchase line does not exist.
	ErrLineNotFound = errors.New("detalle no encontrado")
	// ErrProductMissing is returned when a product does not exist.
	ErrProductMissing = errors.New("producto no encontrado")
	// ErrProductNotFound is returned during order placement when a line
	// references a product that does not exist.
	ErrProductNotFound = errors.New("producto inexistente en la orden")
	// ErrOutOfStock is returned during order placement when the locked stock
	// is less than the requested quantity.
	ErrOutOfStock = errors.New("stock insuficiente")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrPurchaseNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PURCHASE_NOT_FOUND")
	case errors.Is(err, ErrLineNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "LINE_NOT_FOUND")
	case errors.Is(err, ErrProductMissing):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ORDER_PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrOutOfStock):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "OUT_OF_STOCK")
	default:
		return NewHTTPError(http.StatusInternalServerError, "error interno del servidor", "INTERNAL_ERROR")
	}
}
