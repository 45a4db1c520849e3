package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"biteback/internal/auth"
	"biteback/internal/config"
	"biteback/internal/handler"
	"biteback/internal/middleware"
	"biteback/internal/model"
	"biteback/internal/notify"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	purchaseHandler *handler.PurchaseHandler,
	lineHandler *handler.PurchaseLineHandler,
	notifyHandler *notify.Handler,
) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	authed := middleware.Authenticate(jwtService, tokenStore)
	adminOnly := middleware.Authenticate(jwtService, tokenStore, model.RoleAdministrador)

	// Identity lifecycle
	api.POST("/auth/registro", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", authHandler.Me, authed)

	// User management. Creation and deletion are admin operations; profile
	// edits enforce self-or-admin inside the service.
	usuarios := api.Group("/usuarios", authed)
	usuarios.GET("", userHandler.List)
	usuarios.GET("/:id", userHandler.Get)
	usuarios.PUT("/:id", userHandler.Update)
	usuarios.POST("", userHandler.Create, middleware.RequireRoles(model.RoleAdministrador))
	usuarios.DELETE("/:id", userHandler.Delete, middleware.RequireRoles(model.RoleAdministrador))

	// Public catalog. Identify decodes a token when present so storefronts
	// can personalize, but anonymous browsing stays open.
	productos := api.Group("/productos", middleware.Identify(jwtService, tokenStore))
	productos.GET("", productHandler.List)
	productos.GET("/:id", productHandler.Get)

	// Seller-side catalog management.
	productosAuth := api.Group("/productos-auth", adminOnly)
	productosAuth.GET("/mis-productos", productHandler.ListOwn)
	productosAuth.POST("", productHandler.Create)
	productosAuth.PUT("/:id", productHandler.Update)
	productosAuth.DELETE("/:id", productHandler.Delete)

	// Purchases: any authenticated user may order and read own purchases;
	// destructive and status operations are admin-only.
	compras := api.Group("/compras", authed)
	compras.POST("", purchaseHandler.Create)
	compras.GET("", purchaseHandler.List)
	compras.GET("/:id", purchaseHandler.Get)
	compras.DELETE("/:id", purchaseHandler.Delete, middleware.RequireRoles(model.RoleAdministrador))
	compras.PUT("/:id/estado-pago", purchaseHandler.UpdatePaymentStatus, middleware.RequireRoles(model.RoleAdministrador))
	compras.PUT("/detalle/:id/estado-envio", purchaseHandler.UpdateShippingStatus, middleware.RequireRoles(model.RoleAdministrador))

	// Raw line CRUD.
	detalle := api.Group("/detalle-compras", authed)
	detalle.GET("", lineHandler.List)
	detalle.GET("/:id", lineHandler.Get)
	detalle.POST("", lineHandler.Create)
	detalle.PUT("/:id", lineHandler.Update)
	detalle.DELETE("/:id", lineHandler.Delete)

	// Realtime notification channel.
	e.GET("/ws", notifyHandler.HandleConnection)
	e.GET("/ws/stats", notifyHandler.HandleStats, adminOnly)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
