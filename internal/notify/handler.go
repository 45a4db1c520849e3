package notify

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"biteback/internal/auth"
	"biteback/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests into hub clients.
type Handler struct {
	hub        *Hub
	jwtService *auth.JWTService
}

// NewHandler creates a websocket handler.
func NewHandler(hub *Hub, jwtService *auth.JWTService) *Handler {
	return &Handler{hub: hub, jwtService: jwtService}
}

// HandleConnection godoc
// @Summary Connect to the realtime notification channel
// @Tags notificaciones
// @Param token query string false "Access token; sellers are auto-joined to their private channel"
// @Success 101
// @Router /ws [get]
func (h *Handler) HandleConnection(c echo.Context) error {
	// Anonymous connections are allowed; an invalid token just means no
	// identity, same as the HTTP optional-auth middleware.
	var claims *auth.Claims
	if token := c.QueryParam("token"); token != "" {
		if parsed, err := h.jwtService.ValidateToken(token); err == nil {
			claims = parsed
		}
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(h.hub, conn, claims)
	h.hub.Register(client)

	if claims != nil && claims.Role == model.RoleAdministrador {
		h.hub.JoinRoom(client, SellerRoom(claims.UserID))
	}

	go client.WritePump()
	go client.ReadPump()
	return nil
}

// HandleStats godoc
// @Summary Hub connection statistics
// @Tags notificaciones
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /ws/stats [get]
func (h *Handler) HandleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.hub.Stats())
}
