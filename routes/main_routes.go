package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/commercelink/reseller_backend/websocket"
)

// SetupRoutes registers the health endpoints and the websocket upgrade.
func SetupRoutes(e *echo.Echo, hub *websocket.Hub) {
	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Reseller backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	e.GET("/api/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub)
	})
}
