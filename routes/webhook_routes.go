package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/commercelink/reseller_backend/controllers"
)

// RegisterWebhookRoutes sets up the store webhook endpoints. Signature
// verification is applied upstream; the rate limiter guards bursts.
func RegisterWebhookRoutes(e *echo.Echo, webhookController *controllers.WebhookController) {
	webhook := e.Group("/api/webhook")

	webhook.POST("/store-purchase", webhookController.HandleStorePurchase)
	webhook.POST("/order-status", webhookController.HandleOrderStatus)
}
