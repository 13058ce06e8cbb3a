package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/commercelink/reseller_backend/controllers"
)

// RegisterResellerRoutes sets up the reseller-facing routes.
func RegisterResellerRoutes(e *echo.Echo, resellerController *controllers.ResellerController) {
	resellers := e.Group("/api/resellers")

	resellers.POST("", resellerController.RegisterReseller)
	resellers.GET("/:resellerId", resellerController.GetReseller)
	resellers.GET("/:resellerId/wallet", resellerController.GetWallet)
	resellers.GET("/:resellerId/payments", resellerController.GetPaymentHistory)
	resellers.GET("/:resellerId/transactions", resellerController.GetTransactionHistory)
}
