package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/commercelink/reseller_backend/controllers"
)

// RegisterAdminRoutes sets up all admin-related routes. The admin group is
// where the credential middleware plugs in once the auth collaborator wires
// it; routes ship without it.
func RegisterAdminRoutes(e *echo.Echo, paymentController *controllers.PaymentController, productController *controllers.ProductController) {
	admin := e.Group("/api/admin")

	// Payment approval workflow
	admin.GET("/payments", paymentController.ListPayments)
	admin.GET("/payments/failed-payouts", paymentController.ListFailedPayouts)
	admin.GET("/payments/:id", paymentController.GetPayment)
	admin.POST("/payments/:id/approve", paymentController.ApprovePayment)
	admin.POST("/payments/:id/reject", paymentController.RejectPayment)
	admin.POST("/payments/:id/retry-payout", paymentController.RetryPayout)

	// Commission ledger
	admin.GET("/commissions", paymentController.ListCommissions)

	// Backfill reconciliation job
	admin.POST("/reconciliation/run", paymentController.RunReconciliation)

	// Fraud alerts raised during reconciliation
	admin.GET("/fraud-alerts", paymentController.ListFraudAlerts)
	admin.POST("/fraud-alerts/:id/resolve", paymentController.ResolveFraudAlert)

	// Product catalog
	admin.POST("/products", productController.CreateProduct)
	admin.GET("/products", productController.ListProducts)
}
