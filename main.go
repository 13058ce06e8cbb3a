package main

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/commercelink/reseller_backend/config"
	"github.com/commercelink/reseller_backend/controllers"
	"github.com/commercelink/reseller_backend/middleware"
	"github.com/commercelink/reseller_backend/repositories"
	"github.com/commercelink/reseller_backend/routes"
	"github.com/commercelink/reseller_backend/services"
	"github.com/commercelink/reseller_backend/utils"
	"github.com/commercelink/reseller_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	client := config.ConnectDB(cfg)
	db := client.Database(cfg.DBName)

	// Connect to Redis; nil falls back to the in-process lock
	redisClient := config.ConnectRedis(cfg)
	var locker services.Locker
	if redisClient != nil {
		locker = services.NewRedisLocker(redisClient)
	} else {
		locker = services.NewLocalLocker()
	}

	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	resellerRepo := repositories.NewResellerRepository(db)
	productRepo := repositories.NewProductRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	commissionRepo := repositories.NewCommissionRepository(db)
	fraudAlertRepo := repositories.NewFraudAlertRepository(db)

	// Initialize services
	gateway := services.NewGateway(cfg)
	recorder := services.NewTransactionRecorder(resellerRepo, productRepo, transactionRepo)
	reconciler := services.NewReconciler(paymentRepo, commissionRepo, resellerRepo, transactionRepo, fraudAlertRepo, locker)
	approver := services.NewApprover(paymentRepo, commissionRepo, resellerRepo)
	disburser := services.NewDisburser(gateway, paymentRepo, 3, 2*time.Second)
	mailer := utils.NewMailer(cfg)

	// Initialize controllers
	webhookController := controllers.NewWebhookController(recorder, reconciler, transactionRepo, hub)
	paymentController := controllers.NewPaymentController(paymentRepo, commissionRepo, resellerRepo, fraudAlertRepo, reconciler, approver, disburser, mailer, hub)
	resellerController := controllers.NewResellerController(resellerRepo, paymentRepo, transactionRepo)
	productController := controllers.NewProductController(productRepo)

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Middleware
	rateLimiter := middleware.NewRateLimiter()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	// Routes
	routes.SetupRoutes(e, hub)
	routes.RegisterWebhookRoutes(e, webhookController)
	routes.RegisterResellerRoutes(e, resellerController)
	routes.RegisterAdminRoutes(e, paymentController, productController)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
