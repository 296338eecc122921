package main

import (
	"log"
	"os"
	"strconv"

	_ "otka-backend/api/swagger" // swagger docs
	"otka-backend/internal/database"
	"otka-backend/internal/handler"
	"otka-backend/internal/mailer"
	"otka-backend/internal/middleware"
	"otka-backend/internal/pdf"
	"otka-backend/internal/repository"
	"otka-backend/internal/service"
	"otka-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           OTKA Furniture Backend API
// @version         1.0
// @description     Backend for the OTKA furniture store: catalog, orders, partners and proforma invoicing.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// SMTP configuration (optional, email sending fails gracefully without it)
	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if smtpPort == 0 {
		smtpPort = 587
	}
	mailSender := mailer.NewSMTPSender(mailer.Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     smtpPort,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		FromName: os.Getenv("SMTP_FROM_NAME"),
	})

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	taxRateRepo := repository.NewTaxRateRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	productRepo := repository.NewProductRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	proformaRepo := repository.NewProformaRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo)
	taxService := service.NewTaxRateService(taxRateRepo, auditRepo, txManager)
	settingsService := service.NewSettingsService(settingsRepo, auditRepo, txManager)
	catalogService := service.NewCatalogService(categoryRepo, brandRepo)
	productService := service.NewProductService(productRepo, taxRateRepo, auditRepo)
	partnerService := service.NewPartnerService(partnerRepo)
	orderService := service.NewOrderService(orderRepo, partnerRepo, auditRepo, txManager, wsHub)
	commissionService := service.NewCommissionService(orderRepo)
	auditService := service.NewAuditService(auditRepo)
	proformaService := service.NewProformaService(
		proformaRepo,
		taxRateRepo,
		settingsRepo,
		productRepo,
		auditRepo,
		txManager,
		pdf.NewRenderer(),
		mailSender,
		wsHub,
	)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	taxHandler := handler.NewTaxHandler(taxService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	productHandler := handler.NewProductHandler(productService)
	partnerHandler := handler.NewPartnerHandler(partnerService)
	orderHandler := handler.NewOrderHandler(orderService, commissionService)
	proformaHandler := handler.NewProformaHandler(proformaService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	taxHandler.RegisterRoutes(root)
	settingsHandler.RegisterRoutes(root)
	catalogHandler.RegisterRoutes(root)
	productHandler.RegisterRoutes(root)
	partnerHandler.RegisterRoutes(root)
	orderHandler.RegisterRoutes(root)
	proformaHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
