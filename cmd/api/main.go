package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/fluxolab/fluxo-api/internal/config"
	"github.com/fluxolab/fluxo-api/internal/database"
	"github.com/fluxolab/fluxo-api/internal/handlers"
	"github.com/fluxolab/fluxo-api/internal/middleware"
	"github.com/fluxolab/fluxo-api/internal/services"
	"github.com/fluxolab/fluxo-api/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	pool, err := database.Connect(context.Background(), cfg.DatabaseURL, int32(cfg.DBMaxConnections))
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	transactionRepo := database.NewTransactionRepository(pool)
	billRepo := database.NewBillRepository(pool)
	categoryRepo := database.NewCategoryRepository(pool)
	uploadRepo := database.NewUploadRepository(pool)

	locale := services.Locale{
		DefaultCurrency:        cfg.DefaultCurrency,
		DayFirstDates:          cfg.DayFirstDates,
		DecimalComma:           cfg.DecimalComma,
		DescriptionPlaceholder: cfg.DescriptionPlaceholder,
	}
	parser := services.NewStatementParser(locale)
	validator := services.NewFileValidator(cfg.MaxUploadBytes)

	// The S3 archive is optional outside production: without it the direct
	// multipart parse endpoint still works.
	var archive handlers.StatementArchive
	if cfg.S3Bucket != "" {
		store, err := services.NewStatementStore(cfg.S3Bucket, cfg.S3Region, cfg.AWSEndpoint)
		if err != nil {
			log.Fatalf("failed to initialize statement store: %v", err)
		}
		archive = store
		log.Println("statement archive initialized")
	}

	importHandler := handlers.NewImportHandler(parser, validator, archive, transactionRepo, uploadRepo, cfg.DefaultCurrency)
	dashboardHandler := handlers.NewDashboardHandler(transactionRepo, billRepo, nil)
	transactionHandler := handlers.NewTransactionHandler(transactionRepo, cfg.DefaultCurrency)
	billHandler := handlers.NewBillHandler(billRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)

	app := fiber.New(fiber.Config{
		AppName:      "fluxo API v1.0",
		BodyLimit:    int(cfg.MaxUploadBytes) + 1024*1024,
		ErrorHandler: utils.ErrorHandler,
	})

	app.Use(middleware.CORS(cfg.CORSOrigins))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "fluxo-api",
		})
	})

	v1 := app.Group("/v1")
	protected := v1.Group("", middleware.ClerkAuth(cfg.ClerkSecretKey))

	protected.Post("/import/parse", importHandler.ParseStatement)
	protected.Post("/import/confirm", importHandler.ConfirmImport)
	protected.Get("/import/presigned-url", importHandler.GetPresignedURL)
	protected.Post("/import/process", importHandler.ProcessUpload)
	protected.Get("/import/history", importHandler.GetUploadHistory)

	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)

	protected.Get("/transactions", transactionHandler.GetTransactions)
	protected.Post("/transactions", transactionHandler.CreateTransaction)
	protected.Put("/transactions/:id", transactionHandler.UpdateTransaction)
	protected.Delete("/transactions/:id", transactionHandler.DeleteTransaction)

	protected.Get("/bills", billHandler.GetBills)
	protected.Post("/bills", billHandler.CreateBill)
	protected.Put("/bills/:id/pay", billHandler.MarkBillPaid)

	protected.Get("/categories", categoryHandler.GetCategories)
	protected.Post("/categories", categoryHandler.CreateCategory)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("fluxo API listening on %s", addr)
	log.Fatal(app.Listen(addr))
}
