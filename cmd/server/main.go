package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "jewellery-backoffice/internal/adapters/web"
	"jewellery-backoffice/internal/core"
	"jewellery-backoffice/internal/db"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}
	defer pool.Close()

	docNums := core.NewDocNumService(pool)
	services := webAdapter.Services{
		Tags:        core.NewTagService(pool),
		Products:    core.NewProductService(pool),
		Purchases:   core.NewPurchaseService(pool),
		RateCuts:    core.NewRateCutService(pool, docNums),
		Sales:       core.NewSaleService(pool),
		SaleReturns: core.NewSaleReturnService(pool),
		Receipts:    core.NewReceiptService(pool),
		Rates:       core.NewRatesService(pool),
		Repairs:     core.NewRepairService(pool),
		URD:         core.NewURDService(pool, docNums),
		Accounts:    core.NewAccountService(pool),
		Users:       core.NewUserService(pool),
		Reports:     core.NewReportService(pool),
		DocNums:     docNums,
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logrus.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(services, allowedOrigins, jwtSecret)

	logrus.Infof("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logrus.Fatalf("server: %v", err)
	}
}
