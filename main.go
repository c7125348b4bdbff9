package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/a2n2k3p4/paysoncheckout-backend/capture"
	"github.com/a2n2k3p4/paysoncheckout-backend/checkout"
	"github.com/a2n2k3p4/paysoncheckout-backend/config"
	"github.com/a2n2k3p4/paysoncheckout-backend/handlers"
	"github.com/a2n2k3p4/paysoncheckout-backend/logging"
	"github.com/a2n2k3p4/paysoncheckout-backend/metrics"
	"github.com/a2n2k3p4/paysoncheckout-backend/payson"
	"github.com/a2n2k3p4/paysoncheckout-backend/store"
)

func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel)

	// Database connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		fatal(log, "failed to connect to database", err)
	}
	if err := store.Migrate(db); err != nil {
		fatal(log, "failed to migrate database", err)
	}
	st := store.New(db)

	// Gateway settings are read once; restart to pick up changes.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	settings, err := st.LoadSettings(ctx, cfg.Seed)
	cancel()
	if err != nil {
		fatal(log, "failed to load gateway settings", err)
	}
	if settings.Debug {
		log = logging.New(os.Stdout, "debug")
	}

	// Payson client setup
	client, err := payson.NewClient(settings.MerchantID, settings.APIKey, settings.TestMode)
	if err != nil {
		fatal(log, "failed to create Payson client", err)
	}
	if cfg.PaysonEndpoint != "" {
		client.WithEndpoint(cfg.PaysonEndpoint)
	}

	sessions := checkout.NewSessions(st, client, settings, cfg.MerchantURIs(), log)
	h := &handlers.GatewayHandler{
		Store:    st,
		Renderer: checkout.NewRenderer(settings, st, sessions, log),
		Capture:  capture.NewService(st, client, settings, log),
		Client:   client,
		Settings: settings,
		Metrics:  metrics.New(),
		Log:      log,
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, POST, OPTIONS",
		AllowHeaders: "Content-Type, Authorization, X-Trace-ID",
	}))
	h.Register(app)

	log.Info("server starting",
		slog.String("port", cfg.Port),
		slog.Bool("enabled", settings.Enabled),
		slog.Bool("order_management", settings.OrderManagement),
		slog.String("payson_endpoint", client.Endpoint()))
	if err := app.Listen(":" + cfg.Port); err != nil {
		fatal(log, "server stopped", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, slog.String(logging.Error, err.Error()))
	os.Exit(1)
}
