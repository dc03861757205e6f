package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lottoworks/luckydraw-backend/api/routes"
	"github.com/lottoworks/luckydraw-backend/internal/config"
	"github.com/lottoworks/luckydraw-backend/internal/handlers"
	mongorepo "github.com/lottoworks/luckydraw-backend/internal/repositories/mongodb"
	"github.com/lottoworks/luckydraw-backend/internal/services"
	"github.com/lottoworks/luckydraw-backend/pkg/mongodb"
	"github.com/lottoworks/luckydraw-backend/pkg/oracle"
	"github.com/lottoworks/luckydraw-backend/pkg/paygate"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	drawRepo := mongorepo.NewDrawRepository(db)
	ticketRepo := mongorepo.NewTicketRepository(db)
	randomnessRepo := mongorepo.NewRandomnessRepository(db)
	ledgerRepo := mongorepo.NewLedgerRepository(db)
	settingsRepo := mongorepo.NewSettingsRepository(db)

	oracleClient := oracle.NewClient(cfg.Oracle.BaseURL, cfg.Oracle.APIKey, cfg.Oracle.SeedConfigID, cfg.Oracle.Mock)

	var gateway paygate.Gateway
	if cfg.Payment.Mock {
		gateway = paygate.NewMockGateway()
	} else {
		gateway = paygate.NewHTTPGateway(cfg.Payment.BaseURL, cfg.Payment.APIKey)
	}

	ticketService := services.NewTicketService(ticketRepo)
	prizeService := services.NewPrizeService(ledgerRepo, settingsRepo, gateway, cfg)
	randomnessService := services.NewRandomnessService(randomnessRepo, oracleClient, cfg)
	drawService := services.NewDrawService(drawRepo, settingsRepo, ticketService, prizeService, randomnessService, cfg)
	// the adapter calls back into the coordinator once a request is fulfilled
	randomnessService.BindCompleter(drawService)
	authService := services.NewAuthService(cfg)

	router := routes.SetupRouter(cfg, routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		Draw:   handlers.NewDrawHandler(drawService),
		Prize:  handlers.NewPrizeHandler(prizeService),
		Oracle: handlers.NewOracleHandler(randomnessService),
		Ticket: handlers.NewTicketHandler(ticketService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
