package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/trade-cost-backoffice/internal/config"
	"github.com/anyulbade/trade-cost-backoffice/internal/database"
	"github.com/anyulbade/trade-cost-backoffice/internal/handler"
	"github.com/anyulbade/trade-cost-backoffice/internal/lookup"
	"github.com/anyulbade/trade-cost-backoffice/internal/middleware"
	"github.com/anyulbade/trade-cost-backoffice/internal/pricing"
	"github.com/anyulbade/trade-cost-backoffice/internal/repository"
	"github.com/anyulbade/trade-cost-backoffice/internal/service"
	"github.com/anyulbade/trade-cost-backoffice/internal/templates"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)
	database.MigrationsDir = cfg.MigrationsDir

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		if err := database.SeedData(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("failed to seed data")
		}
	} else {
		version, dirty, err := database.SchemaVersion(cfg.DatabaseURL())
		if err != nil {
			log.Warn().Err(err).Msg("could not read schema version")
		} else {
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("auto-migrate disabled, using existing schema")
		}
	}

	if cfg.EdgeFunctionsKey == "" {
		log.Warn().Str("url", cfg.EdgeFunctionsURL).Msg("EDGE_FUNCTIONS_KEY not set, lookups are unauthenticated")
	}
	client := lookup.NewClient(cfg.EdgeFunctionsURL, cfg.EdgeFunctionsKey, cfg.LookupTimeout)

	rateRepo := repository.NewExchangeRateRepository(pool)
	rates := service.NewRateService(rateRepo, client, cfg.DefaultUSDRate, cfg.DefaultCNYRate)

	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()
	go rates.RunDailySync(syncCtx, cfg.RateSyncInterval)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	healthHandler := handler.NewHealthHandler(pool, rates)
	router.GET("/health", healthHandler.Health)

	handler.SetupSwagger(router, cfg.SwaggerSpec)
	if err := setupAPIRoutes(router, pool, client, rates, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: the change stream holds its response open.
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopSync()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func setupAPIRoutes(router *gin.Engine, pool *pgxpool.Pool, client *lookup.Client, rates *service.RateService, cfg *config.Config) error {
	quoteRepo := repository.NewQuoteRepository(pool)
	engine := pricing.NewEngine(cfg.Pricing())

	quoteService := service.NewQuoteService(quoteRepo, rates, engine)
	tariffService := service.NewTariffService(client, client, quoteRepo, quoteService, cfg.DefaultTariffRate)
	calculatorService := service.NewCalculatorService(rates, tariffService, engine, cfg.DefaultTariffRate, cfg.CertificateOfOriginCost)
	sheetService, err := service.NewQuoteSheetService(quoteRepo, templates.QuoteSheet)
	if err != nil {
		return err
	}

	handler.RegisterRoutes(router.Group("/api/v1"),
		handler.NewCalculatorHandler(calculatorService),
		handler.NewReferenceHandler(rates, tariffService),
		handler.NewQuoteHandler(quoteService, tariffService, sheetService),
		handler.NewPipelineHandler(service.NewPipelineService(repository.NewPipelineRepository(pool))),
	)
	return nil
}
