package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/soathero/backend/docs"
	"github.com/soathero/backend/internal/config"
	"github.com/soathero/backend/internal/database"
	"github.com/soathero/backend/internal/handlers"
	"github.com/soathero/backend/internal/logger"
	mW "github.com/soathero/backend/internal/middleware"
	"github.com/soathero/backend/internal/services"
)

// @title SOAT Manager API
// @version 1.0
// @description Prepaid SOAT issuance backend with a shared balance ledger
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("documents.dir", "DOCUMENTS_DIR")
	viper.BindEnv("bolsa.umbral_saldo_bajo", "UMBRAL_SALDO_BAJO")

	log := logger.New()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("config file not found, using defaults")
	}

	docs.SwaggerInfo.Title = "SOAT Manager API"
	docs.SwaggerInfo.Description = "Prepaid SOAT issuance backend with a shared balance ledger"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	viper.SetDefault("documents.dir", "./documents")
	documents := services.NewDocumentService(viper.GetString("documents.dir"))

	catalog := services.NewPricingService(config.LoadPricingConfig())
	ledger := services.NewLedgerService(db)
	topups := services.NewTopUpService(db, ledger)
	issuance := services.NewIssuanceService(db, catalog, ledger)
	revision := services.NewRevisionService(db, catalog, ledger)
	stats := services.NewStatsService(db, redisClient, catalog.LowBalanceThreshold())
	qr := services.NewQRService(db, redisClient)

	topupHandler := handlers.NewTopUpHandler(topups, documents)
	soatHandler := handlers.NewSoatHandler(issuance, revision, qr, documents)
	ledgerHandler := handlers.NewLedgerHandler(ledger, stats, catalog.LowBalanceThreshold())

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(chimiddleware.RequestID)
	r.Use(mW.RequestLogger(log))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Verification-Token"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		// QR verification is used from scanned codes, no session attached.
		r.Post("/soats/verify", soatHandler.Verify)

		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Post("/recargas", topupHandler.Create)
			r.Get("/recargas", topupHandler.List)
			r.Post("/recargas/{id}/comprobante", topupHandler.AttachReceipt)
			r.Get("/recargas/{id}/comprobante", topupHandler.DownloadReceipt)

			r.Post("/soats", soatHandler.Create)
			r.Get("/soats", soatHandler.List)
			r.Get("/soats/{id}", soatHandler.Get)
			r.Put("/soats/{id}", soatHandler.Update)
			r.Get("/soats/{id}/revisiones", soatHandler.Revisions)
			r.Post("/soats/{id}/poliza", soatHandler.AttachPolicy)
			r.Get("/soats/{id}/documento/{tipo}", soatHandler.Document)
			r.Get("/soats/{id}/verify-qr", soatHandler.VerifyQR)

			r.Get("/bolsa/saldo", ledgerHandler.Balance)
			r.Get("/bolsa/movimientos", ledgerHandler.History)
			r.Get("/dashboard/stats", ledgerHandler.Stats)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
