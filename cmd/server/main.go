package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/vistara-apps/healthsync/internal/config"
	"github.com/vistara-apps/healthsync/internal/database"
	"github.com/vistara-apps/healthsync/internal/handlers"
	"github.com/vistara-apps/healthsync/internal/insights"
	"github.com/vistara-apps/healthsync/internal/jobs"
	"github.com/vistara-apps/healthsync/internal/payment"
	"github.com/vistara-apps/healthsync/internal/repository"
	cronjobs "github.com/vistara-apps/healthsync/internal/scheduler"
	"github.com/vistara-apps/healthsync/internal/services"
	"github.com/vistara-apps/healthsync/pkg/logger"
	"github.com/vistara-apps/healthsync/pkg/middleware"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	symptomRepo := repository.NewSymptomLogRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// --- External collaborators ---
	paymentProvider := payment.NewSimulatedProvider(cfg.PaymentDelay)
	var paymentVerifier payment.Verifier = payment.StubVerifier{}
	if cfg.ChainRPCURL != "" {
		chainVerifier, err := payment.NewChainVerifier(cfg.ChainRPCURL)
		if err != nil {
			log.Fatalf("Chain verifier error: %v", err)
		}
		paymentVerifier = chainVerifier
	}
	summarizer := insights.NewClient(cfg.InsightsBaseURL, cfg.InsightsAPIKey, cfg.InsightsModel)

	// --- Live alert stream ---
	alertHub := handlers.NewAlertHub(cfg.JWTSecret)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	contentService := services.NewContentService(contentRepo)
	symptomService := services.NewSymptomService(symptomRepo)
	alertService := services.NewAlertService(alertRepo, alertHub)
	paymentService := services.NewPaymentService(userRepo, paymentProvider, paymentVerifier, cfg.PaymentTimeout)
	insightsService := services.NewInsightsService(symptomRepo, summarizer)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	catalogHandler := handlers.NewCatalogHandler()
	contentHandler := handlers.NewContentHandler(contentService, userService)
	symptomHandler := handlers.NewSymptomLogHandler(symptomService)
	alertHandler := handlers.NewAlertHandler(alertService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	insightsHandler := handlers.NewInsightsHandler(insightsService, userService)

	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/verify", userHandler.VerifyEmailHandler).Methods("GET")

	// Catalogs used by onboarding and the symptom logger
	router.HandleFunc("/conditions", catalogHandler.GetConditionsHandler).Methods("GET")
	router.HandleFunc("/logger/options", catalogHandler.GetLoggerOptionsHandler).Methods("GET")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me/conditions", userHandler.UpdateConditionsHandler).Methods("PUT")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Content feed
	contentRoutes := router.PathPrefix("/content").Subrouter()
	contentRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	contentRoutes.HandleFunc("/feed", contentHandler.GetFeedHandler).Methods("GET")
	contentRoutes.HandleFunc("/{id}", contentHandler.GetContentHandler).Methods("GET")

	// Symptom diary
	logRoutes := router.PathPrefix("/logs").Subrouter()
	logRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	logRoutes.HandleFunc("", symptomHandler.CreateLogHandler).Methods("POST")
	logRoutes.HandleFunc("", symptomHandler.GetLogsHandler).Methods("GET")

	// Trend alerts
	alertRoutes := router.PathPrefix("/alerts").Subrouter()
	alertRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	alertRoutes.HandleFunc("", alertHandler.GetAlertsHandler).Methods("GET")
	alertRoutes.HandleFunc("/{id}/read", alertHandler.MarkAsReadHandler).Methods("POST")
	alertRoutes.HandleFunc("/{id}", alertHandler.DismissAlertHandler).Methods("DELETE")

	// Premium upgrade flow
	paymentRoutes := router.PathPrefix("/payments").Subrouter()
	paymentRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	paymentRoutes.Use(middleware.RateLimitMiddleware(1, 5))
	paymentRoutes.HandleFunc("", paymentHandler.AttemptPaymentHandler).Methods("POST")
	paymentRoutes.HandleFunc("/status", paymentHandler.PaymentStatusHandler).Methods("GET")
	paymentRoutes.HandleFunc("/cancel", paymentHandler.CancelPaymentHandler).Methods("POST")

	// Insights
	insightsRoutes := router.PathPrefix("/insights").Subrouter()
	insightsRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	insightsRoutes.HandleFunc("/patterns", insightsHandler.GetPatternsHandler).Methods("GET")
	insightsRoutes.HandleFunc("/recommendations", insightsHandler.GetRecommendationsHandler).Methods("GET")
	insightsRoutes.HandleFunc("/summary", insightsHandler.SummarizeTrendHandler).Methods("POST")

	// Live alert stream (token in query string)
	router.HandleFunc("/ws/alerts", alertHub.AlertStreamHandler)

	// Admin / ingestion routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")
	adminRoutes.HandleFunc("/content", contentHandler.CreateContentHandler).Methods("POST")
	adminRoutes.HandleFunc("/alerts", alertHandler.CreateAlertHandler).Methods("POST")

	router.Use(middleware.LoggingMiddleware)

	// Hourly trend-alert ingestion
	if cfg.TrendScanEnabled {
		scanner := jobs.NewTrendScanner(userRepo, contentRepo, alertRepo, alertService)
		cronjobs.StartTrendCronJobs(scanner)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
