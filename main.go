package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lifeQuestAPI/handlers"
	"lifeQuestAPI/internal/notification"
	"lifeQuestAPI/middleware"
	"lifeQuestAPI/services"

	_ "net/http/pprof"
)

var (
	dbPool              *pgxpool.Pool
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
	userService         *services.UserService
	actionService       *services.ActionService
	logService          *services.LogService
	habitService        *services.HabitService
	kanbanService       *services.KanbanService
	energyService       *services.EnergyService
	rewardService       *services.RewardService
	weeklyService       *services.WeeklyService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to database")

	notificationService = services.NewNotificationService(dbPool)
	userService = services.NewUserService(dbPool)
	actionService = services.NewActionService(dbPool)
	logService = services.NewLogService(dbPool, notificationService)
	habitService = services.NewHabitService(dbPool, notificationService)
	kanbanService = services.NewKanbanService(dbPool, notificationService)
	energyService = services.NewEnergyService(dbPool, notificationService)
	rewardService = services.NewRewardService(dbPool, notificationService)
	weeklyService = services.NewWeeklyService(dbPool)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.Dispatcher().SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		notificationService.Dispatcher().Stop()
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	actionHandler := handlers.NewActionHandler(actionService, logService)
	habitHandler := handlers.NewHabitHandler(habitService)
	kanbanHandler := handlers.NewKanbanHandler(kanbanService)
	energyHandler := handlers.NewEnergyHandler(energyService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	statsHandler := handlers.NewStatsHandler(weeklyService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(userService, actionService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "lifeQuest-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/update-profile", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/delete-account", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/stats", userHandler.GetStats).Methods("GET")
	protected.HandleFunc("/user/reset-progress", userHandler.ResetProgress).Methods("POST")
	protected.HandleFunc("/user/clear-actions", userHandler.ClearActions).Methods("POST")
	protected.HandleFunc("/user/export", userHandler.ExportData).Methods("GET")
	protected.HandleFunc("/user/checkins", userHandler.GetCheckins).Methods("GET")
	protected.HandleFunc("/user/checkins", userHandler.UpsertCheckin).Methods("POST")

	protected.HandleFunc("/actions", actionHandler.GetActions).Methods("GET")
	protected.HandleFunc("/actions", actionHandler.CreateAction).Methods("POST")
	protected.HandleFunc("/actions/seed-defaults", actionHandler.SeedDefaults).Methods("POST")
	protected.HandleFunc("/actions/{id}", actionHandler.UpdateAction).Methods("PUT")
	protected.HandleFunc("/actions/{id}", actionHandler.DeleteAction).Methods("DELETE")

	protected.HandleFunc("/logs", actionHandler.GetLogs).Methods("GET")
	protected.HandleFunc("/logs", actionHandler.CreateLog).Methods("POST")
	protected.HandleFunc("/logs/week", actionHandler.GetWeekLogs).Methods("GET")
	protected.HandleFunc("/logs/{id}", actionHandler.DeleteLog).Methods("DELETE")

	protected.HandleFunc("/habits", habitHandler.GetHabits).Methods("GET")
	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}", habitHandler.GetHabit).Methods("GET")
	protected.HandleFunc("/habits/{id}", habitHandler.DeleteHabit).Methods("DELETE")
	protected.HandleFunc("/habits/{id}/log", habitHandler.LogHabit).Methods("POST")

	protected.HandleFunc("/kanban", kanbanHandler.GetTasks).Methods("GET")
	protected.HandleFunc("/kanban", kanbanHandler.CreateTask).Methods("POST")
	protected.HandleFunc("/kanban/{id}", kanbanHandler.UpdateTask).Methods("PATCH")
	protected.HandleFunc("/kanban/{id}", kanbanHandler.DeleteTask).Methods("DELETE")

	protected.HandleFunc("/energy/today", energyHandler.GetToday).Methods("GET")
	protected.HandleFunc("/energy/morning", energyHandler.SubmitMorningInput).Methods("POST")
	protected.HandleFunc("/energy/spend", energyHandler.Spend).Methods("POST")
	protected.HandleFunc("/energy/recover", energyHandler.Recover).Methods("POST")
	protected.HandleFunc("/energy/recovery-types", energyHandler.GetRecoveryTypes).Methods("GET")
	protected.HandleFunc("/energy/history", energyHandler.GetHistory).Methods("GET")

	protected.HandleFunc("/rewards", rewardHandler.GetRewards).Methods("GET")
	protected.HandleFunc("/rewards", rewardHandler.CreateReward).Methods("POST")
	protected.HandleFunc("/rewards/{id}/redeem", rewardHandler.Redeem).Methods("POST")
	protected.HandleFunc("/rewards/{id}", rewardHandler.DeleteReward).Methods("DELETE")

	protected.HandleFunc("/stats/weekly", statsHandler.GetWeeklyBalance).Methods("GET")
	protected.HandleFunc("/stats/daily", statsHandler.GetDailyStats).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotification).Methods("DELETE")
	protected.HandleFunc("/notifications/preferences", notificationHandler.GetPreferences).Methods("GET")
	protected.HandleFunc("/notifications/preferences", notificationHandler.UpdatePreferences).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")
	protected.HandleFunc("/notifications/register-device", notificationHandler.UnregisterDevice).Methods("DELETE")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
