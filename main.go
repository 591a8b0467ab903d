package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AryanSahu2805/Enterprise-Chatboard/agents"
	"github.com/AryanSahu2805/Enterprise-Chatboard/chat"
	"github.com/AryanSahu2805/Enterprise-Chatboard/database"
	"github.com/AryanSahu2805/Enterprise-Chatboard/middleware"
	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/routes"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

func chatConfigFromEnv() chat.Config {
	cfg := chat.DefaultConfig()
	if s := os.Getenv("ESCALATION_THRESHOLD"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 && v <= 1 {
			cfg.EscalationThreshold = v
		}
	}
	if s := os.Getenv("CONTEXT_WINDOW"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			cfg.ContextWindow = v
		}
	}
	if s := os.Getenv("COMPLEXITY_MARKERS"); s != "" {
		var markers []string
		for _, m := range strings.Split(s, ",") {
			if m = strings.TrimSpace(m); m != "" {
				markers = append(markers, m)
			}
		}
		if len(markers) > 0 {
			cfg.ComplexityMarkers = markers
		}
	}
	return cfg
}

// seedSuperAdmin ensures at least one dashboard account exists so a fresh
// deployment can be logged into. Credentials come from env and the seed is
// skipped when the user is already present.
func seedSuperAdmin(st store.Store) {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}
	if _, err := st.GetUserByUsername(context.Background(), username); err == nil {
		return
	}
	user := &models.User{
		ID:        utils.NewID(),
		Username:  username,
		Email:     os.Getenv("ADMIN_EMAIL"),
		Role:      models.RoleSuperAdmin,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := user.HashPassword(password); err != nil {
		log.Printf("[Seed] Failed to hash admin password: %v", err)
		return
	}
	if err := st.CreateUser(context.Background(), user); err != nil {
		log.Printf("[Seed] Failed to create super admin: %v", err)
		return
	}
	log.Printf("[Seed] Created super admin account %q", username)
}

func main() {
	// Load .env if present (do not overwrite already-set environment variables).
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("Required environment variable JWT_SECRET is not set")
	}

	// STORAGE=memory runs without a database, useful for local development.
	var st store.Store
	if strings.ToLower(os.Getenv("STORAGE")) == "memory" {
		log.Println("Running with in-memory storage - data will not survive restarts")
		st = store.NewMemoryStore()
	} else {
		for _, envVar := range []string{"DB_HOST", "DB_USER", "DB_PASS", "DB_NAME"} {
			if os.Getenv(envVar) == "" {
				log.Fatalf("Required environment variable %s is not set", envVar)
			}
		}
		db, err := database.Connect()
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		gs := store.NewGormStore(db)

		// Auto-migrate only in development to avoid accidental production
		// schema changes. Production schemas are managed with reviewed
		// migrations plus an optional pre-migration backup.
		if strings.ToLower(os.Getenv("ENV")) == "development" {
			log.Println("Running in development mode - performing auto-migration")
			if err := database.RunMigrationsWithBackup(db,
				&models.User{},
				&models.ChatSession{},
				&models.Message{},
				&models.Escalation{},
				&models.Agent{},
				&models.ShiftSession{},
				&models.AgentPerformance{},
				&models.Feedback{},
			); err != nil {
				log.Fatalf("failed to migrate database: %v", err)
			}
			log.Println("Auto-migration completed successfully")
		}
		st = gs
	}

	seedSuperAdmin(st)

	// Conversation engine: rule scorer plus optional generation backend.
	scorer := chat.NewScorer(chat.DefaultRules(), time.Now().UnixNano())
	var gen chat.ResponseGenerator
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		gen = chat.NewOpenAIResponder(key, os.Getenv("OPENAI_MODEL"), 0)
		log.Println("Generation backend enabled")
	} else {
		log.Println("OPENAI_API_KEY not set - using canned responses only")
	}
	engine := chat.NewEngine(st, scorer, gen, chatConfigFromEnv())

	shifts := agents.NewShiftTracker(st)
	directory := agents.NewDirectory(st, shifts)
	feedback := agents.NewFeedbackAggregator(st)

	router := routes.InitRouter(routes.Deps{
		Store:     st,
		Engine:    engine,
		Directory: directory,
		Shifts:    shifts,
		Feedback:  feedback,
	})

	// Wrap router with global middleware in recommended order:
	// Logging -> Security headers / CORS -> Request ID -> Max Body -> Timeout -> Recovery -> Metrics -> Suspicious Activity
	handler := middleware.RequestLogMiddleware(
		middleware.SecurityHeadersMiddleware(
			middleware.RequestIDMiddleware(
				middleware.MaxBodyMiddleware(
					middleware.TimeoutMiddleware(
						middleware.RecoveryMiddleware(
							middleware.MetricsMiddleware(
								middleware.SuspiciousActivityMiddleware(router),
							),
						),
					),
				),
			),
		),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
