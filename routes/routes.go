package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/AryanSahu2805/Enterprise-Chatboard/agents"
	"github.com/AryanSahu2805/Enterprise-Chatboard/chat"
	"github.com/AryanSahu2805/Enterprise-Chatboard/controllers"
	"github.com/AryanSahu2805/Enterprise-Chatboard/controllers/admins"
	"github.com/AryanSahu2805/Enterprise-Chatboard/controllers/auth"
	"github.com/AryanSahu2805/Enterprise-Chatboard/middleware"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
)

// Deps carries the wired services the routers hand to controllers.
type Deps struct {
	Store     store.Store
	Engine    *chat.Engine
	Directory *agents.Directory
	Shifts    *agents.ShiftTracker
	Feedback  *agents.FeedbackAggregator
}

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "enterprise-chatboard-api",
	})
}

func InitRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for Docker health checks (root level)
	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// CORS - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	origins := []string{
		"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080",
	}
	if originsEnv != "" {
		parts := strings.Split(originsEnv, ",")
		for _, p := range parts {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/api").Subrouter()

	// Catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Anonymous chat endpoints get a dedicated per-IP limiter; authenticated
	// operators get per-user sliding windows with progressive penalties.
	chatLimiter := middleware.NewIPRateLimiter(60, time.Minute)
	userLimiter := middleware.NewUserRateLimiter(100, 50, 60)

	chatCtl := controllers.NewChatController(deps.Engine, deps.Store)
	agentCtl := controllers.NewAgentController(deps.Directory, deps.Shifts, deps.Feedback, deps.Store)
	analyticsCtl := controllers.NewAnalyticsController(deps.Store)
	wsCtl := controllers.NewWSController(deps.Engine)
	authCtl := auth.NewAuthController(deps.Store)

	// Public chat widget endpoints
	api.Handle("/session", chatLimiter.Middleware(http.HandlerFunc(chatCtl.StartChat))).Methods(http.MethodPost)
	api.Handle("/chat", chatLimiter.Middleware(http.HandlerFunc(chatCtl.SendMessage))).Methods(http.MethodPost)
	api.Handle("/chat/history/{session_id}", http.HandlerFunc(chatCtl.History)).Methods(http.MethodGet)
	api.Handle("/feedback", chatLimiter.Middleware(http.HandlerFunc(agentCtl.AddFeedback))).Methods(http.MethodPost)

	// Operator auth
	api.Handle("/auth/login", http.HandlerFunc(authCtl.Login)).Methods(http.MethodPost)
	api.Handle("/auth/logout", http.HandlerFunc(authCtl.Logout)).Methods(http.MethodPost)

	// Agent endpoints (authenticated operators)
	agentOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(userLimiter.Middleware(middleware.AgentAuthMiddleware(h)))
	}
	api.Handle("/agent/status", agentOnly(agentCtl.UpdateStatus)).Methods(http.MethodPost)
	api.Handle("/agent/message", agentOnly(agentCtl.SendMessage)).Methods(http.MethodPost)
	api.Handle("/agent/hours/{agent_id}", agentOnly(agentCtl.Hours)).Methods(http.MethodGet)
	api.Handle("/agent/performance/{agent_id}", agentOnly(agentCtl.Performance)).Methods(http.MethodGet)
	api.Handle("/agent/feedback/{agent_id}", agentOnly(agentCtl.AgentFeedback)).Methods(http.MethodGet)
	api.Handle("/agents/available", agentOnly(agentCtl.Available)).Methods(http.MethodGet)
	api.Handle("/agents/random", agentOnly(agentCtl.Random)).Methods(http.MethodGet)
	api.Handle("/escalations", agentOnly(agentCtl.Escalations)).Methods(http.MethodGet)
	api.Handle("/escalations/{id}/assign", agentOnly(agentCtl.Assign)).Methods(http.MethodPost)
	api.Handle("/escalations/{id}/resolve", agentOnly(agentCtl.Resolve)).Methods(http.MethodPost)
	api.Handle("/analytics", agentOnly(analyticsCtl.Daily)).Methods(http.MethodGet)

	// Admin endpoints (super admin)
	agentAdminCtl := admins.NewAgentAdminController(deps.Directory)
	userAdminCtl := admins.NewUserAdminController(deps.Store)
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(userLimiter.Middleware(middleware.AdminAuthMiddleware(h)))
	}
	api.Handle("/admin/agents", adminOnly(agentAdminCtl.Overview)).Methods(http.MethodGet)
	api.Handle("/admin/agents/{agent_id}", adminOnly(agentAdminCtl.Detail)).Methods(http.MethodGet)
	api.Handle("/admin/users", adminOnly(userAdminCtl.GetUsers)).Methods(http.MethodGet)
	api.Handle("/admin/users", adminOnly(userAdminCtl.CreateUser)).Methods(http.MethodPost)

	// Realtime chat widget transport
	r.Handle("/ws/chat", http.HandlerFunc(wsCtl.Chat)).Methods(http.MethodGet)

	return r
}
