package middleware

import (
	"net/http"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// AdminAuthMiddleware restricts a route to super admins. It expects
// AuthMiddleware to have already populated the request context.
func AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := utils.GetUserRole(r)
		if !ok || role != models.RoleSuperAdmin {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden: Admin access required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AgentAuthMiddleware restricts a route to agents and super admins.
func AgentAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := utils.GetUserRole(r)
		if !ok || (role != models.RoleAgent && role != models.RoleSuperAdmin) {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
				Success: false,
				Message: "Forbidden: Agent access required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
