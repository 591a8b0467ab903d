package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// Logout revokes the access token's jti so it is rejected for the rest
// of its lifetime.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Authorization header is required"})
		return
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))

	claims, err := utils.ValidateAccessToken(tokenStr)
	if err != nil {
		// Already invalid tokens count as logged out.
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
		return
	}

	if jti, ok := claims["jti"].(string); ok && jti != "" {
		var ttl time.Duration
		if expRaw, ok := claims["exp"].(float64); ok {
			ttl = time.Until(time.Unix(int64(expRaw), 0))
		}
		if ttl < 0 {
			ttl = 0
		}
		_ = utils.RevokeJTI(jti, ttl)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}
