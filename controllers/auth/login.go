package auth

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/middleware"
	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,pwdmin"`
}

// AuthController issues and revokes dashboard tokens.
type AuthController struct {
	store store.Store
}

func NewAuthController(st store.Store) *AuthController {
	return &AuthController{store: st}
}

// Login authenticates a dashboard account and returns a signed access token.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	user, err := c.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid username or password"})
			return
		}
		log.Printf("[Auth] Error fetching user: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	if !user.IsActive {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Account is disabled, please contact an administrator"})
		return
	}

	if locked, retry := middleware.IsAccountLocked(user.ID); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: "Too many login attempts. Please try again later.",
			Data:    map[string]interface{}{"retry_after_seconds": int(retry.Seconds())},
		})
		return
	}

	if !user.ValidatePassword(req.Password) {
		middleware.RecordFailedLogin(user.ID)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid username or password"})
		return
	}
	middleware.ResetFailedLogin(user.ID)

	token, exp, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		log.Printf("[Auth] Error generating token: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to log in"})
		return
	}

	if err := c.store.UpdateLastLogin(r.Context(), user.ID, time.Now().UTC()); err != nil {
		log.Printf("[Auth] Error updating last login: %v", err)
	}

	role := models.RoleAgent
	if user.Role == models.RoleSuperAdmin {
		role = models.RoleSuperAdmin
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data: map[string]interface{}{
			"access_token":  token,
			"access_expire": exp.UTC().Format(time.RFC3339),
			"user": map[string]interface{}{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"role":     role,
			},
		},
	})
}
