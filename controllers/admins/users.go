package admins

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

type CreateUserRequest struct {
	Username  string   `json:"username" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,pwdmin"`
	Role      string   `json:"role" validate:"required"`
	FirstName string   `json:"first_name,omitempty"`
	LastName  string   `json:"last_name,omitempty"`
	Skills    []string `json:"skills,omitempty"`
}

type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// UserAdminController manages dashboard accounts. Creating an agent
// account also provisions the matching agent profile.
type UserAdminController struct {
	store store.Store
}

func NewUserAdminController(st store.Store) *UserAdminController {
	return &UserAdminController{store: st}
}

// GetUsers lists all dashboard accounts without password hashes.
func (c *UserAdminController) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("[Admin] Error listing users: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to list users"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, UserResponse{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Role:      u.Role,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt,
			LastLogin: u.LastLogin,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Users",
		Data:    map[string]interface{}{"users": response, "total": len(response)},
	})
}

// CreateUser provisions a new dashboard account. Agent accounts get an
// agent profile with the same id so shift and feedback records line up.
func (c *UserAdminController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}
	if req.Role != models.RoleAgent && req.Role != models.RoleSuperAdmin {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Role must be agent or super_admin"})
		return
	}

	if _, err := c.store.GetUserByUsername(r.Context(), req.Username); err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Username already exists"})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[Admin] Error checking username: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create user"})
		return
	}

	user := &models.User{
		ID:        utils.NewID(),
		Username:  req.Username,
		Email:     req.Email,
		Role:      req.Role,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := user.HashPassword(req.Password); err != nil {
		log.Printf("[Admin] Error hashing password: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create user"})
		return
	}
	if err := c.store.CreateUser(r.Context(), user); err != nil {
		log.Printf("[Admin] Error creating user: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to create user"})
		return
	}

	if req.Role == models.RoleAgent {
		agent := &models.Agent{
			ID:               user.ID,
			Username:         req.Username,
			Email:            req.Email,
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			Status:           models.AgentOffline,
			Availability:     models.AgentUnavailable,
			Skills:           req.Skills,
			IsActive:         true,
			CreatedAt:        user.CreatedAt,
			LastStatusChange: user.CreatedAt,
		}
		if err := c.store.CreateAgent(r.Context(), agent); err != nil {
			log.Printf("[Admin] Error creating agent profile: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "User created but agent profile failed"})
			return
		}
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "User created successfully",
		Data: map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}
