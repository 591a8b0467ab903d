package admins

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/AryanSahu2805/Enterprise-Chatboard/agents"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// AgentAdminController exposes the supervisor views over the agent pool.
type AgentAdminController struct {
	directory *agents.Directory
}

func NewAgentAdminController(dir *agents.Directory) *AgentAdminController {
	return &AgentAdminController{directory: dir}
}

// Overview lists every active agent with today's hours and recent feedback.
func (c *AgentAdminController) Overview(w http.ResponseWriter, r *http.Request) {
	summaries, err := c.directory.Summaries(r.Context())
	if err != nil {
		log.Printf("[Admin] Error building agent overview: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get agent overview"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Agent overview",
		Data:    map[string]interface{}{"agents": summaries, "total": len(summaries)},
	})
}

// Detail returns the full analytics block for one agent: hours for
// today, the last week and month, plus recent feedback.
func (c *AgentAdminController) Detail(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agent_id"]
	analytics, err := c.directory.Analytics(r.Context(), agentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Agent not found"})
			return
		}
		log.Printf("[Admin] Error getting agent detail: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get agent detail"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Agent detail",
		Data:    analytics,
	})
}
