package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AryanSahu2805/Enterprise-Chatboard/agents"
	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// UpdateStatusRequest changes an agent's status and availability.
type UpdateStatusRequest struct {
	Status       string `json:"status" validate:"required"`
	Availability string `json:"availability" validate:"required"`
	Reason       string `json:"reason,omitempty"`
}

// AssignRequest hands an escalation to an agent.
type AssignRequest struct {
	AgentID string `json:"agent_id" validate:"required"`
}

// AgentMessageRequest is a human reply into an escalated session.
type AgentMessageRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// FeedbackRequest records a customer rating for an agent.
type FeedbackRequest struct {
	SessionID    string `json:"session_id" validate:"required"`
	AgentID      string `json:"agent_id" validate:"required"`
	CustomerID   string `json:"customer_id,omitempty"`
	Rating       int    `json:"rating" validate:"rating"`
	Comment      string `json:"comment" validate:"required"`
	FeedbackType string `json:"feedback_type,omitempty"`
}

// AgentController exposes the agent directory, shift accounting and
// feedback over HTTP.
type AgentController struct {
	directory *agents.Directory
	shifts    *agents.ShiftTracker
	feedback  *agents.FeedbackAggregator
	store     store.Store
}

// NewAgentController wires the agent-facing endpoints.
func NewAgentController(dir *agents.Directory, shifts *agents.ShiftTracker, fb *agents.FeedbackAggregator, st store.Store) *AgentController {
	return &AgentController{directory: dir, shifts: shifts, feedback: fb, store: st}
}

// UpdateStatus sets the authenticated agent's status and availability,
// opening or closing a shift as a side effect.
func (c *AgentController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	agentID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	status, ok := models.ParseAgentStatus(req.Status)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid status value"})
		return
	}
	availability, ok := models.ParseAgentAvailability(req.Availability)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid availability value"})
		return
	}

	if err := c.directory.SetStatus(r.Context(), agentID, status, availability, req.Reason); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Agent not found"})
			return
		}
		log.Printf("[Agents] Error updating agent status: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update status"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Status updated successfully"})
}

// Available lists agents currently taking customer queries.
func (c *AgentController) Available(w http.ResponseWriter, r *http.Request) {
	list, err := c.directory.ListAvailable(r.Context())
	if err != nil {
		log.Printf("[Agents] Error getting available agents: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to list agents"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Available agents",
		Data:    map[string]interface{}{"agents": list},
	})
}

// Random picks an available agent uniformly at random. An empty pool is a
// 404 the caller may retry.
func (c *AgentController) Random(w http.ResponseWriter, r *http.Request) {
	agent, err := c.directory.PickRandom(r.Context())
	if err != nil {
		if errors.Is(err, agents.ErrNoAgentsAvailable) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "No agents available"})
			return
		}
		log.Printf("[Agents] Error getting random agent: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to pick agent"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Agent selected",
		Data: map[string]interface{}{
			"agent_id": agent.ID,
			"name":     agent.FirstName + " " + agent.LastName,
			"skills":   agent.Skills,
		},
	})
}

// Hours reports today's worked hours and, when start_date/end_date query
// params are given, the range total.
func (c *AgentController) Hours(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agent_id"]
	today := agents.DateBucket(time.Now().UTC())

	todayHours, err := c.shifts.HoursOn(r.Context(), agentID, today)
	if err != nil {
		log.Printf("[Agents] Error getting agent hours: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get hours"})
		return
	}

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	var rangeHours float64
	if startDate != "" && endDate != "" {
		rangeHours, err = c.shifts.HoursInRange(r.Context(), agentID, startDate, endDate)
		if err != nil {
			log.Printf("[Agents] Error getting agent hours range: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get hours"})
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Agent hours",
		Data: map[string]interface{}{
			"agent_id":    agentID,
			"today_hours": utils.RoundFloat(todayHours, 2),
			"range_hours": utils.RoundFloat(rangeHours, 2),
			"start_date":  startDate,
			"end_date":    endDate,
		},
	})
}

// Performance lists the date-bucketed rollups for an agent. Defaults to
// the last 30 days.
func (c *AgentController) Performance(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agent_id"]
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	if startDate == "" || endDate == "" {
		now := time.Now().UTC()
		endDate = agents.DateBucket(now)
		startDate = agents.DateBucket(now.AddDate(0, 0, -30))
	}

	perf, err := c.store.PerformanceInRange(r.Context(), agentID, startDate, endDate)
	if err != nil {
		log.Printf("[Agents] Error getting agent performance: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get performance"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Agent performance",
		Data: map[string]interface{}{
			"agent_id":    agentID,
			"start_date":  startDate,
			"end_date":    endDate,
			"performance": perf,
		},
	})
}

// Escalations lists open and in-progress escalations for the agent queue.
func (c *AgentController) Escalations(w http.ResponseWriter, r *http.Request) {
	list, err := c.store.ListOpenEscalations(r.Context())
	if err != nil {
		log.Printf("[Agents] Error listing escalations: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to list escalations"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Open escalations",
		Data:    map[string]interface{}{"escalations": list, "total_issues": len(list)},
	})
}

// Assign hands an escalation to an agent and advances it to in_progress.
func (c *AgentController) Assign(w http.ResponseWriter, r *http.Request) {
	escalationID := mux.Vars(r)["id"]

	var req AssignRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	if err := c.directory.Assign(r.Context(), escalationID, req.AgentID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Escalation or agent not found"})
		case errors.Is(err, agents.ErrInvalidTransition):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Escalation already handled"})
		default:
			log.Printf("[Agents] Error assigning escalation: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to assign escalation"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Escalation assigned"})
}

// Resolve closes out an escalation and its session.
func (c *AgentController) Resolve(w http.ResponseWriter, r *http.Request) {
	escalationID := mux.Vars(r)["id"]
	if err := c.directory.Resolve(r.Context(), escalationID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Escalation not found"})
		case errors.Is(err, agents.ErrInvalidTransition):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Escalation already resolved"})
		default:
			log.Printf("[Agents] Error resolving escalation: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to resolve escalation"})
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Escalation resolved"})
}

// SendMessage stores a human agent reply into an escalated session.
func (c *AgentController) SendMessage(w http.ResponseWriter, r *http.Request) {
	agentID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req AgentMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	if _, err := c.store.GetSession(r.Context(), req.SessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Chat session not found"})
			return
		}
		log.Printf("[Agents] Error getting session: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get session"})
		return
	}

	msg := &models.Message{
		ID:          utils.NewID(),
		SessionID:   req.SessionID,
		Content:     req.Message,
		Sender:      "agent_" + agentID,
		MessageType: models.MessageText,
		Timestamp:   time.Now().UTC(),
	}
	if err := c.store.AppendMessage(r.Context(), msg); err != nil {
		log.Printf("[Agents] Error saving agent message: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to save message"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Message sent", Data: msg})
}

// AddFeedback records a customer rating and refreshes the agent average.
func (c *AgentController) AddFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		return
	}

	fb := &models.Feedback{
		SessionID:    req.SessionID,
		AgentID:      req.AgentID,
		CustomerID:   req.CustomerID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		FeedbackType: req.FeedbackType,
	}
	if err := c.feedback.Record(r.Context(), fb); err != nil {
		switch {
		case errors.Is(err, agents.ErrInvalidRating):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
		case errors.Is(err, store.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Agent not found"})
		default:
			log.Printf("[Agents] Error adding feedback: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to submit feedback"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Feedback submitted successfully",
		Data:    map[string]interface{}{"feedback_id": fb.ID},
	})
}

// AgentFeedback lists recent feedback for an agent.
func (c *AgentController) AgentFeedback(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agent_id"]
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n := atoiDefault(q, 50); n > 0 {
			limit = n
		}
	}
	list, err := c.feedback.ByAgent(r.Context(), agentID, limit)
	if err != nil {
		log.Printf("[Agents] Error getting agent feedback: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to get feedback"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Agent feedback",
		Data:    map[string]interface{}{"feedback": list},
	})
}
