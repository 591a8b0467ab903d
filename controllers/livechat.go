package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/AryanSahu2805/Enterprise-Chatboard/chat"
	"github.com/AryanSahu2805/Enterprise-Chatboard/models"
	"github.com/AryanSahu2805/Enterprise-Chatboard/store"
	"github.com/AryanSahu2805/Enterprise-Chatboard/utils"
)

// StartChatRequest opens a new chat session.
type StartChatRequest struct {
	UserID string `json:"user_id,omitempty"` // optional: authenticated end user
}

// StartChatResponse is returned when a session is created.
type StartChatResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// SendMessageRequest carries one inbound user message.
type SendMessageRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ChatController exposes the conversation engine over HTTP.
type ChatController struct {
	engine *chat.Engine
	store  store.Store
}

// NewChatController wires the chat endpoints.
func NewChatController(engine *chat.Engine, st store.Store) *ChatController {
	return &ChatController{engine: engine, store: st}
}

const chatWelcome = "Hello! 👋 I'm your support assistant. How can I help you today?"

// StartChat creates a session and greets the visitor.
func (c *ChatController) StartChat(w http.ResponseWriter, r *http.Request) {
	var req StartChatRequest
	// Body is optional for anonymous visitors
	if r.Body != nil && r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Invalid request body",
			})
			return
		}
	}

	var userID *string
	if strings.TrimSpace(req.UserID) != "" {
		id := strings.TrimSpace(req.UserID)
		userID = &id
	}

	sess, err := c.engine.CreateSession(r.Context(), "", userID)
	if err != nil {
		log.Printf("[LiveChat] Error creating session: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to create chat session",
		})
		return
	}

	welcome := &models.Message{
		ID:          utils.NewID(),
		SessionID:   sess.ID,
		Content:     chatWelcome,
		Sender:      models.SenderBot,
		MessageType: models.MessageText,
		Timestamp:   time.Now().UTC(),
	}
	if err := c.store.AppendMessage(r.Context(), welcome); err != nil {
		log.Printf("[LiveChat] Error saving welcome message: %v", err)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Chat session started",
		Data: StartChatResponse{
			SessionID: sess.ID,
			Status:    string(sess.Status),
			Message:   chatWelcome,
		},
	})
}

// SendMessage runs one turn of the conversation engine.
func (c *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	reply, err := c.engine.Handle(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrMissingSessionID) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: err.Error(),
			})
			return
		}
		log.Printf("[LiveChat] Chat processing error: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to process message",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Message processed",
		Data:    reply,
	})
}

// History returns all messages of a session in chronological order.
func (c *ChatController) History(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	if sessionID == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "Session ID is required",
		})
		return
	}

	sess, err := c.store.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false,
				Message: "Chat session not found",
			})
			return
		}
		log.Printf("[LiveChat] Error getting session: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to get chat session",
		})
		return
	}

	messages, err := c.store.MessagesBySession(r.Context(), sessionID, true)
	if err != nil {
		log.Printf("[LiveChat] Error getting messages: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to get messages",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Chat history",
		Data: map[string]interface{}{
			"session_id": sess.ID,
			"status":     sess.Status,
			"messages":   messages,
			"created_at": sess.StartTime,
		},
	})
}
