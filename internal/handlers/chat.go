package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sentinel/api/internal/eventbus"
	"github.com/sentinel/api/internal/llm"
	"github.com/sentinel/api/internal/middleware"
	"github.com/sentinel/api/internal/models"
	"github.com/sentinel/api/internal/prompts"
	"github.com/sentinel/api/internal/repository"
	"go.uber.org/zap"
)

// ChatHistoryLimit is the number of messages returned by the history endpoint
const ChatHistoryLimit = 100

// ChatHandler serves the marketing assistant conversation
type ChatHandler struct {
	chat      repository.ChatRepository
	generator llm.Generator
	events    eventbus.Publisher
	logger    *zap.Logger
}

func NewChatHandler(chat repository.ChatRepository, generator llm.Generator, events eventbus.Publisher, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, generator: generator, events: events, logger: logger}
}

// SendMessageRequest is the request body for a chat turn
type SendMessageRequest struct {
	Message string `json:"message"`
}

// ChatEvent is published for every completed chat turn
type ChatEvent struct {
	UserMessage      *models.ChatMessage `json:"user_message"`
	AssistantMessage *models.ChatMessage `json:"assistant_message"`
}

// GetHistory returns the most recent messages, oldest first
//
//	@Summary	Chat history
//	@Tags		chat
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	models.ChatMessage
//	@Router		/api/chat/history [get]
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	messages, err := h.chat.Recent(c.Request.Context(), userID, ChatHistoryLimit)
	if err != nil {
		h.logger.Error("failed to load chat history", zap.Error(err))
		middleware.InternalError(c, "failed to load chat history")
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage stores the owner's message and the assistant's answer
//
//	@Summary	Ask the assistant
//	@Tags		chat
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		SendMessageRequest	true	"Message"
//	@Success	200		{object}	models.ChatMessage
//	@Failure	400		{object}	middleware.ErrorResponse
//	@Router		/api/chat/send [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		middleware.BadRequest(c, "message is required")
		return
	}

	ctx := c.Request.Context()
	userMsg := &models.ChatMessage{UserID: userID, Role: models.ChatRoleUser, Content: req.Message}
	if err := h.chat.Append(ctx, userMsg); err != nil {
		h.logger.Error("failed to store chat message", zap.Error(err))
		middleware.InternalError(c, "failed to store message")
		return
	}

	reply := h.generator.GenerateCritical(ctx, prompts.ChatAssistant(req.Message))

	assistantMsg := &models.ChatMessage{UserID: userID, Role: models.ChatRoleAssistant, Content: reply}
	if err := h.chat.Append(ctx, assistantMsg); err != nil {
		h.logger.Error("failed to store assistant message", zap.Error(err))
		middleware.InternalError(c, "failed to store message")
		return
	}

	publish(ctx, h.events, h.logger, eventbus.SubjectChatMessage, ChatEvent{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	})

	c.JSON(http.StatusOK, assistantMsg)
}
