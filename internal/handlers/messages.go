package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/inbox"
	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
	"messaging-service/internal/ws"
)

// MessageHandler manages direct-message endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		hub:         hub,
		audit:       audit,
	}
}

// ListMessages returns the caller's full direct-message list, sent and
// received, in chronological order.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	userID := c.GetString("userID")
	familyID := c.GetString("familyID")

	msgs, err := h.messageRepo.ListMessagesForUser(c.Request.Context(), familyID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, msgs)
}

// ListConversations returns the caller's messages grouped per partner, most
// recently active conversation first.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	user := currentUser(c)

	msgs, err := h.messageRepo.ListMessagesForUser(c.Request.Context(), user.FamilyID, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	members, err := h.userRepo.ListFamilyMembers(c.Request.Context(), user.FamilyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load family members"})
		return
	}

	directory := inbox.NewDirectory(members, user)
	conversations := inbox.Aggregate(msgs, user.ID, directory, nil)
	if conversations == nil {
		conversations = []models.Conversation{}
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// SendMessage stores a form-encoded direct message and pushes it to both
// participants' inbox connections.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	sender := currentUser(c)

	content := strings.TrimSpace(c.PostForm("message_content"))
	recipientID := strings.TrimSpace(c.PostForm("recipient_id"))
	if content == "" || recipientID == "" {
		h.emitAudit(c, "ERROR", "message send rejected: missing recipient or content")
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Recipient and message required."})
		return
	}
	if recipientID == sender.ID {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Cannot send to self."})
		return
	}

	recipient, err := h.userRepo.GetUser(c.Request.Context(), recipientID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid recipient."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve recipient"})
		return
	}
	if recipient.FamilyID != sender.FamilyID {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid recipient."})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), models.Message{
		FamilyID:          sender.FamilyID,
		SenderID:          sender.ID,
		SenderUsername:    sender.Username,
		RecipientID:       recipient.ID,
		RecipientUsername: recipient.Username,
		Content:           content,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	observability.IncMessagesSent()
	h.hub.BroadcastMessage([]string{recipient.ID, sender.ID}, msg)
	h.emitAudit(c, "INFO", "direct message sent")

	c.JSON(http.StatusCreated, msg)
}

// MarkMessagesRead flips the read flag for the submitted ids. Only rows
// addressed to the caller that are still unread are touched.
func (h *MessageHandler) MarkMessagesRead(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		MessageIDs []string `json:"message_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid mark-read payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.MessageIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "success", "modified_count": 0})
		return
	}

	modified, err := h.messageRepo.MarkMessagesRead(c.Request.Context(), req.MessageIDs, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages read"})
		return
	}

	observability.AddMessagesMarkedRead(modified)
	if modified > 0 {
		h.hub.BroadcastRead(userID, req.MessageIDs)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "modified_count": modified})
}

// UnreadStatus reports whether the caller has any unread messages, which
// drives the inbox badge.
func (h *MessageHandler) UnreadStatus(c *gin.Context) {
	userID := c.GetString("userID")

	unread, err := h.messageRepo.HasUnreadMessages(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check unread status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": unread})
}

func (h *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func currentUser(c *gin.Context) models.User {
	if val, ok := c.Get("user"); ok {
		if user, ok := val.(models.User); ok {
			return user
		}
	}
	return models.User{ID: c.GetString("userID"), FamilyID: c.GetString("familyID")}
}
