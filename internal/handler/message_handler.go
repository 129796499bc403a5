package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	"github.com/noah-isme/volunteer-hub-api/pkg/response"
)

type messageService interface {
	Send(ctx context.Context, session *models.Session, req dto.SendMessageRequest) (*models.Message, error)
	Inbox(ctx context.Context, session *models.Session) ([]models.Message, error)
	Sent(ctx context.Context, session *models.Session) ([]models.Message, error)
	MarkRead(ctx context.Context, session *models.Session, id string) error
	UnreadCount(ctx context.Context, session *models.Session) (*dto.UnreadCountResponse, error)
}

// MessageHandler serves the internal inbox.
type MessageHandler struct {
	service messageService
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(svc messageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// Inbox godoc
// @Summary Received messages
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	msgs, err := h.service.Inbox(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, msgs, nil)
}

// Sent godoc
// @Summary Sent messages
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/sent [get]
func (h *MessageHandler) Sent(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	msgs, err := h.service.Sent(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, msgs, nil)
}

// Send godoc
// @Summary Send a message
// @Description Omit recipientId to write to the administrators.
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body dto.SendMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindJSON(c, &req, "invalid message payload") {
		return
	}
	msg, err := h.service.Send(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// MarkRead godoc
// @Summary Mark a message read
// @Tags Messages
// @Param id path string true "Message ID"
// @Success 204
// @Router /messages/{id}/read [patch]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnreadCount godoc
// @Summary Unread message count
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	res, err := h.service.UnreadCount(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
