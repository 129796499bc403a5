package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/volunteer-hub-api/internal/dto"
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

type messageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	Inbox(ctx context.Context, box models.MessageBox) ([]models.Message, error)
	Sent(ctx context.Context, senderID string) ([]models.Message, error)
	MarkRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, box models.MessageBox) (int, error)
}

// MessageService handles the inbox between volunteers and administrators.
type MessageService struct {
	repo      messageStore
	profiles  profileFinder
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo messageStore, profiles profileFinder, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *MessageService {
	return &MessageService{
		repo:      repo,
		profiles:  profiles,
		stats:     stats,
		validator: newValidator(validate),
		logger:    newLogger(logger),
	}
}

func boxFor(session *models.Session) models.MessageBox {
	return models.MessageBox{ProfileID: session.ProfileID, IncludeAdmins: session.IsAdmin()}
}

// Send posts a message. Volunteers write to the administrators or answer a message addressed to them.
func (s *MessageService) Send(ctx context.Context, session *models.Session, req dto.SendMessageRequest) (*models.Message, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid message payload")
	}

	var parent *models.Message
	if req.ParentID != nil {
		found, err := s.repo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, notFoundOr(err, "parent message not found", "failed to load parent message")
		}
		parent = found
	}

	recipient := req.RecipientID
	if recipient != nil && *recipient == "" {
		recipient = nil
	}
	if recipient != nil {
		if !session.IsAdmin() && !repliesTo(parent, session.ProfileID, *recipient) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "volunteers can only write to administrators or reply to a message")
		}
		if _, err := s.profiles.FindByID(ctx, *recipient); err != nil {
			return nil, notFoundOr(err, "recipient not found", "failed to load recipient")
		}
	}

	msg := &models.Message{
		SenderID:    session.ProfileID,
		RecipientID: recipient,
		Subject:     strings.TrimSpace(req.Subject),
		Content:     req.Content,
		ParentID:    req.ParentID,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, internalError(err, "failed to send message")
	}
	if recipient == nil && s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
	return msg, nil
}

// repliesTo reports whether a reply to parent from profileID may be addressed to recipient.
func repliesTo(parent *models.Message, profileID, recipient string) bool {
	if parent == nil || parent.RecipientID == nil {
		return false
	}
	return *parent.RecipientID == profileID && parent.SenderID == recipient
}

// Inbox lists received messages. Administrators also see messages addressed to the admin team.
func (s *MessageService) Inbox(ctx context.Context, session *models.Session) ([]models.Message, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	msgs, err := s.repo.Inbox(ctx, boxFor(session))
	if err != nil {
		return nil, internalError(err, "failed to list inbox")
	}
	return msgs, nil
}

// Sent lists messages written by the caller.
func (s *MessageService) Sent(ctx context.Context, session *models.Session) ([]models.Message, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	msgs, err := s.repo.Sent(ctx, session.ProfileID)
	if err != nil {
		return nil, internalError(err, "failed to list sent messages")
	}
	return msgs, nil
}

// MarkRead flags a received message as read.
func (s *MessageService) MarkRead(ctx context.Context, session *models.Session, id string) error {
	if err := requireProfile(session); err != nil {
		return err
	}
	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "message not found", "failed to load message")
	}
	switch {
	case msg.RecipientID == nil && session.IsAdmin():
	case msg.RecipientID != nil && *msg.RecipientID == session.ProfileID:
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "message is not addressed to you")
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return notFoundOr(err, "message not found", "failed to mark message read")
	}
	if msg.RecipientID == nil && s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
	return nil
}

// UnreadCount counts unread received messages.
func (s *MessageService) UnreadCount(ctx context.Context, session *models.Session) (*dto.UnreadCountResponse, error) {
	if err := requireProfile(session); err != nil {
		return nil, err
	}
	count, err := s.repo.CountUnread(ctx, boxFor(session))
	if err != nil {
		return nil, internalError(err, "failed to count unread messages")
	}
	return &dto.UnreadCountResponse{Unread: count}, nil
}
