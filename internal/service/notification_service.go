package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/repository"
)

// Pusher delivers live events to connected clients
type Pusher interface {
	SendToUser(userID string, payload []byte)
	Broadcast(payload []byte)
}

// Event is the envelope of every message pushed over the websocket
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const EventNotification = "notification"

type NotifyInput struct {
	Kind    string
	Title   string
	Message string
	Link    string
}

type BroadcastRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Message string `json:"message" binding:"required"`
	Link    string `json:"link" binding:"omitempty,max=2048"`
}

type BroadcastResponse struct {
	Recipients int `json:"recipients"`
}

type NotificationResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

func toNotificationResponse(n *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID.String(),
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: formatTime(n.CreatedAt),
	}
}

type NotificationService interface {
	// Notify stores a notification for one user and pushes it live.
	Notify(ctx context.Context, userID uuid.UUID, in NotifyInput) error
	Broadcast(ctx context.Context, p permission.Principal, req BroadcastRequest) (*BroadcastResponse, error)
	List(ctx context.Context, p permission.Principal, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, p permission.Principal) (int64, error)
	MarkRead(ctx context.Context, p permission.Principal, id string) error
	MarkAllRead(ctx context.Context, p permission.Principal) (int64, error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	users  repository.UserRepository
	audit  repository.AuditRepository
	tx     repository.TransactionManager
	pusher Pusher
}

// NewNotificationService wires the service; pusher may be nil when no live channel runs
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository,
	audit repository.AuditRepository, tx repository.TransactionManager, pusher Pusher) NotificationService {
	return &notificationService{repo: repo, users: users, audit: audit, tx: tx, pusher: pusher}
}

func (s *notificationService) encode(n *model.Notification) []byte {
	payload, err := json.Marshal(Event{Type: EventNotification, Data: toNotificationResponse(n)})
	if err != nil {
		logrus.WithError(err).Error("failed to encode notification event")
		return nil
	}
	return payload
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, in NotifyInput) error {
	n := &model.Notification{
		UserID:  userID,
		Kind:    in.Kind,
		Title:   in.Title,
		Message: in.Message,
		Link:    in.Link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	if s.pusher != nil {
		if payload := s.encode(n); payload != nil {
			s.pusher.SendToUser(userID.String(), payload)
		}
	}
	return nil
}

func (s *notificationService) Broadcast(ctx context.Context, p permission.Principal, req BroadcastRequest) (*BroadcastResponse, error) {
	if !permission.CanBroadcastNotifications(p.Role) {
		return nil, bizerror.Forbidden("broadcasting requires the ADMIN role")
	}
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}

	var list []model.Notification
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		ids, err := s.users.ListActiveIDs(txCtx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		list = make([]model.Notification, 0, len(ids))
		for _, id := range ids {
			list = append(list, model.Notification{
				UserID:  id,
				Kind:    model.NotificationSystem,
				Title:   req.Title,
				Message: req.Message,
				Link:    req.Link,
			})
		}
		if err := s.repo.CreateBatch(txCtx, list); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionBroadcastNotification, "", req.Title,
			map[string]interface{}{"recipients": len(list)})
	})
	if err != nil {
		return nil, err
	}

	if s.pusher != nil {
		for i := range list {
			if payload := s.encode(&list[i]); payload != nil {
				s.pusher.SendToUser(list[i].UserID.String(), payload)
			}
		}
	}

	logrus.WithFields(logrus.Fields{"actor_id": p.ID, "recipients": len(list)}).Info("notification broadcast")
	return &BroadcastResponse{Recipients: len(list)}, nil
}

func (s *notificationService) List(ctx context.Context, p permission.Principal, unreadOnly bool, pageNum, limit int) ([]NotificationResponse, int64, error) {
	uid, err := principalID(p)
	if err != nil {
		return nil, 0, err
	}
	pg := page(pageNum, limit)
	list, total, err := s.repo.ListByUser(ctx, uid, unreadOnly, pg.Page, pg.Limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]NotificationResponse, 0, len(list))
	for i := range list {
		res = append(res, toNotificationResponse(&list[i]))
	}
	return res, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, p permission.Principal) (int64, error) {
	uid, err := principalID(p)
	if err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, uid)
}

func (s *notificationService) MarkRead(ctx context.Context, p permission.Principal, id string) error {
	uid, err := principalID(p)
	if err != nil {
		return err
	}
	nid, err := parseID(id, "notification id")
	if err != nil {
		return err
	}

	ok, err := s.repo.MarkRead(ctx, nid, uid)
	if err != nil {
		return err
	}
	if !ok {
		// someone else's notification looks the same as a missing one
		return bizerror.NotFound("notification")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, p permission.Principal) (int64, error) {
	uid, err := principalID(p)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, uid)
}
