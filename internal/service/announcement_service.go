package service

import (
	"context"
	"strings"
	"time"

	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/repository"
)

type CreateAnnouncementRequest struct {
	Message   string    `json:"message" binding:"required,max=1000"`
	Kind      string    `json:"kind" binding:"omitempty,oneof=INFO ATTENTION URGENT"`
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
	IsActive  *bool     `json:"is_active"`
}

type UpdateAnnouncementRequest struct {
	Message   *string    `json:"message" binding:"omitempty,min=1,max=1000"`
	Kind      *string    `json:"kind" binding:"omitempty,oneof=INFO ATTENTION URGENT"`
	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  *bool      `json:"is_active"`
}

type ExtendAnnouncementRequest struct {
	Days int `json:"days" binding:"required,min=1,max=365"`
}

type AnnouncementResponse struct {
	ID        string       `json:"id"`
	Message   string       `json:"message"`
	Kind      string       `json:"kind"`
	IsActive  bool         `json:"is_active"`
	Visible   bool         `json:"visible"`
	ExpiresAt string       `json:"expires_at"`
	Creator   *UserSummary `json:"creator,omitempty"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

type AnnouncementService interface {
	// List returns visible announcements, or every announcement when all is set.
	List(ctx context.Context, p permission.Principal, all bool) ([]AnnouncementResponse, error)
	Create(ctx context.Context, p permission.Principal, req CreateAnnouncementRequest) (*AnnouncementResponse, error)
	Update(ctx context.Context, p permission.Principal, id string, req UpdateAnnouncementRequest) (*AnnouncementResponse, error)
	Delete(ctx context.Context, p permission.Principal, id string) error
	Extend(ctx context.Context, p permission.Principal, id string, req ExtendAnnouncementRequest) (*AnnouncementResponse, error)
}

type announcementService struct {
	repo  repository.AnnouncementRepository
	audit repository.AuditRepository
	tx    repository.TransactionManager
	now   func() time.Time
}

func NewAnnouncementService(repo repository.AnnouncementRepository, audit repository.AuditRepository,
	tx repository.TransactionManager) AnnouncementService {
	return &announcementService{repo: repo, audit: audit, tx: tx, now: time.Now}
}

func (s *announcementService) toResponse(a *model.Announcement) *AnnouncementResponse {
	return &AnnouncementResponse{
		ID:        a.ID.String(),
		Message:   a.Message,
		Kind:      a.Kind,
		IsActive:  a.IsActive,
		Visible:   a.Visible(s.now()),
		ExpiresAt: formatTime(a.ExpiresAt),
		Creator:   toUserSummary(a.Creator),
		CreatedAt: formatTime(a.CreatedAt),
		UpdatedAt: formatTime(a.UpdatedAt),
	}
}

func canManage(p permission.Principal) error {
	if !permission.CanManageAnnouncements(p.Role) {
		return bizerror.Forbidden("managing announcements requires the SENIOR_EDITOR role")
	}
	return nil
}

func (s *announcementService) List(ctx context.Context, p permission.Principal, all bool) ([]AnnouncementResponse, error) {
	if !permission.CanViewAnnouncements(p.Role) {
		return nil, bizerror.Forbidden("announcements are reserved to staff")
	}

	var list []model.Announcement
	var err error
	if all {
		if err := canManage(p); err != nil {
			return nil, err
		}
		list, err = s.repo.ListAll(ctx)
	} else {
		list, err = s.repo.ListVisible(ctx, s.now())
	}
	if err != nil {
		return nil, err
	}

	res := make([]AnnouncementResponse, 0, len(list))
	for i := range list {
		res = append(res, *s.toResponse(&list[i]))
	}
	return res, nil
}

func (s *announcementService) Create(ctx context.Context, p permission.Principal, req CreateAnnouncementRequest) (*AnnouncementResponse, error) {
	if err := canManage(p); err != nil {
		return nil, err
	}
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}
	if !req.ExpiresAt.After(s.now()) {
		return nil, bizerror.BadParam("expires_at must be in the future")
	}

	a := &model.Announcement{
		Message:   strings.TrimSpace(req.Message),
		Kind:      req.Kind,
		IsActive:  true,
		ExpiresAt: req.ExpiresAt,
		CreatedBy: actorID,
	}
	if a.Kind == "" {
		a.Kind = model.AnnouncementInfo
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, a); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionCreateAnnouncement, a.ID.String(), "",
			map[string]interface{}{"kind": a.Kind, "expires_at": formatTime(a.ExpiresAt)})
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(a), nil
}

func (s *announcementService) Update(ctx context.Context, p permission.Principal, id string, req UpdateAnnouncementRequest) (*AnnouncementResponse, error) {
	if err := canManage(p); err != nil {
		return nil, err
	}
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}
	aid, err := parseID(id, "announcement id")
	if err != nil {
		return nil, err
	}

	var a *model.Announcement
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err = s.repo.FindByID(txCtx, aid)
		if err != nil {
			return err
		}
		if req.Message != nil {
			a.Message = strings.TrimSpace(*req.Message)
		}
		if req.Kind != nil {
			a.Kind = *req.Kind
		}
		if req.ExpiresAt != nil {
			a.ExpiresAt = *req.ExpiresAt
		}
		if req.IsActive != nil {
			a.IsActive = *req.IsActive
		}
		if err := s.repo.Update(txCtx, a); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionUpdateAnnouncement, a.ID.String(), "",
			map[string]interface{}{"is_active": a.IsActive, "expires_at": formatTime(a.ExpiresAt)})
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(a), nil
}

func (s *announcementService) Delete(ctx context.Context, p permission.Principal, id string) error {
	if err := canManage(p); err != nil {
		return err
	}
	actorID, err := principalID(p)
	if err != nil {
		return err
	}
	aid, err := parseID(id, "announcement id")
	if err != nil {
		return err
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, aid); err != nil {
			return err
		}
		if err := s.repo.Delete(txCtx, aid); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionDeleteAnnouncement, aid.String(), "", nil)
	})
}

// Extend pushes the expiry by req.Days, counted from now when the announcement already expired
func (s *announcementService) Extend(ctx context.Context, p permission.Principal, id string, req ExtendAnnouncementRequest) (*AnnouncementResponse, error) {
	if err := canManage(p); err != nil {
		return nil, err
	}
	if req.Days < 1 || req.Days > 365 {
		return nil, bizerror.BadParam("days must be between 1 and 365")
	}
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}
	aid, err := parseID(id, "announcement id")
	if err != nil {
		return nil, err
	}

	var a *model.Announcement
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err = s.repo.FindByID(txCtx, aid)
		if err != nil {
			return err
		}
		from := a.ExpiresAt
		if now := s.now(); from.Before(now) {
			from = now
		}
		a.ExpiresAt = from.AddDate(0, 0, req.Days)
		if err := s.repo.Update(txCtx, a); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionExtendAnnouncement, a.ID.String(), "",
			map[string]interface{}{"days": req.Days, "expires_at": formatTime(a.ExpiresAt)})
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(a), nil
}
