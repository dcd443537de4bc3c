package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/repository"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Avatar *string `json:"avatar" binding:"omitempty,url"`
	Bio    *string `json:"bio" binding:"omitempty,max=500"`
}

type ChangeRoleRequest struct {
	Role permission.Role `json:"role" binding:"required"`
}

type UserListFilter struct {
	Role   string
	Active *bool
	Search string
	Page   int
	Limit  int
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	Role        permission.Role `json:"role"`
	IsActive    bool            `json:"is_active"`
	Avatar      string          `json:"avatar,omitempty"`
	Bio         string          `json:"bio,omitempty"`
	LastLoginAt *string         `json:"last_login_at,omitempty"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

func toUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		LastLoginAt: formatTimePtr(u.LastLoginAt),
		CreatedAt:   formatTime(u.CreatedAt),
		UpdatedAt:   formatTime(u.UpdatedAt),
	}
}

// UserService manages accounts from the administration screens
type UserService interface {
	ListUsers(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error)
	GetUser(ctx context.Context, p permission.Principal, id string) (*UserResponse, error)
	UpdateProfile(ctx context.Context, p permission.Principal, req UpdateProfileRequest) (*UserResponse, error)
	ToggleStatus(ctx context.Context, p permission.Principal, id string) (*UserResponse, error)
	ChangeRole(ctx context.Context, p permission.Principal, id string, req ChangeRoleRequest) (*UserResponse, error)
	// AccountState returns the current role and activity of an account.
	// Results are cached for a short while and dropped on every change.
	AccountState(ctx context.Context, userID string) (permission.Role, bool, error)
}

type accountState struct {
	role   permission.Role
	active bool
}

type userService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	audit  repository.AuditRepository
	tx     repository.TransactionManager
	states *cache.Cache
}

// NewUserService returns a new instance of UserService
func NewUserService(users repository.UserRepository, tokens repository.RefreshTokenRepository,
	audit repository.AuditRepository, tx repository.TransactionManager, stateTTL time.Duration) UserService {
	return &userService{
		users:  users,
		tokens: tokens,
		audit:  audit,
		tx:     tx,
		states: cache.New(stateTTL, 2*stateTTL),
	}
}

func (s *userService) ListUsers(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	f := repository.UserFilter{Active: filter.Active, Search: filter.Search}
	if filter.Role != "" {
		role, err := permission.ParseRole(filter.Role)
		if err != nil {
			return nil, 0, bizerror.BadParam("%v", err)
		}
		f.Role = role
	}

	pg := page(filter.Page, filter.Limit)
	users, total, err := s.users.List(ctx, f, pg.Page, pg.Limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, *toUserResponse(&users[i]))
	}
	return res, total, nil
}

func (s *userService) GetUser(ctx context.Context, p permission.Principal, id string) (*UserResponse, error) {
	uid, err := parseID(id, "user id")
	if err != nil {
		return nil, err
	}
	if p.ID != uid.String() && !permission.HasSufficientRole(p.Role, permission.RoleAdmin) {
		return nil, bizerror.Forbidden("cannot view another account")
	}

	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, p permission.Principal, req UpdateProfileRequest) (*UserResponse, error) {
	uid, err := principalID(p)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) ToggleStatus(ctx context.Context, p permission.Principal, id string) (*UserResponse, error) {
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}
	uid, err := parseID(id, "user id")
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err = s.users.GetByIDForUpdate(txCtx, uid)
		if err != nil {
			return err
		}
		if !permission.CanToggleUserStatus(p, user.Principal()) {
			return bizerror.Forbidden("cannot change the status of this account")
		}

		user.IsActive = !user.IsActive
		if err := s.users.Update(txCtx, user); err != nil {
			return err
		}
		if !user.IsActive {
			// a deactivated account keeps no session alive
			if err := s.tokens.DeleteByUser(txCtx, user.ID); err != nil {
				return err
			}
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionToggleUserStatus, user.ID.String(), user.Username,
			map[string]interface{}{"is_active": user.IsActive})
	})
	if err != nil {
		return nil, err
	}

	s.states.Delete(user.ID.String())
	logrus.WithFields(logrus.Fields{"actor_id": p.ID, "user_id": user.ID, "is_active": user.IsActive}).
		Info("account status changed")
	return toUserResponse(user), nil
}

func (s *userService) ChangeRole(ctx context.Context, p permission.Principal, id string, req ChangeRoleRequest) (*UserResponse, error) {
	actorID, err := principalID(p)
	if err != nil {
		return nil, err
	}
	uid, err := parseID(id, "user id")
	if err != nil {
		return nil, err
	}
	newRole, err := permission.ParseRole(string(req.Role))
	if err != nil {
		return nil, bizerror.BadParam("%v", err)
	}

	var user *model.User
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		user, err = s.users.GetByIDForUpdate(txCtx, uid)
		if err != nil {
			return err
		}
		if !permission.CanChangeUserRole(p, user.Principal(), newRole) {
			return bizerror.Forbidden("cannot grant role %s to this account", newRole)
		}

		previous := user.Role
		user.Role = newRole
		if err := s.users.Update(txCtx, user); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, actorID, model.ActionChangeUserRole, user.ID.String(), user.Username,
			map[string]interface{}{"from": previous, "to": newRole})
	})
	if err != nil {
		return nil, err
	}

	s.states.Delete(user.ID.String())
	return toUserResponse(user), nil
}

func (s *userService) AccountState(ctx context.Context, userID string) (permission.Role, bool, error) {
	if cached, ok := s.states.Get(userID); ok {
		st := cached.(accountState)
		return st.role, st.active, nil
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return "", false, fmt.Errorf("%w: malformed subject", bizerror.ErrUnauthenticated)
	}
	user, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, fmt.Errorf("%w: account no longer exists", bizerror.ErrUnauthenticated)
		}
		return "", false, err
	}

	s.states.SetDefault(userID, accountState{role: user.Role, active: user.IsActive})
	return user.Role, user.IsActive, nil
}
