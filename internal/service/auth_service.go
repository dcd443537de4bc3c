package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/soonland/nexus-gaming/internal/auth"
	"github.com/soonland/nexus-gaming/internal/bizerror"
	"github.com/soonland/nexus-gaming/internal/model"
	"github.com/soonland/nexus-gaming/internal/permission"
	"github.com/soonland/nexus-gaming/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    string       `json:"expires_at"`
	User         UserResponse `json:"user"`
}

// Capabilities tells the front office which actions to offer the current user
type Capabilities struct {
	ViewAnnouncements      bool `json:"view_announcements"`
	ManageAnnouncements    bool `json:"manage_announcements"`
	BroadcastNotifications bool `json:"broadcast_notifications"`
	ViewArticles           bool `json:"view_articles"`
	SelectArticleAuthor    bool `json:"select_article_author"`
	ReviewArticles         bool `json:"review_articles"`
	PublishArticles        bool `json:"publish_articles"`
	AssignReviewer         bool `json:"assign_reviewer"`
	ManageUsers            bool `json:"manage_users"`
}

func CapabilitiesFor(role permission.Role) Capabilities {
	return Capabilities{
		ViewAnnouncements:      permission.CanViewAnnouncements(role),
		ManageAnnouncements:    permission.CanManageAnnouncements(role),
		BroadcastNotifications: permission.CanBroadcastNotifications(role),
		ViewArticles:           permission.CanViewArticle(role),
		SelectArticleAuthor:    permission.CanSelectArticleAuthor(role),
		ReviewArticles:         permission.CanReviewArticles(role),
		PublishArticles:        permission.CanPublishArticles(role),
		AssignReviewer:         permission.CanAssignReviewer(role),
		ManageUsers:            permission.HasSufficientRole(role, permission.RoleAdmin),
	}
}

type MeResponse struct {
	User         UserResponse `json:"user"`
	Capabilities Capabilities `json:"capabilities"`
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", bizerror.ErrUnauthenticated)

// AuthService handles sign-up, sign-in and token rotation
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, p permission.Principal) (*MeResponse, error)
}

type authService struct {
	users      repository.UserRepository
	tokens     repository.RefreshTokenRepository
	tx         repository.TransactionManager
	issuer     *auth.TokenManager
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens repository.RefreshTokenRepository,
	tx repository.TransactionManager, issuer *auth.TokenManager, refreshTTL time.Duration) AuthService {
	return &authService{users: users, tokens: tokens, tx: tx, issuer: issuer, refreshTTL: refreshTTL, now: time.Now}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username already exists", bizerror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", bizerror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username: req.Username,
		Email:    email,
		Password: string(hashed),
		Role:     permission.RoleUser,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("account registered")
	return toUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, bizerror.ErrInactiveAccount
	}

	var res *TokenResponse
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := s.now()
		user.LastLoginAt = &now
		if err := s.users.Update(txCtx, user); err != nil {
			return err
		}
		var issueErr error
		res, issueErr = s.issueTokens(txCtx, user)
		return issueErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *authService) Refresh(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	var res *TokenResponse
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		stored, err := s.tokens.FindValid(txCtx, req.RefreshToken, s.now())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invalid or expired refresh token", bizerror.ErrUnauthenticated)
			}
			return err
		}

		user, err := s.users.GetByID(txCtx, stored.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: account no longer exists", bizerror.ErrUnauthenticated)
			}
			return err
		}
		if !user.IsActive {
			return bizerror.ErrInactiveAccount
		}

		// rotate: a refresh token is single use
		if err := s.tokens.Delete(txCtx, stored.Token); err != nil {
			return err
		}
		res, err = s.issueTokens(txCtx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Delete(ctx, refreshToken)
}

func (s *authService) Me(ctx context.Context, p permission.Principal) (*MeResponse, error) {
	id, err := principalID(p)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MeResponse{User: *toUserResponse(user), Capabilities: CapabilitiesFor(user.Role)}, nil
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	access, expiresAt, err := s.issuer.Issue(user.Principal())
	if err != nil {
		return nil, err
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.tokens.Create(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenResponse{
		Token:        access,
		RefreshToken: refresh.Token,
		ExpiresAt:    formatTime(expiresAt),
		User:         *toUserResponse(user),
	}, nil
}
