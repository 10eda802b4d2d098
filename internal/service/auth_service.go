package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error
}

type sessionRepository interface {
	Create(ctx context.Context, session *models.AdminSession) error
	FindByID(ctx context.Context, id string) (*models.AdminSession, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuthConfig defines configuration for session tokens.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService is the session gate: it signs admins in and out and resolves
// session tokens to identities.
type AuthService struct {
	validated
	users    authUserRepository
	sessions sessionRepository
	activity *ActivityService
	metrics  *MetricsService
	logger   *zap.Logger
	config   AuthConfig
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, sessions sessionRepository, activity *ActivityService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Expiration <= 0 {
		config.Expiration = 12 * time.Hour
	}
	return &AuthService{
		validated: newValidated(validate),
		users:     users,
		sessions:  sessions,
		activity:  activity,
		metrics:   metrics,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// Login verifies credentials and opens a session. Unknown usernames, wrong
// passwords and inactive accounts all yield the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.loginFailed(req.Username, "unknown user")
		}
		return nil, storeError(s.logger, "find user for login", err)
	}
	if !user.IsActive() {
		return nil, s.loginFailed(req.Username, "inactive account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.loginFailed(req.Username, "password mismatch")
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	if n, err := s.sessions.DeleteExpired(ctx, now); err != nil {
		s.logger.Warn("failed to prune expired sessions", zap.Error(err))
	} else if n > 0 {
		s.logger.Debug("pruned expired sessions", zap.Int64("count", n))
	}

	session := &models.AdminSession{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.Expiration),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, storeError(s.logger, "create session", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	s.metrics.RecordLogin(true)
	s.activity.Record(ctx, user.Username, models.ActivityLogin, user.Username+" logged in")
	return &models.LoginResult{Token: token, Username: user.Username, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate resolves a session token. Tokens whose session was revoked or
// has expired are rejected.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.Identity, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
		}
		return nil, storeError(s.logger, "find session", err)
	}
	if !session.Valid(s.now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	return &models.Identity{UserID: session.UserID, Username: session.Username, SessionID: session.ID}, nil
}

// Logout ends the caller's session. Anonymous callers succeed without effect.
func (s *AuthService) Logout(ctx context.Context, identity *models.Identity) error {
	if identity == nil || identity.SessionID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, identity.SessionID, s.now().UTC()); err != nil {
		return storeError(s.logger, "revoke session", err)
	}
	s.activity.Record(ctx, identity.Username, models.ActivityLogout, identity.Username+" logged out")
	return nil
}

func (s *AuthService) loginFailed(username, reason string) error {
	s.metrics.RecordLogin(false)
	s.logger.Info("login rejected", zap.String("username", username), zap.String("reason", reason))
	return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
}

func (s *AuthService) signToken(session *models.AdminSession) (string, error) {
	claims := &models.SessionClaims{
		UserID:   session.UserID,
		Username: session.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    s.config.Issuer,
			Subject:   session.Username,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			NotBefore: jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *AuthService) parseToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, appErrors.ErrUnauthorized.Message)
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	return claims, nil
}
