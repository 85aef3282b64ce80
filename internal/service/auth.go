package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/hash"
	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/metrics"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/tokens"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

type AuthService struct {
	Repo        *repo.GormRepo
	Events      events.Publisher
	Metrics     *metrics.Metrics
	Secret      []byte
	IdleTimeout time.Duration
	MaxAge      time.Duration
	Now         func() time.Time
}

// Identity is what a valid session tells the rest of the app about its user.
type Identity struct {
	SessionID string `json:"-"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	FullName  string `json:"full_name"`
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  Identity
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", req.Username)

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	taken, err := s.Repo.UsernameTaken(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username already exists", ErrConflict)
	}
	taken, err = s.Repo.EmailTaken(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         models.RoleCustomer,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username or email already exists", ErrConflict)
		}
		return nil, err
	}

	l.Info("register_success", "user_id", user.ID)
	publish(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), events.New(events.UserRegistered, map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	}))
	return user, nil
}

// Login answers ErrInvalidCredentials for an unknown user, an inactive user
// and a wrong password alike.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var ok bool
	if user != nil && user.IsActive {
		ok = hash.CheckPassword(user.PasswordHash, password)
	} else {
		ok = hash.CheckDummy(password)
	}
	if !ok {
		s.Metrics.Login(false)
		l.Warn("login_failed", "reason", "invalid credentials")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.Repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}

	sess := &models.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		FullName:   user.FullName,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.MaxAge),
	}
	if err := s.Repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	token, err := tokens.SignSession(sess.ID, strconv.FormatUint(uint64(user.ID), 10), user.Role, sess.ExpiresAt, s.Secret)
	if err != nil {
		return nil, err
	}

	s.Metrics.Login(true)
	l.Info("login_success", "user_id", user.ID)
	publish(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), events.New(events.UserLoggedIn, map[string]any{
		"user_id": user.ID,
	}))

	return &LoginResult{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		Identity:  identityOf(sess),
	}, nil
}

// Logout revokes the session; unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.Repo.RevokeSession(ctx, sessionID)
}

// Authenticate resolves a session token and slides the idle window forward.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := tokens.SessionClaimsFromToken(token, s.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sess, err := s.Repo.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown session", ErrUnauthorized)
		}
		return nil, err
	}
	if strconv.FormatUint(uint64(sess.UserID), 10) != claims.Subject {
		return nil, fmt.Errorf("%w: session subject mismatch", ErrUnauthorized)
	}

	now := s.now()
	switch {
	case sess.Revoked:
		return nil, fmt.Errorf("%w: session revoked", ErrUnauthorized)
	case now.After(sess.ExpiresAt):
		return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
	case s.IdleTimeout > 0 && now.Sub(sess.LastSeenAt) > s.IdleTimeout:
		_ = s.Repo.RevokeSession(ctx, sess.ID)
		return nil, fmt.Errorf("%w: session idle", ErrUnauthorized)
	}

	if err := s.Repo.TouchSession(ctx, sess.ID, now); err != nil {
		return nil, err
	}

	id := identityOf(sess)
	return &id, nil
}

// PurgeSessions drops revoked and expired session rows.
func (s *AuthService) PurgeSessions(ctx context.Context) (int64, error) {
	return s.Repo.DeleteStaleSessions(ctx, s.now())
}

func identityOf(sess *models.Session) Identity {
	return Identity{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Username:  sess.Username,
		Role:      sess.Role,
		FullName:  sess.FullName,
	}
}
