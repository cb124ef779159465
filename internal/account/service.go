// Package account provides email/password sign-in and the verified
// identity surface consumed by the room authorization flow.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"scribe/api/internal/auth"
	"scribe/api/internal/identity"
	"scribe/api/internal/session"
	"scribe/api/internal/store"
	"scribe/api/internal/util"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserStore defines the storage interface for accounts
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, id string) (store.User, error)
	CreateUser(ctx context.Context, user store.User) error
}

// SessionRegistry tracks live sessions; revoking one invalidates its token
type SessionRegistry interface {
	SaveSession(ctx context.Context, jti, userID string, expiresAt time.Time) error
	LookupSession(ctx context.Context, jti string) (session.Record, error)
	RevokeSession(ctx context.Context, jti string) error
}

type Service struct {
	store       UserStore
	sessions    SessionRegistry
	secret      []byte
	sessionTTL  time.Duration
	exchangeTTL time.Duration
}

func NewService(userStore UserStore, sessions SessionRegistry, secret string, sessionTTL, exchangeTTL time.Duration) *Service {
	return &Service{
		store:       userStore,
		sessions:    sessions,
		secret:      []byte(secret),
		sessionTTL:  sessionTTL,
		exchangeTTL: exchangeTTL,
	}
}

// SignUpRequest contains sign-up parameters
type SignUpRequest struct {
	Email     string
	Password  string
	FullName  string
	FirstName string
	Username  string
	AvatarURL string
}

// SignUp creates a new user account
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (store.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return store.User{}, errors.New("email and password are required")
	}
	if len(req.Password) < 8 {
		return store.User{}, errors.New("password must be at least 8 characters")
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return store.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := store.User{
		ID:           util.NewID("usr"),
		FullName:     strings.TrimSpace(req.FullName),
		FirstName:    strings.TrimSpace(req.FirstName),
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		AvatarKey:    strings.TrimSpace(req.AvatarURL),
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return store.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Session is an issued sign-in session
type Session struct {
	Token     string
	UserID    string
	UserName  string
	JTI       string
	ExpiresAt time.Time
}

// SignIn verifies credentials and issues a session token whose JTI is
// registered in the live session registry.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	jti := util.NewID("")
	expiresAt := time.Now().Add(s.sessionTTL)
	token, err := auth.IssueToken(s.secret, auth.Claims{
		Sub:  user.ID,
		Name: user.FullName,
		JTI:  jti,
		Exp:  expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, fmt.Errorf("issue session token: %w", err)
	}

	if err := s.sessions.SaveSession(ctx, jti, user.ID, expiresAt); err != nil {
		return Session{}, fmt.Errorf("register session: %w", err)
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.FullName,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout revokes the session behind a token. Invalid tokens are a no-op;
// logout never fails toward the caller for a bad token.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return nil
	}
	return s.sessions.RevokeSession(ctx, claims.JTI)
}

// VerifySession implements identity.Provider. A token verifies only while
// its JTI is still registered, so logout takes effect immediately.
func (s *Service) VerifySession(ctx context.Context, sessionToken string) (auth.Claims, error) {
	claims, err := auth.ParseToken(s.secret, sessionToken)
	if err != nil {
		return auth.Claims{}, err
	}
	record, err := s.sessions.LookupSession(ctx, claims.JTI)
	if err != nil {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	if record.UserID != claims.Sub {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return claims, nil
}

// GetUser implements identity.Provider.
func (s *Service) GetUser(ctx context.Context, userID string) (identity.Identity, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return identity.Identity{}, err
	}
	return identity.Identity{
		ID:        user.ID,
		FullName:  user.FullName,
		FirstName: user.FirstName,
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: user.AvatarKey,
	}, nil
}

// ExchangeToken implements identity.Provider: mints a short-lived token
// scoped to the given backend audience from already-verified claims.
func (s *Service) ExchangeToken(ctx context.Context, claims auth.Claims, audience string) (string, error) {
	if audience == "" {
		return "", errors.New("exchange audience required")
	}
	return auth.IssueToken(s.secret, auth.Claims{
		Sub: claims.Sub,
		Aud: audience,
		JTI: util.NewID(""),
		Exp: time.Now().Add(s.exchangeTTL).Unix(),
	})
}
