package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nomadshift/backend/internal/apperrors"
	"github.com/nomadshift/backend/internal/models"
	"github.com/nomadshift/backend/internal/repository"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Login is the result of a successful identity exchange.
type Login struct {
	User      *models.User `json:"user"`
	Token     string       `json:"session_token"`
	ExpiresAt time.Time    `json:"-"`
}

type Service interface {
	Exchange(ctx context.Context, externalSessionID string) (*Login, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
	TTL() time.Duration
}

// Store is the persistence the auth service needs; *Repository satisfies it.
type Store interface {
	FindOrCreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ReplaceSessions(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

type service struct {
	store    Store
	identity IdentityProvider
	secret   []byte
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store Store, identity IdentityProvider, secret string, ttl time.Duration, log *slog.Logger) *service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{store: store, identity: identity, secret: []byte(secret), ttl: ttl, log: log, now: time.Now}
}

// Ensure service implements Service at compile time.
var _ Service = (*service)(nil)

// claims carries the user in sub and the session in jti.
type claims struct {
	jwt.RegisteredClaims
}

var errInvalidSession = apperrors.Unauthenticated("invalid or expired session")

func (s *service) TTL() time.Duration { return s.ttl }

// Exchange trades an identity-provider session for a local session. Any
// earlier session of the same user is revoked.
func (s *service) Exchange(ctx context.Context, externalSessionID string) (*Login, error) {
	externalSessionID = strings.TrimSpace(externalSessionID)
	if externalSessionID == "" {
		return nil, apperrors.Validation("session_id required")
	}
	id, err := s.identity.Fetch(ctx, externalSessionID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user, err := s.store.FindOrCreateUser(ctx, &models.User{
		ID:        uuid.New(),
		Email:     id.Email,
		Name:      id.Name,
		Picture:   id.Picture,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}

	sess := &models.Session{ID: uuid.New(), UserID: user.ID, ExpiresAt: now.Add(s.ttl), CreatedAt: now}
	if err := s.store.ReplaceSessions(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	token, err := s.issueToken(sess)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	s.log.Info("session created", "user_id", user.ID, "expires_at", sess.ExpiresAt)
	return &Login{User: user, Token: token, ExpiresAt: sess.ExpiresAt}, nil
}

func (s *service) issueToken(sess *models.Session) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID.String(),
			ID:        sess.ID.String(),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

// parse verifies the signature and expiry and returns the user and session ids.
func (s *service) parse(token string, extra ...jwt.ParserOption) (userID, sessionID uuid.UUID, err error) {
	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}, extra...)
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return uuid.Nil, uuid.Nil, errInvalidSession
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return uuid.Nil, uuid.Nil, errInvalidSession
	}
	if userID, err = uuid.Parse(c.Subject); err != nil {
		return uuid.Nil, uuid.Nil, errInvalidSession
	}
	if sessionID, err = uuid.Parse(c.ID); err != nil {
		return uuid.Nil, uuid.Nil, errInvalidSession
	}
	return userID, sessionID, nil
}

// Resolve returns the user behind a valid, unexpired, unrevoked token.
func (s *service) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.Unauthenticated("not authenticated")
	}
	userID, sessionID, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errInvalidSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.UserID != userID || sess.Expired(s.now()) {
		return nil, errInvalidSession
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthenticated("user not found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// Logout revokes the session in token, expired or not. Unsigned or malformed
// tokens are ignored.
func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, sessionID, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
