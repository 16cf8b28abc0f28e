package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/traintrack/traintrack/internal/apierr"
	"github.com/traintrack/traintrack/internal/telemetry/tracing"
	"github.com/traintrack/traintrack/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// SessionTTL is fixed at session creation, there is no renewal.
	SessionTTL         = 365 * 24 * time.Hour
	sessionTokenLength = 32
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth

type authRepo interface {
	AddUser(ctx context.Context, user User) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id int) (*User, error)
	AddSession(ctx context.Context, session Session) (*Session, error)
	GetSessionByToken(ctx context.Context, token string) (*Session, error)
	DeleteSessionByToken(ctx context.Context, token string) error
}

type Service struct {
	repo authRepo
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(n int) (string, error)
	// ability to inject the clock for expiry tests
	NowFunc func() time.Time
}

func NewService(repo authRepo) *Service {
	return &Service{
		repo:           repo,
		RandStringFunc: pkg.GenerateRandomString,
		NowFunc:        time.Now,
	}
}

func (s *Service) RegisterUser(ctx context.Context, username, password, name string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.username", username))

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.AddUser(ctx, User{
		Username:     username,
		PasswordHash: passwordHash,
		Name:         name,
	})
	if err != nil {
		return nil, storeErr("add user", err)
	}

	return user, nil
}

// AuthenticateUser returns nil for an unknown username and for a wrong
// password alike; callers must not distinguish the two. The two misses take
// different code paths (no dummy hash compare on unknown user), so response
// timing is not equalized.
func (s *Service) AuthenticateUser(ctx context.Context, username, password string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.authenticate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err == ErrUserNotFound {
		log.Tracef("[username] failed login attempt for user: %s", username)
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}

	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", username)
		return nil, nil
	}

	return user, nil
}

func (s *Service) CreateSession(ctx context.Context, userID int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.createSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	token, err := s.RandStringFunc(sessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.NowFunc()
	session, err := s.repo.AddSession(ctx, Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(SessionTTL),
		CreatedAt: now,
	})
	if err != nil {
		return nil, storeErr("add session", err)
	}

	return session, nil
}

// ValidateSession resolves a token to its user. Expired sessions are
// deleted on the spot (lazy reaping, there is no background sweep) and
// reported the same as missing ones.
func (s *Service) ValidateSession(ctx context.Context, token string) (_ *User, _ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.validateSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	session, err := s.repo.GetSessionByToken(ctx, token)
	if err == ErrSessionNotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, storeErr("get session", err)
	}

	if session.Expired(s.NowFunc()) {
		if err := s.repo.DeleteSessionByToken(ctx, token); err != nil {
			log.Errorf("failed to reap expired session %d: %s", session.ID, err)
		}
		return nil, nil, nil
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err == ErrUserNotFound {
		// user deleted, session row is garbage now
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, storeErr("get session user", err)
	}

	return user, session, nil
}

// DeleteSession is idempotent, deleting an unknown token is not an error.
func (s *Service) DeleteSession(ctx context.Context, token string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.deleteSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.repo.DeleteSessionByToken(ctx, token); err != nil {
		return storeErr("delete session", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	if pkg.IsConnectionError(err) {
		return fmt.Errorf("%s: %w", op, apierr.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
