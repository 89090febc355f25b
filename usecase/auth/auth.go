package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const minPasswordLength = 6

// GoogleIdentity is what a verified Google ID token tells us about the user.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier checks a Google ID token issued to this application.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *Tokens
	google   GoogleVerifier
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens *Tokens, google GoogleVerifier, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		google:   google,
		logger:   logger,
	}
}

func (uc *UseCase) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewError(domain.ErrCodeInvalid, "name and a valid email are required")
	}
	if len(password) < minPasswordLength {
		return nil, domain.NewError(domain.ErrCodeInvalid, "password must be at least 6 characters")
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         "member",
		Status:       "active",
		PasswordHash: hash,
	}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return uc.issue(ctx, user)
}

func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" || !CheckPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status != "" && !user.IsActive() {
		return nil, domain.NewError(domain.ErrCodeForbidden, "account disabled")
	}
	return uc.issue(ctx, user)
}

// LoginWithGoogle verifies the ID token and signs the user in, creating the
// account on first use.
func (uc *UseCase) LoginWithGoogle(ctx context.Context, idToken string) (*domain.AuthResult, error) {
	if uc.google == nil {
		return nil, domain.NewError(domain.ErrCodeInvalid, "google login is not configured")
	}
	if idToken == "" {
		return nil, domain.ErrInvalidPayload
	}

	identity, err := uc.google.Verify(ctx, idToken)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "google login failed", err)
	}
	if identity.Email == "" {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "google account has no email")
	}

	user, err := uc.users.GetByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user = &domain.User{
			ID:     uuid.NewString(),
			Name:   identity.Name,
			Email:  domain.NormalizeEmail(identity.Email),
			Role:   "member",
			Status: "active",
		}
	case err != nil:
		return nil, err
	}

	user.GoogleSub = identity.Subject
	if user.Avatar == "" {
		user.Avatar = identity.Picture
	}
	if user.Name == "" {
		user.Name = identity.Name
	}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return uc.issue(ctx, user)
}

// ChangePassword replaces the password after checking the current one.
func (uc *UseCase) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash != "" && !CheckPassword(user.PasswordHash, current) {
		return domain.NewError(domain.ErrCodeInvalid, "current password is incorrect")
	}
	if len(next) < minPasswordLength {
		return domain.NewError(domain.ErrCodeInvalid, "password must be at least 6 characters")
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, userID, hash)
}

// Authenticate resolves a bearer token into its live session.
func (uc *UseCase) Authenticate(ctx context.Context, rawToken string) (*Claims, error) {
	claims, err := uc.tokens.Parse(rawToken)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	if _, err := uc.GetSession(ctx, claims.SessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return claims, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Logout revokes the given session, or every session of the user when all is set.
func (uc *UseCase) Logout(ctx context.Context, claims *Claims, all bool) error {
	if claims == nil {
		return domain.ErrUnauthorized
	}
	if all {
		return uc.sessions.DeleteForUser(ctx, claims.UserID)
	}
	return uc.sessions.Delete(ctx, claims.SessionID)
}

func (uc *UseCase) issue(ctx context.Context, user *domain.User) (*domain.AuthResult, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.tokens.TTL()),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.tokens.Issue(user.ID, session.ID)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: token, User: user}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
