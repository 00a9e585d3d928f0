package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
	"github.com/vitpintodas/comem-travel-log-api/internal/metrics"
	"github.com/vitpintodas/comem-travel-log-api/internal/repo"
	"github.com/vitpintodas/comem-travel-log-api/internal/schema"
)

// TokenLifetime is how long an issued token stays valid.
const TokenLifetime = 14 * 24 * time.Hour

// AuthService authenticates users by password and by bearer token.
type AuthService struct {
	users  repo.UserRepo
	secret []byte
	now    clock
}

// NewAuthService constructs an AuthService signing tokens with secret.
func NewAuthService(users repo.UserRepo, secret string) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), now: schema.Now}
}

// WithClock replaces the time source used to issue and verify tokens.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login checks a user's credentials and returns a fresh token for them.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		metrics.RecordAuthAttempt("missing")
		return "", domain.User{}, domain.NewError(http.StatusUnauthorized, domain.CodeAuthCredentialsMissing,
			"Username or password is missing").With("missing", missing)
	}

	user, err := s.users.GetByName(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.RecordAuthAttempt("unknown")
		return "", domain.User{}, domain.NewError(http.StatusUnauthorized, domain.CodeAuthCredentialsUnknown,
			fmt.Sprintf("There is no user named %q", username))
	} else if err != nil {
		return "", domain.User{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if !passwordMatches(user.PasswordHash, password) {
		metrics.RecordAuthAttempt("invalid")
		return "", domain.User{}, domain.NewError(http.StatusUnauthorized, domain.CodeAuthCredentialsInvalid,
			"Password is incorrect")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}

	metrics.RecordAuthAttempt("success")
	slog.InfoContext(ctx, "user logged in", "user_id", user.APIID)
	return token, user, nil
}

// IssueToken signs a token identifying user.
func (s *AuthService) IssueToken(user domain.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.APIID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate returns the user identified by a bearer token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return domain.User{}, domain.NewError(http.StatusUnauthorized, domain.CodeAuthTokenExpired,
			"Authentication token has expired")
	} else if err != nil {
		return domain.User{}, invalidToken()
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.User{}, invalidToken()
	}

	user, err := s.users.GetByAPIID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, invalidToken()
	} else if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Authenticate: %w", err)
	}
	return user, nil
}

func invalidToken() *domain.Error {
	return domain.NewError(http.StatusUnauthorized, domain.CodeAuthTokenInvalid,
		"Authentication token is invalid")
}
