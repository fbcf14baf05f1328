package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
}

func NewAuthService(users repository.UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
	}
}

// TokenClaims is the payload of an API bearer token.
type TokenClaims struct {
	Username string `json:"username"`
	Staff    bool   `json:"staff"`
	jwt.RegisteredClaims
}

// Register creates a user. A taken username is a conflict.
func (s *AuthService) Register(ctx context.Context, username, password string, staff bool) (*domain.User, error) {
	if err := domain.ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("username %q: %w", username, domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{Username: username, PasswordHash: string(hash), IsStaff: staff}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": u.ID, "username": u.Username, "staff": staff}).Info("User registered")
	return u, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords fail the same way.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Username: u.Username,
		Staff:    u.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken verifies the signature and expiry and returns the user id.
func (s *AuthService) ParseToken(raw string) (uint64, error) {
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", domain.ErrAuthRequired)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid token subject: %w", domain.ErrAuthRequired)
	}
	return id, nil
}

// ActorFromToken resolves a bearer token to the current state of its user,
// so revoked staff rights take effect before the token expires.
func (s *AuthService) ActorFromToken(ctx context.Context, raw string) (domain.Actor, error) {
	id, err := s.ParseToken(raw)
	if err != nil {
		return domain.Actor{}, err
	}
	return s.ActorFor(ctx, id)
}

// ActorFor loads the user behind a session or token. A missing user yields
// ErrAuthRequired.
func (s *AuthService) ActorFor(ctx context.Context, userID uint64) (domain.Actor, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.Actor{}, err
	}
	if u == nil {
		return domain.Actor{}, fmt.Errorf("user %d: %w", userID, domain.ErrAuthRequired)
	}
	return u.Actor(), nil
}
