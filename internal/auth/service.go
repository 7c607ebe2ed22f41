package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/apperror"
)

// AdminSubject is the token subject of the shop administrator.
const AdminSubject = "admin"

var (
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid password")
	ErrAdminLoginDisabled = apperror.New(http.StatusForbidden, "admin login is not configured")
)

// Token is a signed bearer token.
type Token struct {
	Value     string
	Subject   string
	ExpiresAt time.Time
}

type Service interface {
	// IssueSession starts a new anonymous booking session.
	IssueSession(ctx context.Context) (*Token, error)
	// AdminLogin exchanges the admin password for an admin token.
	AdminLogin(ctx context.Context, password string) (*Token, error)
}

type service struct {
	jwt        *JWTManager
	hasher     PasswordHasher
	adminHash  string
	sessionTTL time.Duration
	adminTTL   time.Duration
}

func NewService(jwt *JWTManager, hasher PasswordHasher, adminHash string, sessionTTL, adminTTL time.Duration) Service {
	return &service{
		jwt:        jwt,
		hasher:     hasher,
		adminHash:  adminHash,
		sessionTTL: sessionTTL,
		adminTTL:   adminTTL,
	}
}

func (s *service) IssueSession(ctx context.Context) (*Token, error) {
	return s.issue(uuid.NewString(), RoleSession, s.sessionTTL)
}

func (s *service) AdminLogin(ctx context.Context, password string) (*Token, error) {
	if s.adminHash == "" {
		return nil, ErrAdminLoginDisabled
	}
	ok, err := s.hasher.Verify(s.adminHash, password)
	if err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.issue(AdminSubject, RoleAdmin, s.adminTTL)
}

func (s *service) issue(subject string, role Role, ttl time.Duration) (*Token, error) {
	value, expiresAt, err := s.jwt.Generate(subject, role, ttl)
	if err != nil {
		return nil, err
	}
	return &Token{Value: value, Subject: subject, ExpiresAt: expiresAt}, nil
}
