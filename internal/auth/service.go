package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"boxstudio/internal/shared/config"
	"boxstudio/internal/shared/middleware"
	"boxstudio/pkg/logger"
)

const defaultSubject = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokensDisabled     = errors.New("token signing is not configured")
)

type Service interface {
	ExchangeToken(ctx context.Context, req *TokenRequest) (*TokenResponse, error)
}

type service struct {
	cfg config.AuthConfig
	now func() time.Time
	log *logger.Logger
}

func NewService(cfg config.AuthConfig) Service {
	return &service{
		cfg: cfg,
		now: time.Now,
		log: logger.GetDefault(),
	}
}

// ExchangeToken trades the static API token for a short-lived signed token
// that names who is acting, so approvals can be attributed.
func (s *service) ExchangeToken(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	if s.cfg.JWTSecret == "" {
		return nil, ErrTokensDisabled
	}
	if s.cfg.APIToken == "" || subtle.ConstantTimeCompare([]byte(req.APIToken), []byte(s.cfg.APIToken)) != 1 {
		return nil, ErrInvalidCredentials
	}

	subject := req.Subject
	if subject == "" {
		subject = defaultSubject
	}

	token, err := middleware.IssueAdminToken(s.cfg, subject, s.now())
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Admin token issued", "subject", subject)
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.JWTExpiresIn.Seconds()),
		Subject:     subject,
	}, nil
}
