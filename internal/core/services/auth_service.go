package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/mycurrency/internal/apperrors"
	portssvc "github.com/SscSPs/mycurrency/internal/core/ports/services"
	"github.com/SscSPs/mycurrency/internal/platform/config"
	"github.com/SscSPs/mycurrency/internal/utils"
)

// authService authenticates the single configured administrator and issues
// access tokens for the admin routes.
type authService struct {
	BaseService
	username     string
	passwordHash string
	jwtSecret    string
	jwtIssuer    string
	jwtExpiry    time.Duration
}

// NewAuthService creates an AuthSvc from the admin and JWT settings in cfg.
func NewAuthService(cfg *config.Config) portssvc.AuthSvc {
	return &authService{
		BaseService:  newBaseService(nil),
		username:     cfg.AdminUsername,
		passwordHash: cfg.AdminPasswordHash,
		jwtSecret:    cfg.JWTSecret,
		jwtIssuer:    cfg.JWTIssuer,
		jwtExpiry:    cfg.JWTExpiryDuration,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// bcrypt runs even when the username is wrong.
	passOK := utils.CheckPasswordHash(password, s.passwordHash)
	if !userOK || !passOK {
		s.LogInfo(ctx, "Rejected admin login", slog.String("username", username))
		return "", time.Time{}, apperrors.NewAppError(http.StatusUnauthorized, "invalid username or password", apperrors.ErrUnauthorized)
	}

	token, expiresAt, err := utils.GenerateJWT(s.username, s.jwtSecret, s.jwtExpiry, s.jwtIssuer, s.now())
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token")
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	s.LogInfo(ctx, "Admin logged in", slog.String("username", username))
	return token, expiresAt, nil
}
