//go:build e2e

package helper

import (
	"testing"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// JWTTestHelper issues tokens the way the storefront's auth service does.
type JWTTestHelper struct {
	cfg     config.JWTConfig
	service *jwt.Service
}

func NewJWTTestHelper(cfg config.JWTConfig) *JWTTestHelper {
	return &JWTTestHelper{
		cfg:     cfg,
		service: jwt.NewService(cfg.Secret, jwt.Options{Duration: cfg.Duration, Issuer: cfg.Issuer}),
	}
}

func (h *JWTTestHelper) GenerateToken(t *testing.T, userID uuid.UUID, profile checkout.Contact) string {
	t.Helper()
	token, err := h.service.GenerateToken(userID, profile)
	require.NoError(t, err)
	return token
}

// CreateExpiredToken backdates issuance past both the lifetime and the validator's leeway.
func (h *JWTTestHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	issuedAt := time.Now().Add(-(h.cfg.Duration + h.cfg.Leeway + time.Minute))
	token, err := h.service.Sign(userID, checkout.Contact{}, issuedAt)
	require.NoError(t, err)
	return token
}
