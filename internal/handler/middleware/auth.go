package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/cookie"
	"github.com/enviofleett/smallchops-09-sub001/internal/usecase"

	"github.com/gin-gonic/gin"
)

const ctxIdentityKey = "checkout_identity"

type AuthMiddleware struct {
	resolver usecase.IdentityResolver
	cookies  config.CookieConfig
}

func NewAuthMiddleware(resolver usecase.IdentityResolver, cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		cookies:  cfg.Cookie,
	}
}

// ResolveIdentity authenticates the request when a token is present and falls
// back to a guest session cookie otherwise. A token that fails validation is
// rejected rather than silently downgraded to a guest.
func (m *AuthMiddleware) ResolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)

		if token == "" {
			c.Set(ctxIdentityKey, checkout.Guest(cookie.GuestSession(c, m.cookies)))
			c.Next()
			return
		}

		identity, err := m.resolver.ResolveToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "Invalid or expired token"},
			})
			c.Abort()
			return
		}

		c.Set(ctxIdentityKey, identity)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if token := cookie.GetAccessToken(c); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return ""
}

func GetIdentity(c *gin.Context) (checkout.Identity, bool) {
	v, exists := c.Get(ctxIdentityKey)
	if !exists {
		return checkout.Identity{}, false
	}
	identity, ok := v.(checkout.Identity)
	return identity, ok
}
