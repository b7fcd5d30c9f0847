package cookie

import (
	"net/http"

	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const (
	AccessTokenCookieName  = "access_token"
	GuestSessionCookieName = "guest_session"
)

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}

// GuestSession returns the guest session id, issuing a new ULID cookie when the
// request has none or carries a malformed one.
func GuestSession(c *gin.Context, cfg config.CookieConfig) string {
	if v, err := c.Cookie(GuestSessionCookieName); err == nil {
		if _, perr := ulid.ParseStrict(v); perr == nil {
			return v
		}
	}

	id := ulid.Make().String()
	c.SetSameSite(getSameSite(cfg.SameSite))
	c.SetCookie(
		GuestSessionCookieName,
		id,
		int(cfg.GuestSessionTTL.Seconds()),
		"/",
		cfg.Domain,
		cfg.Secure,
		true, // HttpOnly
	)
	return id
}

func getSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "Lax":
		return http.SameSiteLaxMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
