package middleware

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// headers the checkout frontend always needs, whatever the deployment lists
var (
	checkoutAllowHeaders  = []string{"Content-Type", "Authorization"}
	checkoutExposeHeaders = []string{"Location"}
)

// NewCORSMiddleware allows credentialed requests so the guest session cookie travels with cross-origin calls.
// A wildcard origin cannot be combined with credentials and is dropped in that case.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowOrigins
	if cfg.AllowCredentials && slices.Contains(origins, "*") {
		slog.Warn("CORS wildcard origin ignored because credentials are allowed")
		origins = slices.DeleteFunc(slices.Clone(origins), func(o string) bool { return o == "*" })
	}

	corsCfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     mergeHeaders(cfg.AllowHeaders, checkoutAllowHeaders),
		ExposeHeaders:    mergeHeaders(cfg.ExposeHeaders, checkoutExposeHeaders),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	slog.Info("CORS middleware initialized", "AllowOrigins", origins)
	return cors.New(corsCfg)
}

func mergeHeaders(configured, required []string) []string {
	out := slices.Clone(configured)
	for _, h := range required {
		if !slices.ContainsFunc(out, func(o string) bool { return strings.EqualFold(o, h) }) {
			out = append(out, h)
		}
	}
	return out
}
