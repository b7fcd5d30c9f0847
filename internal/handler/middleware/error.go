package middleware

import (
	"log/slog"
	"net/http"

	"github.com/enviofleett/smallchops-09-sub001/internal/handler/httperr"
	"github.com/enviofleett/smallchops-09-sub001/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

const stackLines = 12

// ErrorHandler logs every public error recorded by httperr and writes the latest one if the handler wrote nothing.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		var last *httperr.Response
		for _, err := range c.Errors.ByType(gin.ErrorTypePublic) {
			resp, ok := err.Meta.(httperr.Response)
			if !ok {
				continue
			}
			logFailure(c, err.Err, resp)
			last = &resp
		}

		if c.Writer.Written() {
			return
		}
		if last != nil {
			c.JSON(last.Status, last)
			return
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}

		resp := httperr.Response{Status: http.StatusInternalServerError}
		resp.Error.Message = "Internal server error"
		c.JSON(resp.Status, resp)
	}
}

// logFailure keeps the wrapped cause in the log; clients only see resp.
func logFailure(c *gin.Context, cause error, resp httperr.Response) {
	level := slog.LevelWarn
	if resp.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.Int("status", resp.Status),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", cause.Error()),
	}
	if resp.Error.Category != "" {
		attrs = append(attrs,
			slog.String("category", resp.Error.Category),
			slog.Bool("retryable", resp.Error.Retryable))
	}
	if level == slog.LevelError {
		attrs = append(attrs, slog.Any("stack", errs.ExtractStackLines(cause, stackLines)))
	}
	if id := GetRequestID(c); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	slog.LogAttrs(c.Request.Context(), level, "request failed", attrs...)
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("recovered from panic", "error", err, "path", c.Request.URL.Path)

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"

				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()
		c.Next()
	}
}
