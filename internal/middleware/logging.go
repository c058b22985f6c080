package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/homehub-dev/homehub/internal/types"
)

// RequestLogger logs one line per request. The query string and headers are
// left out so tokens never reach the log.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		status := ctx.Writer.Status()
		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path
		}

		attrs := []slog.Attr{
			slog.String("method", ctx.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", ctx.ClientIP()),
		}

		if user, ok := ctx.Get(types.ContextUserKey); ok {
			if authenticated, ok := user.(AuthenticatedUser); ok {
				attrs = append(attrs, slog.String("user_id", authenticated.ID))
			}
		}

		if errs := ctx.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			attrs = append(attrs, slog.String("error", errs.String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		logger.LogAttrs(ctx.Request.Context(), level, "request", attrs...)
	}
}
