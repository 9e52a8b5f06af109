// Package middleware provides request-scoped fiber middleware: context propagation,
// structured request logging, tracing and rate limiting.
package middleware

import (
	"log/slog"
	"time"

	"github.com/austinzumbro/nosql-social-api/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContextMiddleware copies the request ID and trace ID from fiber locals into the
// request context so the context-aware logger picks them up in deeper layers.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = observability.WithRequestID(ctx, rid)
		}
		if tid, ok := c.Locals("traceID").(string); ok && tid != "" {
			ctx = observability.WithTraceID(ctx, tid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware for logging requests using slog
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get(fiber.HeaderUserAgent)),
		}

		logger := observability.GlobalLogger
		switch {
		case err != nil:
			fields = append(fields, slog.String("error", err.Error()))
			logger.ErrorContext(c.UserContext(), "request failed", fields...)
		case status >= fiber.StatusInternalServerError:
			logger.ErrorContext(c.UserContext(), "request processed", fields...)
		case status >= fiber.StatusBadRequest:
			logger.WarnContext(c.UserContext(), "request processed", fields...)
		default:
			logger.InfoContext(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}
