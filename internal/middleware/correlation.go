package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CorrelationHeader carries the request id in both directions.
const CorrelationHeader = "X-Correlation-ID"

const (
	correlationLocal       = "correlation_id"
	maxCorrelationIDLength = 64
)

type correlationKey struct{}

// CorrelationID tags each request with an id taken from the caller or minted
// here and echoes it back. The user context gets a logger carrying the id,
// retrievable with zerolog.Ctx.
func CorrelationID(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := incomingCorrelationID(c)

		c.Locals(correlationLocal, id)
		c.Set(CorrelationHeader, id)

		logger := base.With().Str("correlation_id", id).Logger()
		ctx := context.WithValue(c.UserContext(), correlationKey{}, id)
		c.SetUserContext(logger.WithContext(ctx))

		return c.Next()
	}
}

// incomingCorrelationID accepts a caller supplied id only when it is short and
// made of token characters, so ids can be logged and echoed verbatim.
func incomingCorrelationID(c *fiber.Ctx) string {
	for _, header := range []string{CorrelationHeader, fiber.HeaderXRequestID} {
		if id := strings.TrimSpace(c.Get(header)); validCorrelationID(id) {
			return id
		}
	}
	return uuid.NewString()
}

func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == ':':
		default:
			return false
		}
	}
	return true
}

// CorrelationIDFromContext returns the id CorrelationID stored, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// GetCorrelationID returns the id bound to the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(correlationLocal).(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}
