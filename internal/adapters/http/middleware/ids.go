// Package middleware provides gin middleware for the ops HTTP server.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quotebot/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

// Headers and gin keys carrying request identity. The log field names match
// the ones the chat pipeline uses, so API requests and bot commands can be
// searched alike.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"

	ContextKeyRequestID     = dto.ContextKeyRequestID
	ContextKeyCorrelationID = "correlation_id"
)

// maxIDLength caps caller supplied IDs before they reach logs and headers.
const maxIDLength = 128

// idHeader adopts an inbound ID header, or mints a UUID, and publishes the
// result on the response, the gin context and the request context.
type idHeader struct {
	header string
	key    string
	attach func(context.Context, string) context.Context
}

func (h idHeader) handle(c *gin.Context) {
	id := c.GetHeader(h.header)
	if !acceptableID(id) {
		id = uuid.NewString()
	}

	c.Set(h.key, id)
	c.Header(h.header, id)
	c.Request = c.Request.WithContext(h.attach(c.Request.Context(), id))

	c.Next()
}

// acceptableID rejects empty, oversized and non-printable values so a caller
// cannot forge log lines through an ID header.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		if id[i] < '!' || id[i] > '~' {
			return false
		}
	}

	return true
}

// RequestID propagates X-Request-ID.
func RequestID() gin.HandlerFunc {
	return idHeader{header: HeaderRequestID, key: ContextKeyRequestID, attach: logging.WithRequestID}.handle
}

// CorrelationID propagates X-Correlation-ID.
func CorrelationID() gin.HandlerFunc {
	return idHeader{header: HeaderCorrelationID, key: ContextKeyCorrelationID, attach: logging.WithCorrelationID}.handle
}

// GetRequestID returns the request ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID set by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}
