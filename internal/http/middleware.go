package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
)

const (
	RequestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
	maxRequestIDLength  = 128

	codeReadOnly apperr.Code = "READ_ONLY"
)

// RequestIDMiddleware tags every request with an id, reusing a client supplied
// X-Request-ID when it looks sane.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestIDMiddleware, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}

// ReadOnlyMiddleware rejects writes with 503 during maintenance. Paths in
// allowed (matched exactly) may still be posted to.
func ReadOnlyMiddleware(allowed ...string) gin.HandlerFunc {
	exempt := make(map[string]struct{}, len(allowed))
	for _, p := range allowed {
		exempt[p] = struct{}{}
	}
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if _, ok := exempt[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{
			Detail: "Service is in read-only mode",
			Code:   codeReadOnly,
		})
	}
}
