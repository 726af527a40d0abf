package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Paul-Starodub/fast-library/internal/apperr"
	"github.com/Paul-Starodub/fast-library/internal/audit"
	"github.com/Paul-Starodub/fast-library/internal/auth"
	"github.com/Paul-Starodub/fast-library/internal/validation"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Code   apperr.Code       `json:"code,omitempty"`
	Errors map[string]string `json:"errors,omitempty"` // per-field validation messages
}

// MessageResponse is returned by endpoints that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// --- Error Response Helpers ---

// respondAppError maps err to its HTTP status. Errors that are not
// *apperr.Error are logged with the request ID and reported as 500.
func respondAppError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		respondInternalError(c, err)
		return
	}
	if appErr.Code == apperr.CodeInternal {
		respondInternalError(c, err)
		return
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus(), ErrorResponse{
		Detail: appErr.Message,
		Code:   appErr.Code,
		Errors: appErr.Details,
	})
}

// respondInternalError logs the error and sends a 500. The cause is never
// exposed to the client.
func respondInternalError(c *gin.Context, err error) {
	log.Printf("[HTTP] %s %s failed (request %s): %v", c.Request.Method, c.FullPath(), GetRequestID(c), err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Detail: "Internal server error",
		Code:   apperr.CodeInternal,
	})
}

// --- Request Helpers ---

// bindJSON decodes and validates the body into obj, responding with 400 on
// failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondAppError(c, validation.FormatError(err))
		return false
	}
	return true
}

// parseIDParam extracts a positive integer ID from URL parameters, responding
// with 400 when it is malformed.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondAppError(c, apperr.ValidationWithDetails("validation failed", map[string]string{
			paramName: "must be a positive integer",
		}))
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads limit and offset query parameters.
func parsePagination(c *gin.Context) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit < 1 || limit > maxListLimit {
		respondAppError(c, apperr.ValidationWithDetails("validation failed", map[string]string{
			"limit": "must be between 1 and " + strconv.Itoa(maxListLimit),
		}))
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		respondAppError(c, apperr.ValidationWithDetails("validation failed", map[string]string{
			"offset": "must be greater than or equal to 0",
		}))
		return 0, 0, false
	}
	return limit, offset, true
}

// --- Audit ---

// AuditLogger records entity changes and login attempts.
type AuditLogger interface {
	LogCreate(actor audit.Actor, entityType string, entityID uint, name string)
	LogUpdate(actor audit.Actor, entityType string, entityID uint, name string)
	LogDelete(actor audit.Actor, entityType string, entityID uint, name string)
	LogAuth(actor audit.Actor, action string, success bool)
}

type noopAuditLogger struct{}

func (noopAuditLogger) LogCreate(audit.Actor, string, uint, string) {}
func (noopAuditLogger) LogUpdate(audit.Actor, string, uint, string) {}
func (noopAuditLogger) LogDelete(audit.Actor, string, uint, string) {}
func (noopAuditLogger) LogAuth(audit.Actor, string, bool)           {}

func orNoop(l AuditLogger) AuditLogger {
	if l == nil {
		return noopAuditLogger{}
	}
	return l
}

// actorFrom describes who made the request for the audit trail.
func actorFrom(c *gin.Context) audit.Actor {
	return audit.Actor{
		ID:        auth.GetAuthorID(c),
		RequestID: GetRequestID(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
