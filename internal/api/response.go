package api

import (
	"errors"
	"net/http"

	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
	"github.com/sk88studiosinc-maker/Soulsound/internal/store"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

func writeData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"data":     data,
		"trace_id": traceIDFromContext(c),
	})
}

func writeError(c *gin.Context, status int, code, message string, retryable bool, details map[string]any) {
	c.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			Retryable: retryable,
			Details:   details,
		},
		"trace_id": traceIDFromContext(c),
	})
}

func writeUnauthorized(c *gin.Context) {
	writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", false, nil)
}

var providerStatus = map[string]int{
	provider.CodeInputInvalid:     http.StatusBadRequest,
	provider.CodeGenerationFailed: http.StatusBadGateway,
	provider.CodeVideoFailed:      http.StatusBadGateway,
	provider.CodeSpeechFailed:     http.StatusBadGateway,
	provider.CodeEntitlement:      http.StatusPaymentRequired,
	provider.CodeVideoTimeout:     http.StatusGatewayTimeout,
	provider.CodeMediaAccess:      http.StatusForbidden,
	provider.CodeCanceled:         http.StatusConflict,
}

// writeDomainError maps session and provider failures onto the envelope.
// The snapshot, when given, rides along in details so clients can resync.
func writeDomainError(c *gin.Context, err error, snap *session.Snapshot) {
	var details map[string]any
	if snap != nil {
		details = map[string]any{"project": snap}
	}
	var pErr *provider.Error
	switch {
	case errors.As(err, &pErr):
		status, ok := providerStatus[pErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		writeError(c, status, pErr.Code, pErr.UserMessage, pErr.Retryable, details)
	case errors.Is(err, session.ErrInvalidTransition):
		writeError(c, http.StatusConflict, "INVALID_STATE", "Action not allowed in the current project state", false, details)
	case errors.Is(err, session.ErrSuperseded):
		writeError(c, http.StatusConflict, "SUPERSEDED", "A newer request replaced this one", true, details)
	case errors.Is(err, store.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Not found", false, details)
	default:
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong", true, details)
	}
}
