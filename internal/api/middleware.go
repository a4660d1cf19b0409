package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sk88studiosinc-maker/Soulsound/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxTraceID = "trace_id"
	ctxUserID  = "user_id"
	ctxEmail   = "email"
	ctxRole    = "role"
)

// TokenParser validates access tokens.
type TokenParser interface {
	ParseAccess(token string) (auth.Claims, error)
}

func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := strings.TrimSpace(c.GetHeader("X-Trace-Id"))
		if traceID == "" {
			if v7, err := uuid.NewV7(); err == nil {
				traceID = v7.String()
			} else {
				traceID = uuid.NewString()
			}
		}
		c.Set(ctxTraceID, traceID)
		c.Writer.Header().Set("X-Trace-Id", traceID)
		c.Next()
	}
}

// RequestLogMiddleware logs one line per request. Health probes are skipped
// and server errors are raised to warn.
func RequestLogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if strings.HasSuffix(c.Request.URL.Path, "/healthz") {
			return
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "http_request",
			"trace_id", traceIDFromContext(c),
			"user_id", userIDFromContext(c),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// AuthMiddleware accepts a Bearer token. Event streams may pass it as
// ?access_token= because EventSource cannot set headers.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			writeUnauthorized(c)
			c.Abort()
			return
		}
		claims, err := tokens.ParseAccess(raw)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				writeError(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Access token expired", false, nil)
			} else {
				writeUnauthorized(c)
			}
			c.Abort()
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, string(claims.Role))
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		return token, ok && token != ""
	}
	if c.Request.Method == http.MethodGet && strings.HasSuffix(c.Request.URL.Path, "/events") {
		token := strings.TrimSpace(c.Query("access_token"))
		return token, token != ""
	}
	return "", false
}

func traceIDFromContext(c *gin.Context) string {
	return c.GetString(ctxTraceID)
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func requireJSON(c *gin.Context) bool {
	if c.ContentType() == "" || c.ContentType() == "application/json" {
		return true
	}
	writeError(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json", false, nil)
	return false
}
