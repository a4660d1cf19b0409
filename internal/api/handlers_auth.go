package api

import (
	"errors"
	"net/http"

	"github.com/sk88studiosinc-maker/Soulsound/internal/auth"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func userView(u model.User) gin.H {
	return gin.H{"id": u.ID, "email": u.Email, "role": u.Role, "status": u.Status}
}

func tokenView(t auth.Tokens) gin.H {
	return gin.H{
		"access_token":   t.AccessToken,
		"refresh_token":  t.RefreshToken,
		"expires_in_sec": t.ExpiresInSec,
	}
}

func (s *Server) login(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid login payload", false, nil)
		return
	}
	user, tokens, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		s.log.Info("login_rejected", "trace_id", traceIDFromContext(c))
		writeError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", false, nil)
		return
	}
	out := tokenView(tokens)
	out["user"] = userView(user)
	writeData(c, http.StatusOK, out)
}

// bindRefresh decodes the refresh token body shared by refresh and logout.
func bindRefresh(c *gin.Context) (string, bool) {
	if !requireJSON(c) {
		return "", false
	}
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "refresh_token is required", false, nil)
		return "", false
	}
	return req.RefreshToken, true
}

func (s *Server) refresh(c *gin.Context) {
	token, ok := bindRefresh(c)
	if !ok {
		return
	}
	tokens, err := s.auth.Refresh(token)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		writeError(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Refresh token expired", false, nil)
	case err != nil:
		writeUnauthorized(c)
	default:
		writeData(c, http.StatusOK, tokenView(tokens))
	}
}

func (s *Server) logout(c *gin.Context) {
	token, ok := bindRefresh(c)
	if !ok {
		return
	}
	if err := s.auth.Logout(token); err != nil {
		writeUnauthorized(c)
		return
	}
	s.log.Info("logout", "user_id", userIDFromContext(c))
	writeData(c, http.StatusOK, gin.H{"ok": true})
}

// me returns the artist with their navigation and project state, so a client
// can restore itself in one call.
func (s *Server) me(c *gin.Context) {
	user, err := s.accounts.GetUserByID(userIDFromContext(c))
	if err != nil {
		writeUnauthorized(c)
		return
	}
	out := userView(user)
	out["client"] = s.sessions.Get(c.Request.Context(), user.ID).State()
	writeData(c, http.StatusOK, out)
}
