package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sk88studiosinc-maker/Soulsound/internal/auth"
	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/speech"

	"github.com/gin-gonic/gin"
)

type speechRequest struct {
	Voice string `json:"voice"`
}

func (s *Server) synthesizeScript(c *gin.Context) {
	if s.speech == nil {
		writeError(c, http.StatusNotImplemented, "NARRATION_DISABLED", "Narration is not configured", false, nil)
		return
	}
	if !requireJSON(c) {
		return
	}
	var req speechRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid speech payload", false, nil)
			return
		}
	}
	if req.Voice == "" {
		req.Voice = speech.DefaultVoice
	}

	snap := s.sessions.Get(c.Request.Context(), userIDFromContext(c)).Session().Snapshot()
	if snap.Project == nil || snap.Project.Package == nil {
		writeError(c, http.StatusConflict, "INVALID_STATE", "Create a project first", false, nil)
		return
	}
	script, ok := snap.Project.Package.Script(c.Param("script_id"))
	if !ok {
		writeError(c, http.StatusNotFound, "SCRIPT_NOT_FOUND", "Script not found", false, nil)
		return
	}
	ref, err := s.speech.Synthesize(c.Request.Context(), script.Text, req.Voice)
	if err != nil {
		writeDomainError(c, err, nil)
		return
	}
	writeData(c, http.StatusCreated, ref)
}

func (s *Server) getCredentials(c *gin.Context) {
	writeData(c, http.StatusOK, s.keys.Status(c.Request.Context()))
}

type credentialsRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

func (s *Server) putCredentials(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "api_key is required", false, nil)
		return
	}
	if err := s.keys.SetKey(req.APIKey); err != nil {
		if errors.Is(err, auth.ErrEmptyKey) {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "api_key is required", false, nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store key", false, nil)
		return
	}
	s.log.Info("api_key_selected", "user_id", userIDFromContext(c))
	writeData(c, http.StatusOK, s.keys.Status(c.Request.Context()))
}

func (s *Server) getMedia(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	rc, mimeType, err := s.media.Open(c.Request.Context(), key)
	switch {
	case errors.Is(err, media.ErrNotFound), errors.Is(err, media.ErrInvalidKey):
		writeError(c, http.StatusNotFound, "MEDIA_NOT_FOUND", "Media not found", false, nil)
		return
	case err != nil:
		writeError(c, http.StatusBadGateway, "MEDIA_UNAVAILABLE", "Media could not be read", true, nil)
		return
	}
	defer rc.Close()
	c.Header("Content-Type", mimeType)
	c.Header("Cache-Control", "private, max-age=3600")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		s.log.Warn("media_stream_failed", "key", key, "error", err)
	}
}
