package api

import (
	"errors"
	"net/http"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/platform"
	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
	"github.com/sk88studiosinc-maker/Soulsound/internal/store"

	"github.com/gin-gonic/gin"
)

type submitRequest struct {
	Link            string   `json:"link"`
	Mood            string   `json:"mood"`
	TargetPlatforms []string `json:"target_platforms"`
	Style           string   `json:"style"`
}

func (s *Server) submitProject(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid project payload", false, nil)
		return
	}
	in := session.SubmitInput{Link: req.Link, Mood: req.Mood, Style: model.StyleCinematic}
	if req.Style != "" {
		style, ok := platform.ParseVideoStyle(req.Style)
		if !ok {
			writeError(c, http.StatusBadRequest, "INVALID_STYLE", "Unknown video style", false, gin.H{"style": req.Style})
			return
		}
		in.Style = style
	}
	for _, raw := range req.TargetPlatforms {
		p, ok := platform.ParseSocialPlatform(raw)
		if !ok {
			writeError(c, http.StatusBadRequest, "INVALID_PLATFORM", "Unknown social platform", false, gin.H{"platform": raw})
			return
		}
		in.TargetPlatforms = append(in.TargetPlatforms, p)
	}

	ctl := s.sessions.Get(c.Request.Context(), userIDFromContext(c))
	snap, err := ctl.Session().Submit(c.Request.Context(), in)
	if err != nil {
		writeDomainError(c, err, &snap)
		return
	}
	writeData(c, http.StatusCreated, snap)
}

func (s *Server) getProject(c *gin.Context) {
	ctl := s.sessions.Get(c.Request.Context(), userIDFromContext(c))
	writeData(c, http.StatusOK, ctl.Session().Snapshot())
}

func (s *Server) resetProject(c *gin.Context) {
	ctl := s.sessions.Get(c.Request.Context(), userIDFromContext(c))
	writeData(c, http.StatusOK, ctl.Reset().Project)
}

// startVideo returns as soon as generation begins; progress arrives on the
// event stream.
func (s *Server) startVideo(c *gin.Context) {
	ctl := s.sessions.Get(c.Request.Context(), userIDFromContext(c))
	snap, err := ctl.Session().RequestVideo(c.Request.Context())
	if err != nil {
		writeDomainError(c, err, &snap)
		return
	}
	writeData(c, http.StatusAccepted, snap)
}

type activeClipRequest struct {
	ClipID string `json:"clip_id" binding:"required"`
}

func (s *Server) setActiveClip(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req activeClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "clip_id is required", false, nil)
		return
	}
	ctl := s.sessions.Get(c.Request.Context(), userIDFromContext(c))
	snap, err := ctl.Session().SetActiveClip(req.ClipID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "CLIP_NOT_FOUND", "Clip not found", false, nil)
		return
	}
	if err != nil {
		writeDomainError(c, err, &snap)
		return
	}
	writeData(c, http.StatusOK, snap)
}
