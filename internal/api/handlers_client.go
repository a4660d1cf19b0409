package api

import (
	"net/http"

	"github.com/sk88studiosinc-maker/Soulsound/internal/capture"
	"github.com/sk88studiosinc-maker/Soulsound/internal/platform"
	"github.com/sk88studiosinc-maker/Soulsound/internal/speech"
	"github.com/sk88studiosinc-maker/Soulsound/internal/view"

	"github.com/gin-gonic/gin"
)

func (s *Server) clientBootstrap(c *gin.Context) {
	filters := make([]gin.H, 0, len(capture.Filters()))
	for _, f := range capture.Filters() {
		d, _ := capture.Describe(f)
		filters = append(filters, gin.H{"name": f, "css": d.CSS})
	}
	writeData(c, http.StatusOK, gin.H{
		"video_styles":     platform.VideoStyles(),
		"social_platforms": platform.SocialPlatforms(),
		"camera_filters":   filters,
		"voices":           speech.Voices,
		"modes":            []view.Mode{view.Guided, view.Direct},
		"feature_flags": gin.H{
			"sse_project_events": true,
			"narration":          s.speech != nil,
			"capture_studio":     true,
		},
		"sse": gin.H{
			"heartbeat_sec": 15,
			"retry_ms":      2000,
		},
	})
}

func (s *Server) clientState(c *gin.Context) {
	ctl := s.sessions.Get(c.Request.Context(), userIDFromContext(c))
	writeData(c, http.StatusOK, ctl.State())
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
	// Choose also navigates to the dashboard, as on the landing page.
	Choose bool `json:"choose"`
}

func (s *Server) putMode(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "mode is required", false, nil)
		return
	}
	mode, ok := view.ParseMode(req.Mode)
	if !ok {
		writeError(c, http.StatusBadRequest, "INVALID_MODE", "Unknown mode", false, gin.H{"mode": req.Mode})
		return
	}
	ctl := s.sessions.Get(c.Request.Context(), userIDFromContext(c))
	if req.Choose {
		ctl.ChooseMode(mode)
	} else {
		ctl.SetMode(mode)
	}
	writeData(c, http.StatusOK, ctl.State())
}

type viewRequest struct {
	View string `json:"view" binding:"required"`
}

func (s *Server) putView(c *gin.Context) {
	if !requireJSON(c) {
		return
	}
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "view is required", false, nil)
		return
	}
	v, ok := view.ParseView(req.View)
	if !ok {
		writeError(c, http.StatusBadRequest, "INVALID_VIEW", "Unknown view", false, gin.H{"view": req.View})
		return
	}
	ctl := s.sessions.Get(c.Request.Context(), userIDFromContext(c))
	_ = ctl.Navigate(v)
	writeData(c, http.StatusOK, ctl.State())
}

func (s *Server) detectPlatform(c *gin.Context) {
	writeData(c, http.StatusOK, gin.H{"platform": platform.Detect(c.Query("url"))})
}
