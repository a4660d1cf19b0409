package api

import (
	"log/slog"
	"net/http"

	"github.com/sk88studiosinc-maker/Soulsound/internal/app"
	"github.com/sk88studiosinc-maker/Soulsound/internal/auth"
	"github.com/sk88studiosinc-maker/Soulsound/internal/events"
	"github.com/sk88studiosinc-maker/Soulsound/internal/media"
	"github.com/sk88studiosinc-maker/Soulsound/internal/speech"
	"github.com/sk88studiosinc-maker/Soulsound/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
)

type Deps struct {
	Auth     *auth.Service
	Accounts *store.MemoryStore
	Sessions *app.Registry
	Hub      *events.Hub
	Keys     *auth.Keyring
	Speech   *speech.Synthesizer
	Media    media.Store
	Logger   *slog.Logger

	AllowedOrigins []string
}

type Server struct {
	auth     *auth.Service
	accounts *store.MemoryStore
	sessions *app.Registry
	hub      *events.Hub
	keys     *auth.Keyring
	speech   *speech.Synthesizer
	media    media.Store
	log      *slog.Logger
	origins  []string
}

func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		auth:     d.Auth,
		accounts: d.Accounts,
		sessions: d.Sessions,
		hub:      d.Hub,
		keys:     d.Keys,
		speech:   d.Speech,
		media:    d.Media,
		log:      logger,
		origins:  d.AllowedOrigins,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(s.log))

	v1 := r.Group("/api/v1")
	v1.GET("/healthz", func(c *gin.Context) {
		writeData(c, 200, gin.H{"status": "ok"})
	})

	v1.POST("/auth/login", s.login)
	v1.POST("/auth/refresh", s.refresh)

	// Media keys are unguessable and the URLs end up in <video> tags.
	v1.GET("/media/*key", s.getMedia)

	authed := v1.Group("")
	authed.Use(AuthMiddleware(s.auth))
	{
		authed.GET("/client/bootstrap", s.clientBootstrap)
		authed.GET("/client/state", s.clientState)
		authed.PUT("/client/mode", s.putMode)
		authed.PUT("/client/view", s.putView)
		authed.POST("/auth/logout", s.logout)
		authed.GET("/me", s.me)

		authed.GET("/platforms/detect", s.detectPlatform)

		authed.POST("/project", s.submitProject)
		authed.GET("/project", s.getProject)
		authed.DELETE("/project", s.resetProject)
		authed.POST("/project/videos", s.startVideo)
		authed.PUT("/project/active-clip", s.setActiveClip)
		authed.GET("/project/events", s.streamProjectEvents)
		authed.POST("/project/scripts/:script_id/speech", s.synthesizeScript)

		authed.GET("/credentials", s.getCredentials)
		authed.PUT("/credentials", s.putCredentials)
	}

	return r
}

// Handler is the router behind CORS for the browser client.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Last-Event-ID", "X-Trace-Id"}),
		handlers.ExposedHeaders([]string{"X-Trace-Id"}),
	)
	return cors(s.Router())
}
