package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
	"github.com/sk88studiosinc-maker/Soulsound/internal/view"
)

// Controller is the top-level application object. It owns the navigation
// state and the project session; views only ever see snapshots.
type Controller struct {
	session *session.Session
	log     *slog.Logger

	mu   sync.RWMutex
	mode view.Mode
	view view.View
}

type State struct {
	Mode    view.Mode        `json:"mode"`
	View    view.View        `json:"view"`
	Screen  view.Screen      `json:"screen"`
	Project session.Snapshot `json:"project"`
}

func NewController(s *session.Session, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{session: s, log: logger, mode: view.Guided, view: view.Onboarding}
}

func (c *Controller) Session() *session.Session { return c.session }

// ChooseMode is the landing-page action: set the experience level and open
// the dashboard.
func (c *Controller) ChooseMode(m view.Mode) {
	c.mu.Lock()
	c.mode = m
	c.view = view.Dashboard
	c.mu.Unlock()
	c.log.Info("mode_chosen", "mode", m)
}

// SetMode toggles the experience level without navigating.
func (c *Controller) SetMode(m view.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

func (c *Controller) Navigate(v view.View) error {
	parsed, ok := view.ParseView(string(v))
	if !ok {
		return fmt.Errorf("unknown view %q", v)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = parsed
	return nil
}

func (c *Controller) Screen() view.Screen {
	return c.State().Screen
}

func (c *Controller) State() State {
	snap := c.session.Snapshot()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		Mode:    c.mode,
		View:    c.view,
		Screen:  view.Route(c.view, c.mode, snap.Project != nil),
		Project: snap,
	}
}

// Reset starts a new project and returns to the dashboard.
func (c *Controller) Reset() State {
	c.session.Reset()
	c.mu.Lock()
	if c.view == view.Reflection {
		c.view = view.Dashboard
	}
	c.mu.Unlock()
	return c.State()
}

func (c *Controller) Close() {
	c.session.Close()
}

// SessionFactory builds the session for one artist.
type SessionFactory func(userID string) *session.Session

// Registry holds one controller per signed-in artist.
type Registry struct {
	newSession SessionFactory
	log        *slog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewRegistry(factory SessionFactory, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{newSession: factory, log: logger, controllers: map[string]*Controller{}}
}

// Get returns the artist's controller, restoring any persisted project the
// first time it is created.
func (r *Registry) Get(ctx context.Context, userID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[userID]; ok {
		return c
	}
	s := r.newSession(userID)
	if err := s.Restore(ctx); err != nil {
		r.log.Warn("project_restore_failed", "user_id", userID, "error", err)
	}
	c := NewController(s, r.log.With("user_id", userID))
	r.controllers[userID] = c
	return c
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.controllers {
		c.Close()
		delete(r.controllers, id)
	}
}
