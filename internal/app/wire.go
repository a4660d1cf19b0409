package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sk88studiosinc-maker/Soulsound/internal/auth"
	"github.com/sk88studiosinc-maker/Soulsound/internal/events"
	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
	"github.com/sk88studiosinc-maker/Soulsound/internal/store"
)

// EventLog assigns sequence numbers and keeps the replay backlog.
type EventLog interface {
	AppendEvent(userID string, event model.ProjectEvent) model.ProjectEvent
}

// Services are the process-wide collaborators shared by every artist
// session.
type Services struct {
	Packages session.PackageBuilder
	Videos   session.VideoGenerator
	Keys     *auth.Keyring
	Store    store.ProjectStore
	Log      EventLog
	Hub      *events.Hub
	Logger   *slog.Logger
}

// Sink returns the event sink for one artist: log the event, then fan it out.
// Appends and publishes through one sink are serialised so subscribers see
// sequence numbers in order.
func (s Services) Sink(userID string) session.EventSink {
	var mu sync.Mutex
	return func(evt model.ProjectEvent) {
		mu.Lock()
		defer mu.Unlock()
		if s.Log != nil {
			evt = s.Log.AppendEvent(userID, evt)
		}
		if s.Hub != nil {
			s.Hub.Publish(userID, evt)
		}
	}
}

// SessionFactory builds sessions whose key prompt is delivered as a
// key_selection_required event on the artist's own stream.
func (s Services) SessionFactory() SessionFactory {
	return func(userID string) *session.Session {
		sink := s.Sink(userID)
		deps := session.Deps{
			Packages: s.Packages,
			Videos:   s.Videos,
			Store:    s.Store,
			Events:   sink,
			Logger:   s.Logger,
			UserID:   userID,
		}
		if s.Keys != nil {
			deps.Keys = auth.Prompted{Keyring: s.Keys, Prompt: func(context.Context) error {
				sink(model.ProjectEvent{
					UserID:  userID,
					Type:    model.EventKeyRequired,
					Payload: map[string]any{"message": "Select a paid API key to generate video."},
				})
				return nil
			}}
		}
		return session.New(deps)
	}
}
