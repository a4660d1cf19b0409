package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
)

const defaultEventBacklog = 500

type MemoryStore struct {
	mu sync.RWMutex

	users       map[string]model.User
	userByEmail map[string]string

	refreshTokens map[string]model.RefreshToken

	projects map[string]model.Project

	eventsByUser   map[string][]model.ProjectEvent
	eventSeqByUser map[string]int64
	eventBacklog   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          map[string]model.User{},
		userByEmail:    map[string]string{},
		refreshTokens:  map[string]model.RefreshToken{},
		projects:       map[string]model.Project{},
		eventsByUser:   map[string][]model.ProjectEvent{},
		eventSeqByUser: map[string]int64{},
		eventBacklog:   defaultEventBacklog,
	}
}

func (s *MemoryStore) UpsertUser(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	s.userByEmail[strings.ToLower(user.Email)] = user.ID
}

func (s *MemoryStore) GetUserByEmail(email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userByEmail[strings.ToLower(email)]
	if !ok {
		return model.User{}, ErrNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) GetUserByID(id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) SaveRefreshToken(tok model.RefreshToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens[tok.ID] = tok
}

func (s *MemoryStore) GetRefreshToken(id string) (model.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.refreshTokens[id]
	if !ok {
		return model.RefreshToken{}, ErrNotFound
	}
	return tok, nil
}

func (s *MemoryStore) RevokeRefreshToken(id string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.refreshTokens[id]
	if !ok {
		return ErrNotFound
	}
	tok.RevokedAt = &revokedAt
	s.refreshTokens[id] = tok
	return nil
}

func (s *MemoryStore) SaveProject(_ context.Context, userID string, project model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[userID] = project.Clone()
	return nil
}

func (s *MemoryStore) LoadProject(_ context.Context, userID string) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[userID]
	if !ok {
		return model.Project{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) DeleteProject(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, userID)
	return nil
}

// AppendEvent assigns the next per-user sequence number and keeps a bounded
// backlog for SSE replay.
func (s *MemoryStore) AppendEvent(userID string, event model.ProjectEvent) model.ProjectEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.eventSeqByUser[userID] + 1
	s.eventSeqByUser[userID] = seq
	event.Seq = seq
	event.UserID = userID
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.TS.IsZero() {
		event.TS = time.Now().UTC()
	}
	backlog := append(s.eventsByUser[userID], event)
	if len(backlog) > s.eventBacklog {
		backlog = append([]model.ProjectEvent(nil), backlog[len(backlog)-s.eventBacklog:]...)
	}
	s.eventsByUser[userID] = backlog
	return event
}

func (s *MemoryStore) ListEventsFromSeq(userID string, fromSeq int64) []model.ProjectEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ProjectEvent
	for _, evt := range s.eventsByUser[userID] {
		if evt.Seq > fromSeq {
			out = append(out, evt)
		}
	}
	return out
}
