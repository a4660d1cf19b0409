package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/oauth2/google"
)

var ErrEmptyKey = errors.New("api key is empty")

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// KeyStatus is what the artist sees about the selected credential.
type KeyStatus struct {
	Selected bool   `json:"selected"`
	Source   string `json:"source"`
	Hint     string `json:"hint,omitempty"`
}

// Keyring holds the generation-service credential the artist selected. With
// Vertex enabled, Application Default Credentials also count as a selection.
type Keyring struct {
	useVertex bool
	findADC   func(ctx context.Context, scopes ...string) (*google.Credentials, error)

	mu     sync.RWMutex
	key    string
	adc    *bool
	prompt func(ctx context.Context) error
}

func NewKeyring(initial string, useVertex bool) *Keyring {
	return &Keyring{
		key:       strings.TrimSpace(initial),
		useVertex: useVertex,
		findADC:   google.FindDefaultCredentials,
	}
}

func (k *Keyring) APIKey() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.key
}

func (k *Keyring) SetKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.key = key
	return nil
}

// OnSelect installs the hook that asks the artist for a key.
func (k *Keyring) OnSelect(fn func(ctx context.Context) error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.prompt = fn
}

func (k *Keyring) HasSelectedKey(ctx context.Context) (bool, error) {
	return k.Status(ctx).Selected, nil
}

// SelectKey opens the selection prompt. It does not wait for the artist to
// choose; callers proceed optimistically.
func (k *Keyring) SelectKey(ctx context.Context) error {
	k.mu.RLock()
	fn := k.prompt
	k.mu.RUnlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (k *Keyring) Status(ctx context.Context) KeyStatus {
	if key := k.APIKey(); key != "" {
		return KeyStatus{Selected: true, Source: "api_key", Hint: mask(key)}
	}
	if k.useVertex && k.hasADC(ctx) {
		return KeyStatus{Selected: true, Source: "application_default"}
	}
	return KeyStatus{Source: "none"}
}

func (k *Keyring) hasADC(ctx context.Context) bool {
	k.mu.RLock()
	cached := k.adc
	k.mu.RUnlock()
	if cached != nil {
		return *cached
	}
	_, err := k.findADC(ctx, cloudPlatformScope)
	ok := err == nil
	k.mu.Lock()
	k.adc = &ok
	k.mu.Unlock()
	return ok
}

func mask(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// Prompted binds a selection hook to a shared keyring, so each artist session
// can be asked in its own channel.
type Prompted struct {
	*Keyring
	Prompt func(ctx context.Context) error
}

func (p Prompted) SelectKey(ctx context.Context) error {
	if p.Prompt == nil {
		return p.Keyring.SelectKey(ctx)
	}
	return p.Prompt(ctx)
}
