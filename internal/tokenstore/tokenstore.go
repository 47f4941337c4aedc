// Package tokenstore persists the OAuth token set between invocations.
package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	serviceName  = "noll"
	tokenAccount = "oauth-token-set"
)

// TokenSet is the credential bundle returned by the Noll token endpoints.
type TokenSet struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the access token is unusable at now.
// A zero ExpiresAt means the lifetime is unknown and the token is kept.
func (t TokenSet) Expired(now time.Time) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(t.ExpiresAt)
}

// Store loads and saves a single TokenSet. Load returns (nil, nil) when
// nothing has been stored yet.
type Store interface {
	Load() (*TokenSet, error)
	Save(TokenSet) error
	Delete() error
}

// Keyring keeps the TokenSet as JSON in the OS keychain.
type Keyring struct {
	Service string
	Account string
}

func NewKeyring() *Keyring {
	return &Keyring{Service: serviceName, Account: tokenAccount}
}

func (k *Keyring) Load() (*TokenSet, error) {
	raw, err := keyring.Get(k.Service, k.Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keychain: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var ts TokenSet
	if err := json.Unmarshal([]byte(raw), &ts); err != nil {
		return nil, fmt.Errorf("stored token set is corrupt: %w", err)
	}
	return &ts, nil
}

func (k *Keyring) Save(ts TokenSet) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return fmt.Errorf("failed to encode token set: %w", err)
	}
	if err := keyring.Set(k.Service, k.Account, string(data)); err != nil {
		return fmt.Errorf("failed to write keychain: %w", err)
	}
	return nil
}

func (k *Keyring) Delete() error {
	err := keyring.Delete(k.Service, k.Account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keychain entry: %w", err)
	}
	return nil
}

// Memory is a process-local Store for tests.
type Memory struct {
	mu    sync.Mutex
	ts    *TokenSet
	Saves int
}

func NewMemory(initial *TokenSet) *Memory {
	m := &Memory{}
	if initial != nil {
		cp := *initial
		m.ts = &cp
	}
	return m
}

func (m *Memory) Load() (*TokenSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ts == nil {
		return nil, nil
	}
	cp := *m.ts
	return &cp, nil
}

func (m *Memory) Save(ts TokenSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ts = &ts
	m.Saves++
	return nil
}

func (m *Memory) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ts = nil
	return nil
}
