package auth

import (
	"fmt"
	"log"
	"sync"

	"uniforum/storage"
	"uniforum/types"
)

type persistedAuth struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Credentials is the persisted access/refresh token pair. It is loaded
// lazily from storage on first use.
type Credentials struct {
	store storage.Storage

	mu      sync.Mutex
	loaded  bool
	current persistedAuth
}

var _ types.TokenStore = (*Credentials)(nil)

func NewCredentials(store storage.Storage) *Credentials {
	return &Credentials{store: store}
}

func (c *Credentials) loadLocked() {
	if c.loaded {
		return
	}
	c.loaded = true

	var stored persistedAuth
	found, err := c.store.Load(storage.KeyAuth, &stored)
	if err != nil {
		log.Printf("Error loading credentials, ignoring them: %v\n", err)
		return
	}
	if found {
		c.current = stored
	}
}

func (c *Credentials) Tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()
	return c.current.Access, c.current.Refresh
}

func (c *Credentials) SetTokens(access, refresh string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true

	next := persistedAuth{Access: access, Refresh: refresh}
	err := c.store.Save(storage.KeyAuth, next)
	if err != nil {
		return fmt.Errorf("error storing credentials: %v", err)
	}
	c.current = next
	return nil
}

func (c *Credentials) ClearTokens() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	c.current = persistedAuth{}

	err := c.store.Remove(storage.KeyAuth)
	if err != nil {
		return fmt.Errorf("error removing credentials: %v", err)
	}
	return nil
}

func (c *Credentials) HasAccessToken() bool {
	access, _ := c.Tokens()
	return access != ""
}
