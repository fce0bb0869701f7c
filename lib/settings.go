package lib

import (
	"context"
	"log"
	"sync"

	shared "uniforum/shared"
	"uniforum/storage"
)

type SettingsRemote interface {
	GetSettings(ctx context.Context) (shared.Settings, *shared.ApiError)
	UpdateSettings(ctx context.Context, settings shared.Settings) (shared.Settings, *shared.ApiError)
}

// Theme receives dark mode changes as they happen.
type Theme interface {
	SetDarkMode(enabled bool)
}

// SettingsCache holds the preference bag, merged over defaults. Every change
// is saved locally whether or not the server accepts it.
type SettingsCache struct {
	client SettingsRemote
	store  storage.Storage
	theme  Theme

	mu        sync.Mutex
	settings  shared.Settings
	loading   bool
	err       *shared.ApiError
	listeners []func(shared.Settings)
}

// NewSettingsCache starts from the local snapshot, if any. store and theme
// may be nil.
func NewSettingsCache(client SettingsRemote, store storage.Storage, theme Theme) *SettingsCache {
	c := &SettingsCache{
		client: client,
		store:  store,
		theme:  theme,
	}
	c.settings = shared.MergeSettings(c.localSnapshot())
	return c
}

func (c *SettingsCache) localSnapshot() shared.Settings {
	if c.store == nil {
		return nil
	}
	var snapshot shared.Settings
	_, err := c.store.Load(storage.KeySettings, &snapshot)
	if err != nil {
		log.Printf("Error loading local settings: %v\n", err)
		return nil
	}
	return snapshot
}

func (c *SettingsCache) saveLocked() {
	if c.store == nil {
		return
	}
	err := c.store.Save(storage.KeySettings, c.settings)
	if err != nil {
		log.Printf("Error saving local settings: %v\n", err)
	}
}

func (c *SettingsCache) OnChange(fn func(shared.Settings)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// apply pushes dark mode into the theme and notifies listeners.
func (c *SettingsCache) apply(settings shared.Settings) {
	if c.theme != nil {
		c.theme.SetDarkMode(settings.DarkMode())
	}

	c.mu.Lock()
	listeners := make([]func(shared.Settings), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(settings.Clone())
	}
}

func (c *SettingsCache) Settings() shared.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.Clone()
}

func (c *SettingsCache) Get(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.Get(key)
}

func (c *SettingsCache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *SettingsCache) Err() *shared.ApiError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Load fetches the remote bag and merges it over the defaults. When the
// server is unreachable the last local snapshot is used instead.
func (c *SettingsCache) Load(ctx context.Context) (shared.Settings, *shared.ApiError) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	remote, apiErr := c.client.GetSettings(ctx)

	var merged shared.Settings
	if apiErr != nil {
		log.Printf("Error loading settings, using local copy: %v\n", apiErr)
		merged = shared.MergeSettings(c.localSnapshot())
	} else {
		merged = shared.MergeSettings(remote)
	}

	c.mu.Lock()
	c.loading = false
	c.err = apiErr
	c.settings = merged
	c.saveLocked()
	result := c.settings.Clone()
	c.mu.Unlock()

	c.apply(result)
	return result, apiErr
}

// Update merges partial into the current bag and saves it locally before
// syncing. A failed sync keeps the change.
func (c *SettingsCache) Update(ctx context.Context, partial shared.Settings) (shared.Settings, *shared.ApiError) {
	c.mu.Lock()
	c.settings = shared.MergeSettings(c.settings, partial)
	c.saveLocked()
	full := c.settings.Clone()
	c.mu.Unlock()

	c.apply(full)

	_, apiErr := c.client.UpdateSettings(ctx, full)

	c.mu.Lock()
	c.err = apiErr
	c.mu.Unlock()

	if apiErr != nil {
		log.Printf("Error saving settings remotely, kept locally: %v\n", apiErr)
	}
	return full, apiErr
}

// Set is Update for a single key.
func (c *SettingsCache) Set(ctx context.Context, key string, value bool) (shared.Settings, *shared.ApiError) {
	return c.Update(ctx, shared.Settings{key: value})
}

// Reset restores the defaults locally and on the server.
func (c *SettingsCache) Reset(ctx context.Context) (shared.Settings, *shared.ApiError) {
	c.mu.Lock()
	c.settings = shared.DefaultSettings()
	if c.store != nil {
		if err := c.store.Remove(storage.KeySettings); err != nil {
			log.Printf("Error removing local settings: %v\n", err)
		}
	}
	full := c.settings.Clone()
	c.mu.Unlock()

	c.apply(full)

	_, apiErr := c.client.UpdateSettings(ctx, full)
	c.mu.Lock()
	c.err = apiErr
	c.mu.Unlock()
	return full, apiErr
}

// Clear drops local settings without telling the server. Called on
// sign-out.
func (c *SettingsCache) Clear() {
	c.mu.Lock()
	c.settings = shared.DefaultSettings()
	c.err = nil
	if c.store != nil {
		if err := c.store.Remove(storage.KeySettings); err != nil {
			log.Printf("Error removing local settings: %v\n", err)
		}
	}
	full := c.settings.Clone()
	c.mu.Unlock()

	c.apply(full)
}
