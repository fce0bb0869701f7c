package lib

import (
	"context"
	"sync"
	"testing"

	shared "uniforum/shared"
	"uniforum/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTheme struct {
	mu    sync.Mutex
	calls []bool
}

func (r *recordingTheme) SetDarkMode(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, enabled)
}

func (r *recordingTheme) last() (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return false, false
	}
	return r.calls[len(r.calls)-1], true
}

func TestSettingsLoadMergesOverDefaults(t *testing.T) {
	remote := &fakeForum{
		getSettings: func() (shared.Settings, *shared.ApiError) {
			return shared.Settings{shared.SettingDarkMode: true}, nil
		},
	}
	theme := &recordingTheme{}
	cache := NewSettingsCache(remote, storage.NewMemStorage(), theme)

	settings, apiErr := cache.Load(context.Background())
	require.Nil(t, apiErr)

	expected := shared.DefaultSettings()
	expected[shared.SettingDarkMode] = true
	assert.Equal(t, expected, settings)

	dark, called := theme.last()
	assert.True(t, called)
	assert.True(t, dark)
}

func TestSettingsLoadFallsBackToLocalSnapshot(t *testing.T) {
	mem := storage.NewMemStorage()
	require.NoError(t, mem.Save(storage.KeySettings, shared.Settings{shared.SettingEmailNotifications: false}))

	remote := &fakeForum{
		getSettings: func() (shared.Settings, *shared.ApiError) { return nil, errOffline },
	}
	cache := NewSettingsCache(remote, mem, nil)

	settings, apiErr := cache.Load(context.Background())
	require.NotNil(t, apiErr)
	assert.False(t, settings.Get(shared.SettingEmailNotifications))
	assert.True(t, settings.Get(shared.SettingPushNotifications))
	assert.False(t, settings.DarkMode())
	assert.Equal(t, apiErr, cache.Err())
}

func TestSettingsUpdateKeepsChangeOnFailure(t *testing.T) {
	mem := storage.NewMemStorage()
	var sent shared.Settings
	remote := &fakeForum{
		updateSettings: func(s shared.Settings) (shared.Settings, *shared.ApiError) {
			sent = s
			return nil, errServer
		},
	}
	theme := &recordingTheme{}
	cache := NewSettingsCache(remote, mem, theme)

	var observed shared.Settings
	cache.OnChange(func(s shared.Settings) { observed = s })

	settings, apiErr := cache.Set(context.Background(), shared.SettingDarkMode, true)
	require.NotNil(t, apiErr)
	assert.True(t, settings.DarkMode())
	assert.True(t, cache.Get(shared.SettingDarkMode))
	assert.True(t, sent.DarkMode(), "the full bag is sent")
	assert.Len(t, sent, len(shared.DefaultSettings()))

	dark, _ := theme.last()
	assert.True(t, dark, "dark mode reaches the theme in the same call")
	assert.True(t, observed.DarkMode())

	var persisted shared.Settings
	found, err := mem.Load(storage.KeySettings, &persisted)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, persisted.DarkMode())

	// a fresh cache sees the persisted preference
	assert.True(t, NewSettingsCache(remote, mem, nil).Get(shared.SettingDarkMode))
}

func TestSettingsExtensionKeys(t *testing.T) {
	cache := NewSettingsCache(&fakeForum{}, nil, nil)

	assert.False(t, cache.Get("compactView"))
	settings, apiErr := cache.Update(context.Background(), shared.Settings{"compactView": true})
	require.Nil(t, apiErr)
	assert.True(t, settings.Get("compactView"))
	assert.True(t, settings.Get(shared.SettingPublicProfile))
}

func TestSettingsReset(t *testing.T) {
	mem := storage.NewMemStorage()
	cache := NewSettingsCache(&fakeForum{}, mem, nil)

	cache.Set(context.Background(), shared.SettingShowOnlineStatus, false)
	settings, apiErr := cache.Reset(context.Background())
	require.Nil(t, apiErr)
	assert.Equal(t, shared.DefaultSettings(), settings)
	assert.False(t, mem.Has(storage.KeySettings))
}
