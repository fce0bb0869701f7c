package shared

import "sort"

const (
	SettingEmailNotifications   = "emailNotifications"
	SettingPushNotifications    = "pushNotifications"
	SettingMentionNotifications = "mentionNotifications"
	SettingPublicProfile        = "publicProfile"
	SettingShowOnlineStatus     = "showOnlineStatus"
	SettingDarkMode             = "darkMode"
)

// Settings is the per-session preference bag. Documented keys fall back to
// DefaultSettings; unknown extension keys default to false.
type Settings map[string]bool

func DefaultSettings() Settings {
	return Settings{
		SettingEmailNotifications:   true,
		SettingPushNotifications:    true,
		SettingMentionNotifications: true,
		SettingPublicProfile:        true,
		SettingShowOnlineStatus:     true,
		SettingDarkMode:             false,
	}
}

func IsDocumentedSetting(key string) bool {
	_, ok := DefaultSettings()[key]
	return ok
}

// MergeSettings layers each overlay on top of the defaults, later overlays
// winning.
func MergeSettings(overlays ...Settings) Settings {
	merged := DefaultSettings()
	for _, o := range overlays {
		for k, v := range o {
			merged[k] = v
		}
	}
	return merged
}

func (s Settings) Get(key string) bool {
	if v, ok := s[key]; ok {
		return v
	}
	return DefaultSettings()[key]
}

func (s Settings) DarkMode() bool {
	return s.Get(SettingDarkMode)
}

func (s Settings) PushNotifications() bool {
	return s.Get(SettingPushNotifications)
}

func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	c := make(Settings, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
