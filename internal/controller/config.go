package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by Validate and New for unusable configuration.
var ErrInvalidConfig = errors.New("invalid controller config")

// NotificationDefaults seeds every push notification before enrichment.
type NotificationDefaults struct {
	Title   string
	Body    string
	Icon    string
	Badge   string
	URL     string
	Vibrate []int
}

// Config is the controller's immutable configuration. New copies it, so
// callers may reuse or mutate their value afterwards.
type Config struct {
	// Version is the suffix shared by all partition names. Bumping it purges
	// the previous version's partitions on the next activation.
	Version string
	// CacheName is never written; it is kept in the activation allow-list.
	CacheName    string
	StaticCache  string
	DynamicCache string
	// PrecacheAssets are absolute paths fetched into StaticCache at install.
	PrecacheAssets []string
	// ShellDocument is served to navigations when the network fails.
	ShellDocument string
	// SettingsPath returns tenant branding (app_name, logo_url) for notifications.
	SettingsPath string
	// SettingsTimeout bounds the branding fetch so it never stalls a push.
	SettingsTimeout time.Duration
	// Origin is the public origin of the portal (scheme://host[:port]). When
	// empty every window client is treated as same-origin.
	Origin       string
	Notification NotificationDefaults
}

// NewConfig derives the three partition names from prefix and version and
// fills every other field with its default.
func NewConfig(prefix, version string) Config {
	return Config{
		Version:      version,
		CacheName:    fmt.Sprintf("%s-%s", prefix, version),
		StaticCache:  fmt.Sprintf("%s-static-%s", prefix, version),
		DynamicCache: fmt.Sprintf("%s-dynamic-%s", prefix, version),
		PrecacheAssets: []string{
			"/index.html",
			"/icons/icon-72x72.png",
			"/icons/icon-96x96.png",
			"/icons/icon-128x128.png",
			"/icons/icon-144x144.png",
			"/icons/icon-152x152.png",
			"/icons/icon-192x192.png",
			"/icons/icon-384x384.png",
			"/icons/icon-512x512.png",
			"/icons/apple-touch-icon-180x180.png",
		},
		ShellDocument:   "/index.html",
		SettingsPath:    "/api/settings",
		SettingsTimeout: 5 * time.Second,
		Notification: NotificationDefaults{
			Title:   "HR Portal",
			Body:    "You have a new notification",
			Icon:    "/icons/icon-192x192.png",
			Badge:   "/icons/icon-72x72.png",
			URL:     "/",
			Vibrate: []int{100, 50, 100},
		},
	}
}

// DefaultConfig is NewConfig("hr-portal", "v2").
func DefaultConfig() Config {
	return NewConfig("hr-portal", "v2")
}

// CurrentCaches is the activation allow-list.
func (c Config) CurrentCaches() []string {
	return []string{c.CacheName, c.StaticCache, c.DynamicCache}
}

// Validate reports the first problem found.
func (c Config) Validate() error {
	names := c.CurrentCaches()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("%w: empty partition name", ErrInvalidConfig)
		}
		if seen[n] {
			return fmt.Errorf("%w: duplicate partition name %q", ErrInvalidConfig, n)
		}
		seen[n] = true
	}
	for _, a := range c.PrecacheAssets {
		if !strings.HasPrefix(a, "/") {
			return fmt.Errorf("%w: precache asset %q is not an absolute path", ErrInvalidConfig, a)
		}
	}
	if !strings.HasPrefix(c.ShellDocument, "/") {
		return fmt.Errorf("%w: shell document %q is not an absolute path", ErrInvalidConfig, c.ShellDocument)
	}
	if !strings.HasPrefix(c.SettingsPath, "/") {
		return fmt.Errorf("%w: settings path %q is not an absolute path", ErrInvalidConfig, c.SettingsPath)
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.PrecacheAssets = append([]string(nil), c.PrecacheAssets...)
	out.Notification.Vibrate = append([]int(nil), c.Notification.Vibrate...)
	return out
}
