package controller

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/metrics"
	"github.com/rs/zerolog/log"
)

// brandingSettings is the subset of the settings document used for branding.
type brandingSettings struct {
	AppName string `json:"app_name"`
	LogoURL string `json:"logo_url"`
}

// push builds a notification from defaults, tenant branding and the push
// payload, then shows it.
func (c *Controller) push(ctx context.Context, ev PushEvent) (Action, error) {
	n := c.defaultNotification()
	c.applyBranding(ctx, &n)
	if ev.HasData {
		mergePushData(&n, ev.Data)
	}

	if err := c.notifier.Show(ctx, n); err != nil {
		metrics.RecordNotification("error")
		return Action{}, err
	}
	metrics.RecordNotification("shown")
	return Action{Kind: ActionNotificationShown, Notification: &n}, nil
}

func (c *Controller) defaultNotification() model.NotificationPayload {
	d := c.cfg.Notification
	return model.NotificationPayload{
		Tag:     c.newTag(),
		Title:   d.Title,
		Body:    d.Body,
		Icon:    d.Icon,
		Badge:   d.Badge,
		Vibrate: append([]int(nil), d.Vibrate...),
		Data: model.NotificationData{
			DateOfArrival: c.now().UnixMilli(),
			URL:           d.URL,
		},
		Actions: []model.NotificationAction{
			{Action: model.ActionView, Title: "View"},
			{Action: model.ActionDismiss, Title: "Dismiss"},
		},
	}
}

// applyBranding overlays app_name and logo_url from the settings endpoint.
// Every failure keeps the defaults.
func (c *Controller) applyBranding(ctx context.Context, n *model.NotificationPayload) {
	if c.cfg.SettingsTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.SettingsTimeout)
		defer cancel()
	}

	req := NewGetRequest(c.cfg.SettingsPath, ModeCORS)
	resp, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		log.Debug().Err(err).Msg("Settings fetch failed, using default branding")
		return
	}
	if !resp.OK() {
		return
	}
	var s brandingSettings
	if err := json.Unmarshal(resp.Body, &s); err != nil {
		log.Debug().Err(err).Msg("Settings response is not JSON, using default branding")
		return
	}
	if s.AppName != "" {
		n.Title = s.AppName
	}
	if s.LogoURL != "" {
		n.Icon = s.LogoURL
		n.Badge = s.LogoURL
	}
}

// mergePushData merges a JSON object's title, body, icon, badge and url
// over n. Data that is not JSON becomes the body verbatim. Valid JSON that is
// not an object changes nothing.
func mergePushData(n *model.NotificationPayload, data []byte) {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		n.Body = string(data)
		return
	}
	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return
	}
	for field, dst := range map[string]*string{
		"title": &n.Title,
		"body":  &n.Body,
		"icon":  &n.Icon,
		"badge": &n.Badge,
		"url":   &n.Data.URL,
	} {
		if v, ok := obj[field].(string); ok {
			*dst = v
		}
	}
}

// notificationClick closes the notification and, for the body or "view",
// focuses a same-origin window at the target URL or opens a new one.
func (c *Controller) notificationClick(ctx context.Context, ev NotificationClickEvent) (Action, error) {
	if ev.Notification.Tag != "" {
		if err := c.notifier.Close(ctx, ev.Notification.Tag); err != nil {
			log.Warn().Err(err).Str("tag", ev.Notification.Tag).Msg("Failed to close notification")
		}
	}

	if ev.Action != "" && ev.Action != model.ActionView {
		return Action{Kind: ActionNone}, nil
	}

	target := ev.Notification.Data.URL
	if target == "" {
		target = c.cfg.Notification.URL
	}

	windows, err := c.clients.MatchAll(ctx, MatchOptions{IncludeUncontrolled: true, Type: ClientTypeWindow})
	if err != nil {
		return Action{}, err
	}
	for _, w := range windows {
		if !c.sameOrigin(w.URL) {
			continue
		}
		if err := c.clients.Navigate(ctx, w.ID, target); err != nil {
			return Action{}, err
		}
		if err := c.clients.Focus(ctx, w.ID); err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionClientFocused, ClientID: w.ID}, nil
	}

	id, err := c.clients.OpenWindow(ctx, target)
	if err != nil {
		return Action{}, err
	}
	return Action{Kind: ActionWindowOpened, ClientID: id}, nil
}

// sameOrigin compares scheme and host with the configured origin. Relative
// client URLs are same-origin by construction.
func (c *Controller) sameOrigin(raw string) bool {
	if c.cfg.Origin == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Host == "" {
		return true
	}
	origin, err := url.Parse(c.cfg.Origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, origin.Scheme) && strings.EqualFold(u.Host, origin.Host)
}

// message handles SKIP_WAITING and CLEAR_CACHE. Other types are ignored.
func (c *Controller) message(ctx context.Context, ev MessageEvent) (Action, error) {
	switch ev.Type {
	case MessageSkipWaiting:
		c.lifecycle.SkipWaiting()
		if c.lifecycle.State() == StateWaiting {
			return c.activate(ctx)
		}
		return Action{Kind: ActionNone}, nil
	case MessageClearCache:
		return c.clearCache(ctx)
	default:
		log.Debug().Str("type", ev.Type).Msg("Ignoring unknown message")
		return Action{Kind: ActionNone}, nil
	}
}
