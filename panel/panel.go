// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package panel is the surface the panel UI talks to: keyed feeds of
// battery, power profile and brightness events, and the commands the UI
// may issue.
package panel

import (
	"context"

	"github.com/linuxdeepin/dde-panel-state/backlight"
	"github.com/linuxdeepin/dde-panel-state/brightness1"
	"github.com/linuxdeepin/dde-panel-state/common/feed"
	"github.com/linuxdeepin/dde-panel-state/powerprofiles"
	"github.com/linuxdeepin/dde-panel-state/upower"
	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("panel-state/panel")

type Panel struct {
	device *backlight.Device

	battery    *feed.Registry[upower.BatteryInfo]
	profile    *feed.Registry[powerprofiles.PowerProfileInfo]
	brightness *feed.Registry[brightness1.DisplayInfo]

	setProfile        func(context.Context, powerprofiles.PowerProfile) error
	onBrightnessWrite func()
}

type Option func(*Panel)

func WithBatterySource(src feed.Source[upower.BatteryInfo]) Option {
	return func(p *Panel) {
		p.battery = feed.NewRegistry("battery", src)
	}
}

func WithProfileSource(src feed.Source[powerprofiles.PowerProfileInfo]) Option {
	return func(p *Panel) {
		p.profile = feed.NewRegistry("profile", src)
	}
}

func WithBrightnessSource(src feed.Source[brightness1.DisplayInfo]) Option {
	return func(p *Panel) {
		p.brightness = feed.NewRegistry("brightness", src)
	}
}

// WithProfileSetter replaces the power-profiles-daemon call of SetProfile.
func WithProfileSetter(fn func(context.Context, powerprofiles.PowerProfile) error) Option {
	return func(p *Panel) {
		p.setProfile = fn
	}
}

// WithBrightnessWritten registers fn to run after every brightness write.
func WithBrightnessWritten(fn func()) Option {
	return func(p *Panel) {
		p.onBrightnessWrite = fn
	}
}

// New returns a panel controlling device, which may be nil when the
// machine has no backlight.
func New(device *backlight.Device, opts ...Option) *Panel {
	p := &Panel{
		device:     device,
		battery:    feed.NewRegistry("battery", upower.Source),
		profile:    feed.NewRegistry("profile", powerprofiles.Source),
		brightness: feed.NewRegistry("brightness", brightness1.Source),
		setProfile: powerprofiles.SetProfile,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BatteryFeed subscribes to battery events. Subscriptions sharing key share
// one bus connection.
func (p *Panel) BatteryFeed(ctx context.Context, key string) *feed.Feed[upower.BatteryInfo] {
	return p.battery.Subscribe(ctx, key)
}

func (p *Panel) ProfileFeed(ctx context.Context, key string) *feed.Feed[powerprofiles.PowerProfileInfo] {
	return p.profile.Subscribe(ctx, key)
}

func (p *Panel) BrightnessFeed(ctx context.Context, key string) *feed.Feed[brightness1.DisplayInfo] {
	return p.brightness.Subscribe(ctx, key)
}

// FeedStates reports the connection state of each concern under key.
func (p *Panel) FeedStates(key string) map[string]feed.State {
	return map[string]feed.State{
		"battery":    p.battery.State(key),
		"profile":    p.profile.State(key),
		"brightness": p.brightness.State(key),
	}
}
