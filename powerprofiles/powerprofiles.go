// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package powerprofiles watches and drives power-profiles-daemon.
package powerprofiles

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-panel-state/common/busconn"
	"github.com/linuxdeepin/dde-panel-state/common/dbusprop"
	"github.com/linuxdeepin/dde-panel-state/common/feed"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

const (
	dbusServiceName = "net.hadess.PowerProfiles"
	dbusPath        = "/net/hadess/PowerProfiles"
	dbusInterface   = dbusServiceName

	propActiveProfile = "ActiveProfile"
	propProfiles      = "Profiles"
)

var logger = log.NewLogger("panel-state/powerprofiles")

var _ feed.Source[PowerProfileInfo] = Source

// Stream emits the cached active profile each time the daemon announces a
// change. Nothing is emitted for the profile that is active at subscription
// time.
func Stream(ctx context.Context, props dbusprop.Properties) <-chan PowerProfileInfo {
	return feed.Map(ctx, props.Changed(ctx, propActiveProfile), func(struct{}) PowerProfileInfo {
		name := dbusprop.GetOr[string](props, propActiveProfile)
		profile := ParsePowerProfile(name)
		if profile == Unknown {
			logger.Debugf("unknown profile %q", name)
		}
		return PowerProfileInfo{Active: profile}
	})
}

func open(ctx context.Context) (*dbusprop.Object, func(), error) {
	conn, err := busconn.OpenService(ctx, busconn.System, dbusServiceName)
	if err != nil {
		return nil, nil, err
	}
	loop := dbusutil.NewSignalLoop(conn, 10)
	loop.Start()

	obj, err := dbusprop.NewObject(ctx, loop, dbusServiceName, dbusPath, dbusInterface)
	if err != nil {
		loop.Stop()
		_ = conn.Close()
		return nil, nil, err
	}
	release := func() {
		obj.Destroy()
		loop.Stop()
		_ = conn.Close()
	}
	return obj, release, nil
}

// Source connects to power-profiles-daemon on a new system bus connection.
func Source(ctx context.Context) (<-chan PowerProfileInfo, error) {
	obj, release, err := open(ctx)
	if err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		release()
	}()
	return Stream(ctx, obj), nil
}

// SetProfile makes profile the active one.
func SetProfile(ctx context.Context, profile PowerProfile) error {
	if profile == Unknown {
		return xerrors.New("cannot activate the unknown profile")
	}
	obj, release, err := open(ctx)
	if err != nil {
		return err
	}
	defer release()

	err = obj.Set(ctx, propActiveProfile, profile.String())
	if err != nil {
		return xerrors.Errorf("set active profile %s: %w", profile, err)
	}
	logger.Info("set active profile", profile)
	return nil
}

// Profiles lists the profiles the daemon offers, in the daemon's order.
func Profiles(ctx context.Context) ([]PowerProfile, error) {
	obj, release, err := open(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return parseProfiles(obj)
}

func parseProfiles(props dbusprop.Properties) ([]PowerProfile, error) {
	entries, err := dbusprop.Get[[]map[string]dbus.Variant](props, propProfiles)
	if err != nil {
		return nil, err
	}
	result := make([]PowerProfile, 0, len(entries))
	for _, entry := range entries {
		v, ok := entry["Profile"]
		if !ok {
			continue
		}
		name, ok := v.Value().(string)
		if !ok {
			continue
		}
		result = append(result, ParsePowerProfile(name))
	}
	return result, nil
}
