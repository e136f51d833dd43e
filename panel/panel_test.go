// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package panel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linuxdeepin/dde-panel-state/backlight"
	"github.com/linuxdeepin/dde-panel-state/brightness1"
	"github.com/linuxdeepin/dde-panel-state/common/feed"
	"github.com/linuxdeepin/dde-panel-state/powerprofiles"
	"github.com/linuxdeepin/dde-panel-state/upower"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileAuthority struct {
	root string
}

func (a fileAuthority) SetBrightness(ctx context.Context, subsystem, name string, value uint32) error {
	filename := filepath.Join(a.root, subsystem, name, "brightness")
	return os.WriteFile(filename, []byte(strconv.Itoa(int(value))+"\n"), 0644)
}

func addDevice(t *testing.T, root, name, max string) backlight.Handle {
	t.Helper()
	dir := filepath.Join(root, backlight.SubsystemBacklight, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(max), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte("0\n"), 0644))
	return backlight.Handle{Subsystem: backlight.SubsystemBacklight, Name: name, SysfsPath: dir}
}

func failingSource[T any](ctx context.Context) (<-chan T, error) {
	return nil, errors.New("bus unavailable")
}

func sliceSource[T any](values ...T) feed.Source[T] {
	return func(ctx context.Context) (<-chan T, error) {
		return feed.Chain(ctx, values, nil), nil
	}
}

func TestSetBrightnessWithoutDevice(t *testing.T) {
	p := New(nil)
	assert.Equal(t, int32(-1), p.SetBrightness(context.Background(), 100))
}

func TestSetBrightnessEndToEnd(t *testing.T) {
	root := t.TempDir()
	auth := fileAuthority{root: root}
	handles := []backlight.Handle{
		addDevice(t, root, "a", "100\n"),
		addDevice(t, root, "b", "400\n"),
	}
	device := backlight.ChooseBest(handles, auth, backlight.DefaultMinPercent)
	require.NotNil(t, device)
	assert.Equal(t, "b", device.Name())

	var writes int32
	p := New(device, WithBrightnessWritten(func() { atomic.AddInt32(&writes, 1) }))

	assert.Equal(t, int32(400), p.SetBrightness(context.Background(), 1000))
	data, err := os.ReadFile(device.BrightnessFile())
	require.NoError(t, err)
	assert.Equal(t, "400\n", string(data))

	assert.Equal(t, int32(40), p.SetBrightness(context.Background(), -5))
	assert.Equal(t, int32(2), atomic.LoadInt32(&writes))
}

func TestSetVolume(t *testing.T) {
	p := New(nil)
	assert.Equal(t, uint32(42), p.SetVolume(42))
}

func TestProfileCommands(t *testing.T) {
	var got []powerprofiles.PowerProfile
	p := New(nil, WithProfileSetter(func(ctx context.Context, profile powerprofiles.PowerProfile) error {
		got = append(got, profile)
		return nil
	}))

	require.NoError(t, p.SetProfile(context.Background(), powerprofiles.Performance))
	next, err := p.ToggleProfile(context.Background(), powerprofiles.Performance)
	require.NoError(t, err)
	assert.Equal(t, powerprofiles.PowerSaver, next)
	assert.Equal(t, []powerprofiles.PowerProfile{powerprofiles.Performance, powerprofiles.PowerSaver}, got)

	failing := New(nil, WithProfileSetter(func(context.Context, powerprofiles.PowerProfile) error {
		return errors.New("denied")
	}))
	next, err = failing.ToggleProfile(context.Background(), powerprofiles.Balanced)
	assert.Error(t, err)
	assert.Equal(t, powerprofiles.Balanced, next)
}

func TestNextProfile(t *testing.T) {
	assert.Equal(t, powerprofiles.Balanced, NextProfile(powerprofiles.PowerSaver))
	assert.Equal(t, powerprofiles.Performance, NextProfile(powerprofiles.Balanced))
	assert.Equal(t, powerprofiles.PowerSaver, NextProfile(powerprofiles.Performance))
	assert.Equal(t, powerprofiles.Balanced, NextProfile(powerprofiles.Unknown))
}

func TestFeeds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(nil,
		WithBatterySource(sliceSource(upower.Available(true, 47, 5400))),
		WithProfileSource(sliceSource(powerprofiles.PowerProfileInfo{Active: powerprofiles.Performance})),
		WithBrightnessSource(sliceSource(brightness1.DisplayInfo{Current: 120, Max: 400, Min: 40})),
	)

	battery, err := p.BatteryFeed(ctx, "main").Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, upower.Available(true, 47, 5400), battery)

	profile, err := p.ProfileFeed(ctx, "main").Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, powerprofiles.Performance, profile.Active)

	brightness, err := p.BrightnessFeed(ctx, "main").Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(120), brightness.Current)

	assert.Equal(t, feed.StateSubscribed, p.FeedStates("main")["battery"])
	assert.Equal(t, feed.StateIdle, p.FeedStates("other")["battery"])
}

func TestFeedConnectionFailureIsSilent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := New(nil,
		WithBatterySource(failingSource[upower.BatteryInfo]),
		WithProfileSource(sliceSource(powerprofiles.PowerProfileInfo{Active: powerprofiles.PowerSaver})),
	)
	batteryFeed := p.BatteryFeed(ctx, "main")
	profileFeed := p.ProfileFeed(ctx, "main")

	// a failing concern does not hold up the others
	profile, err := profileFeed.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, powerprofiles.PowerSaver, profile.Active)

	assert.Eventually(t, func() bool {
		return p.FeedStates("main")["battery"] == feed.StatePermanentlySilent
	}, time.Second, 10*time.Millisecond)

	waitCtx, waitCancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer waitCancel()
	_, err = batteryFeed.Next(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStateFold(t *testing.T) {
	s := NewState()
	assert.False(t, s.BatteryAvailable)
	assert.True(t, s.OnBattery)
	assert.Equal(t, powerprofiles.Balanced, s.ActiveProfile)
	assert.Equal(t, brightness1.Unavailable(), s.Brightness)
	assert.Equal(t, uint32(100), s.MasterVolume)

	s.ApplyBattery(upower.Available(false, 80, 0))
	assert.True(t, s.BatteryAvailable)
	assert.False(t, s.OnBattery)
	assert.Equal(t, 80.0, s.Percentage)

	s.ApplyBattery(upower.Unavailable())
	assert.False(t, s.BatteryAvailable)
	assert.Equal(t, 80.0, s.Percentage)

	s.ApplyProfile(powerprofiles.PowerProfileInfo{Active: powerprofiles.PowerSaver})
	assert.Equal(t, powerprofiles.PowerSaver, s.ActiveProfile)

	s.ApplyBrightness(brightness1.DisplayInfo{Current: 100, Max: 400, Min: 40})
	s.ApplyBrightnessResult(250)
	assert.Equal(t, brightness1.DisplayInfo{Current: 250, Max: 400, Min: 40}, s.Brightness)

	s.ApplyVolume(30)
	assert.Equal(t, uint32(30), s.MasterVolume)
}
