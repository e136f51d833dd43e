// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package powerprofiles

import (
	"context"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-panel-state/common/dbusprop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePowerProfile(t *testing.T) {
	assert.Equal(t, PowerSaver, ParsePowerProfile("power-saver"))
	assert.Equal(t, Balanced, ParsePowerProfile("balanced"))
	assert.Equal(t, Performance, ParsePowerProfile("performance"))

	for _, s := range []string{"", "Balanced", "powersave", "performance ", "low-power", "balance"} {
		assert.Equal(t, Unknown, ParsePowerProfile(s), s)
	}
}

func TestProfileNames(t *testing.T) {
	for _, p := range []PowerProfile{PowerSaver, Balanced, Performance} {
		assert.Equal(t, p, ParsePowerProfile(p.String()))
	}
	assert.Equal(t, "", Unknown.String())
	assert.Equal(t, "Power Saver", PowerSaver.Label())
	assert.Equal(t, "Unknown", Unknown.Label())
	assert.Equal(t, Balanced, DefaultPowerProfile)
}

func TestStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	props := dbusprop.NewCache(dbusInterface, map[string]dbus.Variant{
		propActiveProfile: dbus.MakeVariant("balanced"),
	})
	c := Stream(ctx, props)

	select {
	case info := <-c:
		t.Fatalf("unexpected initial event %v", info)
	case <-time.After(50 * time.Millisecond):
	}

	updates := []string{"performance", "power-saver", "turbo"}
	go func() {
		for _, name := range updates {
			props.Update(map[string]dbus.Variant{propActiveProfile: dbus.MakeVariant(name)}, nil)
		}
	}()

	var got []PowerProfile
	for range updates {
		select {
		case info := <-c:
			got = append(got, info.Active)
		case <-time.After(time.Second):
			t.Fatal("no profile event")
		}
	}
	// each event reads the cache after its wake-up, so a fast sequence may
	// surface a later value early
	require.Len(t, got, 3)
	assert.Equal(t, Unknown, got[2])
}

func TestStreamIgnoresOtherProperties(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	props := dbusprop.NewCache(dbusInterface, nil)
	c := Stream(ctx, props)
	go props.Update(map[string]dbus.Variant{"PerformanceDegraded": dbus.MakeVariant("lap-detected")}, nil)

	select {
	case info := <-c:
		t.Fatalf("unexpected event %v", info)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestParseProfiles(t *testing.T) {
	props := dbusprop.NewCache(dbusInterface, map[string]dbus.Variant{
		propProfiles: dbus.MakeVariant([]map[string]dbus.Variant{
			{"Profile": dbus.MakeVariant("power-saver"), "Driver": dbus.MakeVariant("platform_profile")},
			{"Profile": dbus.MakeVariant("balanced")},
			{"Driver": dbus.MakeVariant("placeholder")},
			{"Profile": dbus.MakeVariant("performance")},
		}),
	})
	profiles, err := parseProfiles(props)
	require.NoError(t, err)
	assert.Equal(t, []PowerProfile{PowerSaver, Balanced, Performance}, profiles)

	_, err = parseProfiles(dbusprop.NewCache(dbusInterface, nil))
	assert.Error(t, err)
}

func TestSetProfileRejectsUnknown(t *testing.T) {
	assert.Error(t, SetProfile(context.Background(), Unknown))
}
