// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package dbusprop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIface = "org.freedesktop.UPower.Device"

func TestCacheCached(t *testing.T) {
	c := NewCache(testIface, map[string]dbus.Variant{
		"Percentage": dbus.MakeVariant(47.0),
	})

	v, err := c.Cached("Percentage")
	require.NoError(t, err)
	assert.Equal(t, 47.0, v.Value())

	_, err = c.Cached("TimeToEmpty")
	var pe *PropertyError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "TimeToEmpty", pe.Name)
	assert.Equal(t, testIface, pe.Interface)
	assert.True(t, errors.Is(err, ErrNotCached))
}

func TestGet(t *testing.T) {
	c := NewCache(testIface, map[string]dbus.Variant{
		"Percentage":  dbus.MakeVariant(47.0),
		"TimeToEmpty": dbus.MakeVariant(int64(5400)),
		"Model":       dbus.MakeVariant("BAT0"),
	})

	p, err := Get[float64](c, "Percentage")
	assert.NoError(t, err)
	assert.Equal(t, 47.0, p)

	_, err = Get[uint32](c, "Percentage")
	var pe *PropertyError
	assert.True(t, errors.As(err, &pe))

	assert.Equal(t, int64(5400), GetOr[int64](c, "TimeToEmpty"))
	assert.Equal(t, int64(0), GetOr[int64](c, "Model"))
	assert.Equal(t, false, GetOr[bool](c, "OnBattery"))
	assert.Equal(t, "", GetOr[string](c, "Vendor"))
}

func TestCacheChanged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCache(testIface, nil)
	percentage := c.Changed(ctx, "Percentage")
	state := c.Changed(ctx, "State", "TimeToEmpty")

	go c.Update(map[string]dbus.Variant{"Percentage": dbus.MakeVariant(10.0)}, nil)
	select {
	case <-percentage:
	case <-time.After(time.Second):
		t.Fatal("no wake-up for Percentage")
	}
	select {
	case <-state:
		t.Fatal("unexpected wake-up for State")
	case <-time.After(50 * time.Millisecond):
	}

	go c.Update(nil, []string{"TimeToEmpty"})
	select {
	case <-state:
	case <-time.After(time.Second):
		t.Fatal("no wake-up for invalidated TimeToEmpty")
	}
	_, err := c.Cached("TimeToEmpty")
	assert.Error(t, err)

	v, err := c.Cached("Percentage")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v.Value())
}

func TestCacheUpdateSkipsCancelledSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCache(testIface, nil)
	_ = c.Changed(ctx, "State")
	cancel()

	done := make(chan struct{})
	go func() {
		c.Update(map[string]dbus.Variant{"State": dbus.MakeVariant(uint32(2))}, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Update blocked on a cancelled subscriber")
	}
}

func TestCacheUpdateOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCache(testIface, nil)
	ch := c.Changed(ctx, "Percentage")

	go func() {
		for i := 1; i <= 5; i++ {
			c.Update(map[string]dbus.Variant{"Percentage": dbus.MakeVariant(float64(i))}, nil)
		}
	}()

	var got []float64
	for i := 0; i < 5; i++ {
		<-ch
		got = append(got, GetOr[float64](c, "Percentage"))
	}
	// a reader may observe a newer value than the one that woke it, never an older one
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1])
	}
	assert.Equal(t, 5.0, got[len(got)-1])
}

func TestParsePropertiesChanged(t *testing.T) {
	sig := &dbus.Signal{
		Name: propsSignalChanged,
		Body: []interface{}{
			testIface,
			map[string]dbus.Variant{"State": dbus.MakeVariant(uint32(1))},
			[]string{"TimeToEmpty"},
		},
	}
	changed, invalidated, ok := parsePropertiesChanged(sig, testIface)
	require.True(t, ok)
	assert.Len(t, changed, 1)
	assert.Equal(t, []string{"TimeToEmpty"}, invalidated)

	_, _, ok = parsePropertiesChanged(sig, "org.freedesktop.UPower")
	assert.False(t, ok)

	sig.Body = sig.Body[:2]
	_, _, ok = parsePropertiesChanged(sig, testIface)
	assert.False(t, ok)
}
