// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package upower watches the UPower daemon and publishes BatteryInfo events.
package upower

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
	dbusServiceName = "org.freedesktop.UPower"
	dbusPath        = "/org/freedesktop/UPower"
	dbusInterface   = dbusServiceName
	deviceInterface = dbusServiceName + ".Device"
)

const (
	propOnBattery   = "OnBattery"
	propType        = "Type"
	propPowerSupply = "PowerSupply"
	propState       = "State"
	propPercentage  = "Percentage"
	propTimeToEmpty = "TimeToEmpty"
)

var logger = log.NewLogger("panel-state/upower")

var _ feed.Source[BatteryInfo] = Source

// HasPowerSupplyBattery reports whether any device is a battery that powers
// the system, as opposed to the battery of a mouse or a phone.
func HasPowerSupplyBattery(devices []dbusprop.Properties) bool {
	for _, dev := range devices {
		typ, err := dbusprop.Get[uint32](dev, propType)
		if err != nil {
			logger.Debug(err)
			continue
		}
		if DeviceType(typ) == DeviceTypeBattery && dbusprop.GetOr[bool](dev, propPowerSupply) {
			return true
		}
	}
	return false
}

// Snapshot combines the cached daemon and display device state.
func Snapshot(manager, display dbusprop.Properties) BatteryInfo {
	return Available(
		dbusprop.GetOr[bool](manager, propOnBattery),
		dbusprop.GetOr[float64](display, propPercentage),
		dbusprop.GetOr[int64](display, propTimeToEmpty),
	)
}

// Stream emits Unavailable once if devices holds no power supply battery,
// then a fresh Snapshot on every State, Percentage or TimeToEmpty change of
// the display device. Availability is only checked here; a battery plugged
// in later is not noticed.
func Stream(ctx context.Context, manager, display dbusprop.Properties,
	devices []dbusprop.Properties) <-chan BatteryInfo {
	var initial []BatteryInfo
	if !HasPowerSupplyBattery(devices) {
		logger.Info("no power supply battery found")
		initial = append(initial, Unavailable())
	}

	changes := feed.Merge(ctx,
		display.Changed(ctx, propState),
		display.Changed(ctx, propPercentage),
		display.Changed(ctx, propTimeToEmpty),
	)
	updates := feed.Map(ctx, changes, func(struct{}) BatteryInfo {
		info := Snapshot(manager, display)
		logger.Debugf("battery %v, state %v", info,
			DeviceState(dbusprop.GetOr[uint32](display, propState)))
		return info
	})
	return feed.Chain(ctx, initial, updates)
}

// Source connects to UPower on a new system bus connection. Everything it
// opens is released when ctx ends.
func Source(ctx context.Context) (<-chan BatteryInfo, error) {
	conn, err := busconn.OpenService(ctx, busconn.System, dbusServiceName)
	if err != nil {
		return nil, err
	}
	loop := dbusutil.NewSignalLoop(conn, 10)
	loop.Start()
	release := func() {
		loop.Stop()
		_ = conn.Close()
	}

	manager, err := dbusprop.NewObject(ctx, loop, dbusServiceName, dbusPath, dbusInterface)
	if err != nil {
		release()
		return nil, err
	}

	var devicePaths []dbus.ObjectPath
	err = manager.Call(ctx, "EnumerateDevices").Store(&devicePaths)
	if err != nil {
		release()
		return nil, xerrors.Errorf("enumerate devices: %w", err)
	}

	var displayPath dbus.ObjectPath
	err = manager.Call(ctx, "GetDisplayDevice").Store(&displayPath)
	if err != nil {
		release()
		return nil, xerrors.Errorf("get display device: %w", err)
	}
	display, err := dbusprop.NewObject(ctx, loop, dbusServiceName, displayPath, deviceInterface)
	if err != nil {
		release()
		return nil, err
	}

	devices := make([]dbusprop.Properties, 0, len(devicePaths))
	var deviceObjs []*dbusprop.Object
	for _, path := range devicePaths {
		dev, err := dbusprop.NewObject(ctx, loop, dbusServiceName, path, deviceInterface)
		if err != nil {
			logger.Warning(err)
			continue
		}
		devices = append(devices, dev)
		deviceObjs = append(deviceObjs, dev)
	}

	c := Stream(ctx, manager, display, devices)
	// the devices were only needed for the availability check
	for _, dev := range deviceObjs {
		dev.Destroy()
	}

	go func() {
		<-ctx.Done()
		display.Destroy()
		manager.Destroy()
		release()
	}()
	logger.Infof("watching %s, display device %s", dbusServiceName, displayPath)
	return c, nil
}
