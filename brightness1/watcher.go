// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package brightness1

import (
	"context"

	"github.com/linuxdeepin/dde-panel-state/common/busconn"
	"github.com/linuxdeepin/dde-panel-state/common/dbusprop"
	"github.com/linuxdeepin/dde-panel-state/common/feed"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

var _ feed.Source[DisplayInfo] = Source

// Snapshot reads the cached brightness triple. Missing properties read as
// NoDevice.
func Snapshot(props dbusprop.Properties) DisplayInfo {
	read := func(name string) int32 {
		v, err := dbusprop.Get[int32](props, name)
		if err != nil {
			logger.Debug(err)
			return NoDevice
		}
		return v
	}
	return DisplayInfo{
		Current: read(propCurrentBrightness),
		Max:     read(propMaxBrightness),
		Min:     read(propMinBrightness),
	}
}

// Stream emits the current triple, then the cached triple after every
// change of any of the three properties.
func Stream(ctx context.Context, props dbusprop.Properties) <-chan DisplayInfo {
	changed := feed.Merge(ctx,
		props.Changed(ctx, propCurrentBrightness),
		props.Changed(ctx, propMaxBrightness),
		props.Changed(ctx, propMinBrightness),
	)
	updates := feed.Map(ctx, changed, func(struct{}) DisplayInfo {
		return Snapshot(props)
	})
	return feed.Chain(ctx, []DisplayInfo{Snapshot(props)}, updates)
}

// Source watches the brightness service on a new session bus connection.
func Source(ctx context.Context) (<-chan DisplayInfo, error) {
	conn, err := busconn.OpenService(ctx, busconn.Session, dbusServiceName)
	if err != nil {
		return nil, err
	}
	loop := dbusutil.NewSignalLoop(conn, 10)
	loop.Start()

	obj, err := dbusprop.NewObject(ctx, loop, dbusServiceName, dbusPath, dbusInterface)
	if err != nil {
		loop.Stop()
		_ = conn.Close()
		return nil, err
	}
	go func() {
		<-ctx.Done()
		obj.Destroy()
		loop.Stop()
		_ = conn.Close()
	}()
	return Stream(ctx, obj), nil
}
