// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package brightness1 exports the arbitrated backlight device on the session
// bus and watches that export for the panel.
package brightness1

import (
	"github.com/linuxdeepin/dde-panel-state/backlight"
	"github.com/linuxdeepin/dde-panel-state/loader"
	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("panel-state/brightness1")

// ModuleName is the loader name of the brightness service.
const ModuleName = "brightness"

type Daemon struct {
	*loader.ModuleBase
	device  *backlight.Device
	manager *Manager
}

// NewDaemon returns the loader module exporting device. A nil device is
// exported with every property at NoDevice.
func NewDaemon(device *backlight.Device) *Daemon {
	daemon := &Daemon{device: device}
	daemon.ModuleBase = loader.NewModuleBase(ModuleName, daemon, logger)
	return daemon
}

func (d *Daemon) GetDependencies() []string {
	return nil
}

// Manager is nil until the module started.
func (d *Daemon) Manager() *Manager {
	return d.manager
}

func (d *Daemon) Start() error {
	service := loader.GetService()
	m := newManager(service, d.device)

	err := service.Export(dbusPath, m)
	if err != nil {
		return err
	}
	err = service.RequestName(dbusServiceName)
	if err != nil {
		_ = service.StopExport(m)
		return err
	}
	err = m.startWatch()
	if err != nil {
		logger.Warning("failed to watch brightness file:", err)
	}
	logger.Info("exported brightness", m.Info())
	d.manager = m
	return nil
}

func (d *Daemon) Stop() error {
	if d.manager == nil {
		return nil
	}
	service := loader.GetService()
	err := service.ReleaseName(dbusServiceName)
	if err != nil {
		logger.Warning(err)
	}
	err = service.StopExport(d.manager)
	if err != nil {
		logger.Warning(err)
	}
	d.manager.destroy()
	d.manager = nil
	return nil
}
