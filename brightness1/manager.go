// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package brightness1

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-panel-state/backlight"
	"github.com/linuxdeepin/go-lib/dbusutil"
)

const setBrightnessTimeout = 5 * time.Second

// Manager exports the brightness of the arbitrated backlight device on the
// session bus.
type Manager struct {
	service *dbusutil.Service
	device  *backlight.Device
	watcher *fsnotify.Watcher
	quit    chan struct{}
	wg      sync.WaitGroup

	PropsMu           sync.RWMutex
	CurrentBrightness int32
	MaxBrightness     int32
	MinBrightness     int32
}

func newManager(service *dbusutil.Service, device *backlight.Device) *Manager {
	m := &Manager{
		service:           service,
		device:            device,
		quit:              make(chan struct{}),
		CurrentBrightness: NoDevice,
		MaxBrightness:     NoDevice,
		MinBrightness:     NoDevice,
	}
	if device != nil {
		m.MaxBrightness = int32(device.MaxBrightness())
		m.MinBrightness = int32(device.MinBrightness())
		m.refresh()
	}
	return m
}

// refresh re-reads the live brightness file.
func (m *Manager) refresh() {
	if m.device == nil {
		return
	}
	value, err := m.device.Brightness()
	if err != nil {
		logger.Warning(err)
		return
	}
	m.PropsMu.Lock()
	m.setPropCurrentBrightness(int32(value))
	m.PropsMu.Unlock()
}

// Refresh publishes the live brightness, for writers that bypass
// SetBrightness.
func (m *Manager) Refresh() {
	m.refresh()
}

func (m *Manager) SetBrightness(value int32) (int32, *dbus.Error) {
	if m.device == nil {
		return NoDevice, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), setBrightnessTimeout)
	defer cancel()

	result := m.device.SetBrightness(ctx, int64(value))
	m.refresh()
	return int32(result), nil
}

func (m *Manager) Info() DisplayInfo {
	m.PropsMu.RLock()
	defer m.PropsMu.RUnlock()
	return DisplayInfo{
		Current: m.CurrentBrightness,
		Max:     m.MaxBrightness,
		Min:     m.MinBrightness,
	}
}

func (m *Manager) startWatch() error {
	if m.device == nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	err = watcher.Add(m.device.BrightnessFile())
	if err != nil {
		_ = watcher.Close()
		return err
	}
	m.watcher = watcher
	m.wg.Add(1)
	go m.watchLoop()
	return nil
}

func (m *Manager) watchLoop() {
	defer m.wg.Done()
	for {
		select {
		case ev, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			logger.Debug("brightness file event:", ev)
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				m.refresh()
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			logger.Warning("brightness watcher:", err)
		case <-m.quit:
			return
		}
	}
}

func (m *Manager) destroy() {
	close(m.quit)
	if m.watcher != nil {
		err := m.watcher.Close()
		if err != nil {
			logger.Warning(err)
		}
	}
	m.wg.Wait()
}
