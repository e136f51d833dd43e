// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backlight discovers backlight controllers and drives the chosen
// one.
package backlight

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/multierr"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("panel-state/backlight")

// ChooseBest builds a Device for every handle and keeps the one with the
// greatest maximum brightness. On a tie the earlier handle wins. Handles
// that cannot be turned into a device are logged and skipped. nil is
// returned when nothing usable remains.
func ChooseBest(handles []Handle, authority Authority, minPercent uint32) *Device {
	var best *Device
	for _, h := range handles {
		d, err := NewDevice(h, authority, minPercent)
		if err != nil {
			logger.Warning("skip backlight candidate:", err)
			continue
		}
		if best == nil || d.maxBrightness > best.maxBrightness {
			best = d
		}
	}
	return best
}

// Discover scans subsystems in order and arbitrates over all candidates.
// It fails only if every scan failed.
func Discover(prober Prober, subsystems []string, authority Authority, minPercent uint32) (*Device, error) {
	var handles []Handle
	var errs error
	scanned := 0
	unavailable := true
	for _, subsystem := range subsystems {
		found, err := prober.Scan(subsystem)
		if err != nil {
			errs = multierr.Append(errs, err)
			unavailable = unavailable && xerrors.Is(err, ErrProbeUnavailable)
			continue
		}
		scanned++
		handles = append(handles, found...)
	}
	if scanned == 0 && errs != nil {
		if unavailable {
			return nil, xerrors.Errorf("%v: %w", errs, ErrProbeUnavailable)
		}
		return nil, errs
	}
	if errs != nil {
		logger.Warning(errs)
	}
	if logger.GetLogLevel() == log.LevelDebug {
		logger.Debug("backlight candidates:", spew.Sdump(handles))
	}

	best := ChooseBest(handles, authority, minPercent)
	if best != nil {
		logger.Infof("use backlight %s, max %d, min %d", best.handle, best.maxBrightness, best.minBrightness)
	} else {
		logger.Info("no usable backlight device")
	}
	return best, nil
}
