// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package panel

import (
	"context"

	"github.com/linuxdeepin/dde-panel-state/brightness1"
	"github.com/linuxdeepin/dde-panel-state/powerprofiles"
)

// SetBrightness clamps value to the device bounds, requests the write and
// returns the clamped value even if the write failed. Without a device it
// returns brightness1.NoDevice. No feed event is emitted here; the
// brightness feed reports the change once the device file is updated.
func (p *Panel) SetBrightness(ctx context.Context, value int32) int32 {
	if p.device == nil {
		logger.Debug("no backlight device, ignore brightness", value)
		return brightness1.NoDevice
	}
	result := p.device.SetBrightness(ctx, int64(value))
	if p.onBrightnessWrite != nil {
		p.onBrightnessWrite()
	}
	return int32(result)
}

// SetVolume is not wired to an audio backend yet; it reports value back as
// applied.
func (p *Panel) SetVolume(value uint32) uint32 {
	logger.Info("set master volume", value)
	return value
}

func (p *Panel) SetProfile(ctx context.Context, profile powerprofiles.PowerProfile) error {
	return p.setProfile(ctx, profile)
}

// NextProfile is the profile following current in the power-saver,
// balanced, performance cycle. Unknown moves to the default profile.
func NextProfile(current powerprofiles.PowerProfile) powerprofiles.PowerProfile {
	switch current {
	case powerprofiles.PowerSaver:
		return powerprofiles.Balanced
	case powerprofiles.Balanced:
		return powerprofiles.Performance
	case powerprofiles.Performance:
		return powerprofiles.PowerSaver
	}
	return powerprofiles.DefaultPowerProfile
}

// ToggleProfile activates the profile following current and returns it.
func (p *Panel) ToggleProfile(ctx context.Context, current powerprofiles.PowerProfile) (powerprofiles.PowerProfile, error) {
	next := NextProfile(current)
	err := p.setProfile(ctx, next)
	if err != nil {
		return current, err
	}
	return next, nil
}
