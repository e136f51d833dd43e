// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package panel

import (
	"github.com/linuxdeepin/dde-panel-state/brightness1"
	"github.com/linuxdeepin/dde-panel-state/powerprofiles"
	"github.com/linuxdeepin/dde-panel-state/upower"
)

const defaultMasterVolume = 100

// State is what the panel renders: the last reported value of every
// concern. Events are folded in with the Apply methods.
type State struct {
	BatteryAvailable bool
	OnBattery        bool
	Percentage       float64
	TimeToEmpty      int64

	ActiveProfile powerprofiles.PowerProfile
	Brightness    brightness1.DisplayInfo
	MasterVolume  uint32
}

// NewState is the state shown before any event arrived.
func NewState() State {
	return State{
		OnBattery:     true,
		ActiveProfile: powerprofiles.DefaultPowerProfile,
		Brightness:    brightness1.Unavailable(),
		MasterVolume:  defaultMasterVolume,
	}
}

// ApplyBattery keeps the last known charge when the battery becomes
// unavailable.
func (s *State) ApplyBattery(info upower.BatteryInfo) {
	s.BatteryAvailable = info.Available
	if !info.Available {
		return
	}
	s.OnBattery = info.OnBattery
	s.Percentage = info.Percent
	s.TimeToEmpty = info.TimeToEmpty
}

func (s *State) ApplyProfile(info powerprofiles.PowerProfileInfo) {
	s.ActiveProfile = info.Active
}

func (s *State) ApplyBrightness(info brightness1.DisplayInfo) {
	s.Brightness = info
}

// ApplyBrightnessResult folds the value returned by SetBrightness. Bounds
// are left to the next brightness event.
func (s *State) ApplyBrightnessResult(current int32) {
	s.Brightness.Current = current
}

func (s *State) ApplyVolume(value uint32) {
	s.MasterVolume = value
}
