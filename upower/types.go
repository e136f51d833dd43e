// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package upower

import "fmt"

// DeviceType is the UPower Device.Type property.
type DeviceType uint32

const (
	DeviceTypeUnknown DeviceType = iota
	DeviceTypeLinePower
	DeviceTypeBattery
	DeviceTypeUps
	DeviceTypeMonitor
	DeviceTypeMouse
	DeviceTypeKeyboard
	DeviceTypePda
	DeviceTypePhone
)

var deviceTypeNames = []string{
	"Unknown",
	"LinePower",
	"Battery",
	"Ups",
	"Monitor",
	"Mouse",
	"Keyboard",
	"Pda",
	"Phone",
}

func (t DeviceType) String() string {
	if int(t) < len(deviceTypeNames) {
		return deviceTypeNames[t]
	}
	return fmt.Sprintf("DeviceType(%d)", uint32(t))
}

// DeviceState is the UPower Device.State property.
type DeviceState uint32

const (
	DeviceStateUnknown DeviceState = iota
	DeviceStateCharging
	DeviceStateDischarging
	DeviceStateEmpty
	DeviceStateFullyCharged
	DeviceStatePendingCharge
	DeviceStatePendingDischarge
)

var deviceStateNames = []string{
	"Unknown",
	"Charging",
	"Discharging",
	"Empty",
	"FullyCharged",
	"PendingCharge",
	"PendingDischarge",
}

func (s DeviceState) String() string {
	if int(s) < len(deviceStateNames) {
		return deviceStateNames[s]
	}
	return fmt.Sprintf("DeviceState(%d)", uint32(s))
}

// BatteryLevel is the UPower Device.BatteryLevel property. The values are
// not contiguous.
type BatteryLevel uint32

const (
	BatteryLevelUnknown  BatteryLevel = 0
	BatteryLevelNone     BatteryLevel = 1
	BatteryLevelLow      BatteryLevel = 3
	BatteryLevelCritical BatteryLevel = 4
	BatteryLevelNormal   BatteryLevel = 6
	BatteryLevelHigh     BatteryLevel = 7
	BatteryLevelFull     BatteryLevel = 8
)

func (l BatteryLevel) String() string {
	switch l {
	case BatteryLevelUnknown:
		return "Unknown"
	case BatteryLevelNone:
		return "None"
	case BatteryLevelLow:
		return "Low"
	case BatteryLevelCritical:
		return "Critical"
	case BatteryLevelNormal:
		return "Normal"
	case BatteryLevelHigh:
		return "High"
	case BatteryLevelFull:
		return "Full"
	}
	return fmt.Sprintf("BatteryLevel(%d)", uint32(l))
}

// BatteryInfo is the battery event published to the panel. When Available
// is false no battery-backed power supply exists and the other fields are
// zero. TimeToEmpty is in seconds and is 0 when unknown.
type BatteryInfo struct {
	Available   bool
	OnBattery   bool
	Percent     float64
	TimeToEmpty int64
}

func Unavailable() BatteryInfo {
	return BatteryInfo{}
}

func Available(onBattery bool, percent float64, timeToEmpty int64) BatteryInfo {
	return BatteryInfo{
		Available:   true,
		OnBattery:   onBattery,
		Percent:     percent,
		TimeToEmpty: timeToEmpty,
	}
}

func (b BatteryInfo) String() string {
	if !b.Available {
		return "Unavailable"
	}
	return fmt.Sprintf("Available{OnBattery: %v, Percent: %v, TimeToEmpty: %d}",
		b.OnBattery, b.Percent, b.TimeToEmpty)
}
