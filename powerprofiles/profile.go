// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package powerprofiles

// PowerProfile is one of the profiles of power-profiles-daemon.
type PowerProfile int

const (
	Unknown PowerProfile = iota
	PowerSaver
	Balanced
	Performance
)

// DefaultPowerProfile is assumed until the daemon reports otherwise.
const DefaultPowerProfile = Balanced

const (
	wirePowerSaver  = "power-saver"
	wireBalanced    = "balanced"
	wirePerformance = "performance"
)

// ParsePowerProfile maps the daemon's profile name. Names it does not know
// map to Unknown.
func ParsePowerProfile(s string) PowerProfile {
	switch s {
	case wirePowerSaver:
		return PowerSaver
	case wireBalanced:
		return Balanced
	case wirePerformance:
		return Performance
	}
	return Unknown
}

// String returns the wire name, or "" for Unknown.
func (p PowerProfile) String() string {
	switch p {
	case PowerSaver:
		return wirePowerSaver
	case Balanced:
		return wireBalanced
	case Performance:
		return wirePerformance
	}
	return ""
}

func (p PowerProfile) Label() string {
	switch p {
	case PowerSaver:
		return "Power Saver"
	case Balanced:
		return "Balanced"
	case Performance:
		return "Performance"
	}
	return "Unknown"
}

// PowerProfileInfo is the profile event published to the panel.
type PowerProfileInfo struct {
	Active PowerProfile
}
