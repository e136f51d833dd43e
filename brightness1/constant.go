// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package brightness1

const (
	dbusServiceName = "org.deepin.dde.PanelState1"
	dbusPath        = "/org/deepin/dde/PanelState1/Brightness"
	dbusInterface   = dbusServiceName + ".Brightness"

	propCurrentBrightness = "CurrentBrightness"
	propMaxBrightness     = "MaxBrightness"
	propMinBrightness     = "MinBrightness"

	methodSetBrightness = "SetBrightness"
)

// NoDevice is reported for every brightness property while no backlight
// device is present.
const NoDevice int32 = -1
