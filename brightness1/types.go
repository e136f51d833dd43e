// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package brightness1

import "fmt"

// DisplayInfo is the brightness triple published to the panel.
type DisplayInfo struct {
	Current int32
	Max     int32
	Min     int32
}

// Unavailable is the DisplayInfo of a machine without a backlight device.
func Unavailable() DisplayInfo {
	return DisplayInfo{Current: NoDevice, Max: NoDevice, Min: NoDevice}
}

func (i DisplayInfo) IsAvailable() bool {
	return i.Max != NoDevice
}

func (i DisplayInfo) String() string {
	return fmt.Sprintf("Available{Current: %d, Max: %d, Min: %d}", i.Current, i.Max, i.Min)
}
