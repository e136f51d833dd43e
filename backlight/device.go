// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package backlight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/xerrors"
)

const (
	fileMaxBrightness = "max_brightness"
	fileBrightness    = "brightness"

	DefaultMinPercent = 10
)

// DeviceError reports an unreadable or unparsable device attribute.
type DeviceError struct {
	Subsystem string
	Name      string
	Err       error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s/%s: %v", e.Subsystem, e.Name, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Device is one backlight controller. Its bounds are fixed at construction;
// the current brightness is always read from the device.
type Device struct {
	handle        Handle
	authority     Authority
	maxBrightness uint32
	minBrightness uint32
}

// NewDevice reads the bounds of h. The floor is minPercent of the maximum,
// rounded down.
func NewDevice(h Handle, authority Authority, minPercent uint32) (*Device, error) {
	err := checkName(h.Name)
	if err != nil {
		return nil, &DeviceError{Subsystem: h.Subsystem, Name: h.Name, Err: err}
	}
	if minPercent > 100 {
		minPercent = 100
	}

	maxBrightness, err := readUintFile(filepath.Join(h.SysfsPath, fileMaxBrightness))
	if err != nil {
		return nil, &DeviceError{Subsystem: h.Subsystem, Name: h.Name, Err: err}
	}

	return &Device{
		handle:        h,
		authority:     authority,
		maxBrightness: maxBrightness,
		minBrightness: uint32(uint64(maxBrightness) * uint64(minPercent) / 100),
	}, nil
}

func checkName(name string) error {
	if !utf8.ValidString(name) {
		return xerrors.New("name is not valid text")
	}
	if strings.ContainsRune(name, '/') || name == "" ||
		name == "." || name == ".." {
		return xerrors.Errorf("invalid name %q", name)
	}
	return nil
}

func readUintFile(filename string) (uint32, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(strings.TrimSpace(string(content)), 10, 32)
	if err != nil {
		return 0, xerrors.Errorf("parse %s: %w", filename, err)
	}
	return uint32(value), nil
}

func (d *Device) Subsystem() string {
	return d.handle.Subsystem
}

func (d *Device) Name() string {
	return d.handle.Name
}

func (d *Device) Path() string {
	return d.handle.SysfsPath
}

// BrightnessFile is the live state file of the device.
func (d *Device) BrightnessFile() string {
	return filepath.Join(d.handle.SysfsPath, fileBrightness)
}

func (d *Device) MaxBrightness() uint32 {
	return d.maxBrightness
}

func (d *Device) MinBrightness() uint32 {
	return d.minBrightness
}

// Brightness reads the current value from the device.
func (d *Device) Brightness() (uint32, error) {
	value, err := readUintFile(d.BrightnessFile())
	if err != nil {
		return 0, &DeviceError{Subsystem: d.Subsystem(), Name: d.Name(), Err: err}
	}
	return value, nil
}

// Clamp constrains value to [MinBrightness, MaxBrightness].
func (d *Device) Clamp(value int64) uint32 {
	if value < int64(d.minBrightness) {
		return d.minBrightness
	}
	if value > int64(d.maxBrightness) {
		return d.maxBrightness
	}
	return uint32(value)
}

// SetBrightness clamps value and asks the authority to apply it. The
// clamped value is returned whether or not the write succeeded.
func (d *Device) SetBrightness(ctx context.Context, value int64) uint32 {
	br := d.Clamp(value)
	logger.Debugf("set brightness %s max %d min %d value %d br %d",
		d.handle, d.maxBrightness, d.minBrightness, value, br)
	err := d.authority.SetBrightness(ctx, d.Subsystem(), d.Name(), br)
	if err != nil {
		logger.Warningf("failed to set brightness of %s: %v", d.handle, err)
	}
	return br
}
