// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package backlight

import (
	"fmt"
	"os"
	"path/filepath"

	gudev "github.com/linuxdeepin/go-gir/gudev-1.0"
	"golang.org/x/xerrors"
)

const (
	SubsystemBacklight = "backlight"
	SubsystemLeds      = "leds"

	defaultSysfsRoot = "/sys/class"
)

// Handle identifies one device node found by a Prober. It is a plain value;
// no udev reference outlives the scan.
type Handle struct {
	Subsystem string
	Name      string
	SysfsPath string
}

func (h Handle) String() string {
	return h.Subsystem + "/" + h.Name
}

// Prober enumerates the device nodes of one subsystem.
type Prober interface {
	Scan(subsystem string) ([]Handle, error)
}

var ErrProbeUnavailable = xerrors.New("device enumeration unavailable")

// ProbeError is returned when the enumeration subsystem cannot be opened.
type ProbeError struct {
	Subsystem string
	Err       error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("scan %s devices: %v", e.Subsystem, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

// UdevProber enumerates devices through libgudev.
type UdevProber struct{}

func (UdevProber) Scan(subsystem string) ([]Handle, error) {
	client := gudev.NewClient([]string{subsystem})
	if client == nil {
		return nil, &ProbeError{Subsystem: subsystem, Err: ErrProbeUnavailable}
	}
	defer client.Unref()

	devices := client.QueryBySubsystem(subsystem)
	handles := make([]Handle, 0, len(devices))
	for _, dev := range devices {
		handles = append(handles, Handle{
			Subsystem: subsystem,
			Name:      dev.GetName(),
			SysfsPath: dev.GetSysfsPath(),
		})
		dev.Unref()
	}
	return handles, nil
}

// SysfsProber lists <Root>/<subsystem> directly, for systems where udev is
// not usable.
type SysfsProber struct {
	Root string
}

func (p SysfsProber) Scan(subsystem string) ([]Handle, error) {
	root := p.Root
	if root == "" {
		root = defaultSysfsRoot
	}
	dir := filepath.Join(root, subsystem)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ProbeError{Subsystem: subsystem, Err: err}
	}

	handles := make([]Handle, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		// class entries are symlinks into /sys/devices
		fi, err := os.Stat(path)
		if err != nil || !fi.IsDir() {
			continue
		}
		handles = append(handles, Handle{
			Subsystem: subsystem,
			Name:      entry.Name(),
			SysfsPath: path,
		})
	}
	return handles, nil
}
