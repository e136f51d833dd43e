// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the optional YAML configuration of dde-panel-state.
package config

import (
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-panel-state/backlight"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/strv"
	"github.com/linuxdeepin/go-lib/utils"
	"github.com/linuxdeepin/go-lib/xdg/basedir"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

var logger = log.NewLogger("panel-state/config")

const (
	ProberUdev  = "udev"
	ProberSysfs = "sysfs"
)

var (
	knownProbers    = strv.Strv{ProberUdev, ProberSysfs}
	knownSubsystems = strv.Strv{backlight.SubsystemBacklight, backlight.SubsystemLeds}
	knownLogLevels  = strv.Strv{"", "error", "warn", "info", "debug", "no"}
)

type Backlight struct {
	Subsystems []string `yaml:"subsystems"`
	MinPercent uint32   `yaml:"minPercent"`
	Prober     string   `yaml:"prober"`
	SysfsRoot  string   `yaml:"sysfsRoot"`
}

type Login1 struct {
	SessionPath string `yaml:"sessionPath"`
}

type Modules struct {
	Disabled []string `yaml:"disabled"`
}

type Config struct {
	LogLevel  string    `yaml:"logLevel"`
	Backlight Backlight `yaml:"backlight"`
	Login1    Login1    `yaml:"login1"`
	Modules   Modules   `yaml:"modules"`
}

func Default() *Config {
	return &Config{
		Backlight: Backlight{
			Subsystems: []string{backlight.SubsystemBacklight},
			MinPercent: backlight.DefaultMinPercent,
			Prober:     ProberUdev,
			SysfsRoot:  "/sys/class",
		},
		Login1: Login1{
			SessionPath: string(backlight.DefaultSessionPath),
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/deepin/dde-panel-state/config.yaml.
func DefaultPath() string {
	return filepath.Join(basedir.GetUserConfigDir(), "deepin", "dde-panel-state", "config.yaml")
}

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	err := yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, xerrors.Errorf("parse config: %w", err)
	}
	err = cfg.validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads filename. A missing file yields the defaults. A file that
// cannot be read or parsed is logged and the defaults are used.
func Load(filename string) *Config {
	if !utils.IsFileExist(filename) {
		logger.Debug("no config file at", filename)
		return Default()
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		logger.Warning(err)
		return Default()
	}
	cfg, err := Parse(data)
	if err != nil {
		logger.Warningf("ignore config %s: %v", filename, err)
		return Default()
	}
	logger.Debug("loaded config", spew.Sdump(cfg))
	return cfg
}

func (c *Config) validate() error {
	if !knownLogLevels.Contains(c.LogLevel) {
		return xerrors.Errorf("unknown log level %q", c.LogLevel)
	}
	if !knownProbers.Contains(c.Backlight.Prober) {
		return xerrors.Errorf("unknown prober %q", c.Backlight.Prober)
	}
	if len(c.Backlight.Subsystems) == 0 {
		return xerrors.New("no backlight subsystem")
	}
	for _, subsystem := range c.Backlight.Subsystems {
		if !knownSubsystems.Contains(subsystem) {
			return xerrors.Errorf("unknown backlight subsystem %q", subsystem)
		}
	}
	if c.Backlight.MinPercent > 100 {
		c.Backlight.MinPercent = 100
	}
	if c.Backlight.SysfsRoot == "" {
		c.Backlight.SysfsRoot = Default().Backlight.SysfsRoot
	}
	if !dbus.ObjectPath(c.Login1.SessionPath).IsValid() {
		return xerrors.Errorf("invalid login1 session path %q", c.Login1.SessionPath)
	}
	return nil
}

// Prober returns the device prober selected by the configuration.
func (c *Config) Prober() backlight.Prober {
	if c.Backlight.Prober == ProberSysfs {
		return backlight.SysfsProber{Root: c.Backlight.SysfsRoot}
	}
	return backlight.UdevProber{}
}

func (c *Config) Authority() backlight.Authority {
	return backlight.SessionAuthority{SessionPath: dbus.ObjectPath(c.Login1.SessionPath)}
}
