// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/linuxdeepin/dde-panel-state/backlight"
	"github.com/linuxdeepin/dde-panel-state/brightness1"
	"github.com/linuxdeepin/dde-panel-state/common/feed"
	"github.com/linuxdeepin/dde-panel-state/config"
	"github.com/linuxdeepin/dde-panel-state/loader"
	"github.com/linuxdeepin/dde-panel-state/panel"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/utils"
)

var logger = log.NewLogger("panel-state/dde-panel-state")

const feedKey = "dde-panel-state"

var _options struct {
	verbose    bool
	logLevel   string
	configFile string
}

func toLogLevel(name string) (log.Priority, error) {
	name = strings.ToLower(name)
	logLevel := log.LevelInfo
	var err error
	switch name {
	case "":
		logLevel = log.LevelInfo
	case "error":
		logLevel = log.LevelError
	case "warn":
		logLevel = log.LevelWarning
	case "info":
		logLevel = log.LevelInfo
	case "debug":
		logLevel = log.LevelDebug
	case "no":
		logLevel = log.LevelDisable
	default:
		err = fmt.Errorf("%s is not support", name)
	}

	return logLevel, err
}

func init() {
	// -v | -verbose
	const verboseUsage = "Show much more message, shorthand for --loglevel debug."
	flag.BoolVar(&_options.verbose, "v", false, verboseUsage)
	flag.BoolVar(&_options.verbose, "verbose", false, verboseUsage)

	// -l | -loglevel
	const logLevelUsage = "Set log level, possible value is error/warn/info/debug/no, info is default"
	flag.StringVar(&_options.logLevel, "l", "", logLevelUsage)
	flag.StringVar(&_options.logLevel, "loglevel", "", logLevelUsage)

	flag.StringVar(&_options.configFile, "config", config.DefaultPath(), "Path of the configuration file.")
}

// discover picks the backlight device. udev is preferred; when libgudev
// cannot enumerate, the sysfs tree is scanned directly.
func discover(cfg *config.Config) *backlight.Device {
	authority := cfg.Authority()
	subsystems := cfg.Backlight.Subsystems
	minPercent := cfg.Backlight.MinPercent

	device, err := backlight.Discover(cfg.Prober(), subsystems, authority, minPercent)
	if err != nil && errors.Is(err, backlight.ErrProbeUnavailable) && cfg.Backlight.Prober == config.ProberUdev {
		logger.Warning(err, "fall back to sysfs")
		device, err = backlight.Discover(backlight.SysfsProber{Root: cfg.Backlight.SysfsRoot},
			subsystems, authority, minPercent)
	}
	if err != nil {
		logger.Warning("backlight discovery failed:", err)
		return nil
	}
	return device
}

func logEvents[T any](ctx context.Context, name string, f *feed.Feed[T]) {
	for {
		v, err := f.Next(ctx)
		if err != nil {
			return
		}
		logger.Infof("%s: %v", name, v)
	}
}

func main() {
	flag.Parse()

	cfg := config.Load(_options.configFile)
	if _options.logLevel == "" {
		_options.logLevel = cfg.LogLevel
	}
	if _options.verbose {
		_options.logLevel = "debug"
	}
	logLevel, err := toLogLevel(_options.logLevel)
	if err != nil {
		logger.Warning("failed to parse loglevel:", err)
		os.Exit(1)
	}

	service, err := dbusutil.NewSessionService()
	if err != nil {
		logger.Fatal("failed to new session service", err)
	}

	device := discover(cfg)
	brightness := brightness1.NewDaemon(device)
	loader.Register(brightness)
	loader.SetService(service)

	if _options.logLevel == "" &&
		(utils.IsEnvExists(log.DebugLevelEnv) || utils.IsEnvExists(log.DebugMatchEnv)) {
		logger.Info("Log level is none and debug env exists, so do not call loader.SetLogLevel")
	} else {
		logger.SetLogLevel(logLevel)
		loader.SetLogLevel(logLevel)
	}

	err = loader.StartAll(cfg.Modules.Disabled)
	if err != nil {
		logger.Fatal("failed to start modules:", err)
	}
	defer loader.StopAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := panel.New(device, panel.WithBrightnessWritten(func() {
		if m := brightness.Manager(); m != nil {
			m.Refresh()
		}
	}))
	go logEvents(ctx, "battery", p.BatteryFeed(ctx, feedKey))
	go logEvents(ctx, "profile", p.ProfileFeed(ctx, feedKey))
	go logEvents(ctx, "brightness", p.BrightnessFeed(ctx, feedKey))

	<-ctx.Done()
	logger.Info("exit:", p.FeedStates(feedKey))
}
