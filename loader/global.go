// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"sync"

	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
	"github.com/linuxdeepin/go-lib/strv"
)

var loaderInitializer sync.Once
var _loader *Loader

func newLoader() *Loader {
	return &Loader{
		modules: Modules{},
		log:     log.NewLogger("panel-state/loader"),
	}
}

func getLoader() *Loader {
	loaderInitializer.Do(func() {
		_loader = newLoader()
	})
	return _loader
}

func SetService(s *dbusutil.Service) {
	l := getLoader()
	l.service = s
}

func GetService() *dbusutil.Service {
	return getLoader().service
}

func Register(m Module) {
	loader := getLoader()
	loader.AddModule(m)
}

func List() []Module {
	return getLoader().List()
}

func GetModule(name string) Module {
	return getLoader().GetModule(name)
}

func SetLogLevel(pri log.Priority) {
	getLoader().SetLogLevel(pri)
}

func EnableModules(enablingModules []string, disableModules []string, flag EnableFlag) error {
	return getLoader().EnableModules(enablingModules, disableModules, flag)
}

func ToggleLogDebug(enabled bool) {
	var priority log.Priority = log.LevelInfo
	if enabled {
		priority = log.LevelDebug
	}
	getLoader().SetLogLevel(priority)
}

// StartAll starts every registered module except the disabled ones.
func StartAll(disableModules []string) error {
	disabled := strv.Strv(disableModules)
	var modules []string
	for _, module := range getLoader().List() {
		if disabled.Contains(module.Name()) {
			continue
		}
		modules = append(modules, module.Name())
	}
	return getLoader().EnableModules(modules, disableModules, EnableFlagIgnoreMissingModule)
}

func StopAll() {
	getLoader().StopAll()
}
