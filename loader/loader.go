// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"fmt"
	"sync"
	"time"

	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"
)

type EnableFlag int

const (
	EnableFlagNone EnableFlag = 1 << iota
	EnableFlagIgnoreMissingModule
	EnableFlagForceStart
)

func (flags EnableFlag) HasFlag(flag EnableFlag) bool {
	return flags&flag != 0
}

const (
	ErrorNoDependencies int = iota
	ErrorCircleDependencies
	ErrorMissingModule
	ErrorInternalError
	ErrorConflict
)

type EnableError struct {
	ModuleName string
	Code       int
	detail     string
}

func (e *EnableError) Error() string {
	switch e.Code {
	case ErrorNoDependencies:
		return fmt.Sprintf("%s's dependencies is not meet, %s is need", e.ModuleName, e.detail)
	case ErrorCircleDependencies:
		return "dependency circle"
	case ErrorMissingModule:
		return fmt.Sprintf("%s is missing", e.ModuleName)
	case ErrorInternalError:
		return fmt.Sprintf("%s started failed: %s", e.ModuleName, e.detail)
	case ErrorConflict:
		return fmt.Sprintf("trying to enable disabled module(%s)", e.ModuleName)
	}
	return fmt.Sprintf("%s: unknown enable error %d", e.ModuleName, e.Code)
}

type Loader struct {
	modules Modules
	log     *log.Logger
	lock    sync.Mutex
	service *dbusutil.Service
	started []string
}

func (l *Loader) SetLogLevel(pri log.Priority) {
	l.log.SetLogLevel(pri)

	l.lock.Lock()
	defer l.lock.Unlock()

	for _, module := range l.modules {
		module.SetLogLevel(pri)
	}
}

func (l *Loader) AddModule(m Module) {
	l.lock.Lock()
	defer l.lock.Unlock()
	name := m.Name()
	_, exist := l.modules[name]
	if exist {
		l.log.Debug("Register", name, "is already registered")
		return
	}
	l.log.Debug("Register module:", name)
	l.modules[name] = m
}

func (l *Loader) DeleteModule(name string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	delete(l.modules, name)
}

func (l *Loader) List() []Module {
	l.lock.Lock()
	defer l.lock.Unlock()
	modules := make([]Module, 0, len(l.modules))
	for _, m := range l.modules {
		modules = append(modules, m)
	}
	return modules
}

func (l *Loader) GetModule(name string) Module {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.modules[name]
}

// EnableModules starts enablingModules and everything they depend on.
// Modules start one at a time, each after its dependencies. The first
// failing module aborts the remaining starts.
func (l *Loader) EnableModules(enablingModules []string, disableModules []string, flag EnableFlag) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	startTime := time.Now()
	order, err := l.resolveOrder(enablingModules, disableModules, flag)
	if err != nil {
		return err
	}
	l.log.Infof("resolve start order %v, cost %s", order, time.Since(startTime))

	for _, name := range order {
		module := l.modules[name]
		if module.IsEnable() {
			continue
		}
		l.log.Info("enable module", name)
		t0 := time.Now()
		err := module.Enable(true)
		if err != nil {
			l.log.Errorf("enable module %s failed: %s, cost %s", name, err, time.Since(t0))
			return &EnableError{ModuleName: name, Code: ErrorInternalError, detail: err.Error()}
		}
		l.started = append(l.started, name)
		l.log.Infof("enable module %s done cost %s", name, time.Since(t0))
	}

	l.log.Infof("enable modules done, cost add up to %s", time.Since(startTime))
	return nil
}

// StopAll stops the started modules in reverse start order.
func (l *Loader) StopAll() {
	l.lock.Lock()
	defer l.lock.Unlock()

	for i := len(l.started) - 1; i >= 0; i-- {
		name := l.started[i]
		err := l.modules[name].Enable(false)
		if err != nil {
			l.log.Warningf("stop module %s failed: %s", name, err)
			continue
		}
		l.log.Info("module", name, "stopped")
	}
	l.started = nil
}
