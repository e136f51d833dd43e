// SPDX-FileCopyrightText: 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/linuxdeepin/go-lib/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

type Test_Module struct {
	*ModuleBase
	dependencies string
	rec          *recorder
	startErr     error
}

func NewTestModule(name, dependencies string, rec *recorder) *Test_Module {
	daemon := new(Test_Module)
	logger := log.NewLogger(name)
	daemon.ModuleBase = NewModuleBase(name, daemon, logger)
	daemon.dependencies = dependencies
	daemon.rec = rec
	return daemon
}

func (d *Test_Module) GetDependencies() []string {
	if d.dependencies == "" {
		return nil
	}
	return strings.Split(d.dependencies, " ")
}

func (d *Test_Module) Start() error {
	if d.startErr != nil {
		return d.startErr
	}
	d.rec.add("start " + d.Name())
	return nil
}

func (d *Test_Module) Stop() error {
	d.rec.add("stop " + d.Name())
	return nil
}

func resetLoader(modules ...Module) {
	_loader = newLoader()
	for _, m := range modules {
		Register(m)
	}
}

func names(modules []Module) []string {
	var result []string
	for _, m := range modules {
		result = append(result, m.Name())
	}
	return result
}

func Test_Loader(t *testing.T) {
	type testItem struct {
		deps   map[string]string
		output error
	}
	testItems := []testItem{
		{map[string]string{"1": "", "2": "", "3": "", "4": "", "5": "", "6": ""}, nil},
		{map[string]string{"1": "2", "2": "3", "3": "4", "4": "5", "5": "6", "6": ""}, nil},
		{map[string]string{"1": "2", "2": "3", "3": "4", "4": "5", "5": "6", "6": "1"},
			&EnableError{Code: ErrorCircleDependencies}},
	}
	for _, data := range testItems {
		rec := &recorder{}
		var modules []Module
		var all []string
		for name, deps := range data.deps {
			modules = append(modules, NewTestModule(name, deps, rec))
			all = append(all, name)
		}
		resetLoader(modules...)
		err := EnableModules(all, nil, EnableFlagNone)
		assert.Equal(t, data.output, err)
	}
}

func TestEnableOrder(t *testing.T) {
	rec := &recorder{}
	resetLoader(
		NewTestModule("panel", "brightness battery", rec),
		NewTestModule("brightness", "", rec),
		NewTestModule("battery", "", rec),
	)

	require.NoError(t, EnableModules([]string{"panel"}, nil, EnableFlagNone))
	assert.Equal(t, []string{"start battery", "start brightness", "start panel"}, rec.events)
	for _, m := range List() {
		assert.True(t, m.IsEnable(), m.Name())
	}

	rec.events = nil
	StopAll()
	assert.Equal(t, []string{"stop panel", "stop brightness", "stop battery"}, rec.events)
	for _, m := range List() {
		assert.False(t, m.IsEnable(), m.Name())
	}
}

func TestEnableOnlyDependencies(t *testing.T) {
	rec := &recorder{}
	resetLoader(
		NewTestModule("a", "b", rec),
		NewTestModule("b", "", rec),
		NewTestModule("c", "", rec),
	)
	require.NoError(t, EnableModules([]string{"a"}, nil, EnableFlagNone))
	assert.Equal(t, []string{"start b", "start a"}, rec.events)
	assert.False(t, GetModule("c").IsEnable())
}

func TestEnableMissing(t *testing.T) {
	rec := &recorder{}
	resetLoader(NewTestModule("a", "ghost", rec))

	err := EnableModules([]string{"a"}, nil, EnableFlagNone)
	assert.Equal(t, &EnableError{ModuleName: "ghost", Code: ErrorMissingModule}, err)
	assert.Empty(t, rec.events)

	require.NoError(t, EnableModules([]string{"a"}, nil, EnableFlagIgnoreMissingModule))
	assert.Equal(t, []string{"start a"}, rec.events)
}

func TestEnableDisabled(t *testing.T) {
	rec := &recorder{}
	resetLoader(
		NewTestModule("a", "b", rec),
		NewTestModule("b", "", rec),
	)
	err := EnableModules([]string{"a"}, []string{"b"}, EnableFlagNone)
	assert.Equal(t, &EnableError{ModuleName: "b", Code: ErrorConflict}, err)

	require.NoError(t, EnableModules([]string{"a"}, []string{"b"}, EnableFlagForceStart))
	assert.Equal(t, []string{"start b", "start a"}, rec.events)
}

func TestStartAllSkipsDisabled(t *testing.T) {
	rec := &recorder{}
	resetLoader(
		NewTestModule("a", "", rec),
		NewTestModule("b", "", rec),
	)
	require.NoError(t, StartAll([]string{"b"}))
	assert.Equal(t, []string{"start a"}, rec.events)
	assert.ElementsMatch(t, []string{"a", "b"}, names(List()))
}

func TestEnableStartFailure(t *testing.T) {
	rec := &recorder{}
	broken := NewTestModule("b", "", rec)
	broken.startErr = errors.New("no bus")
	resetLoader(NewTestModule("a", "b", rec), broken)

	err := EnableModules([]string{"a"}, nil, EnableFlagNone)
	var enableErr *EnableError
	require.True(t, errors.As(err, &enableErr))
	assert.Equal(t, "b", enableErr.ModuleName)
	assert.Equal(t, ErrorInternalError, enableErr.Code)
	assert.Equal(t, "b started failed: no bus", err.Error())
	assert.Empty(t, rec.events)
	assert.False(t, broken.IsEnable())
}

func TestModuleBaseEnableTwice(t *testing.T) {
	rec := &recorder{}
	m := NewTestModule("a", "", rec)
	assert.Error(t, m.Enable(false))
	require.NoError(t, m.Enable(true))
	m.WaitEnable()
	assert.Error(t, m.Enable(true))
	require.NoError(t, m.Enable(false))
	assert.Equal(t, []string{"start a", "stop a"}, rec.events)
}

func TestToggleLogDebug(t *testing.T) {
	rec := &recorder{}
	m := NewTestModule("a", "", rec)
	resetLoader(m)
	ToggleLogDebug(true)
	assert.Equal(t, log.LevelDebug, m.LogLevel())
	ToggleLogDebug(false)
	assert.Equal(t, log.LevelInfo, m.LogLevel())
}
