// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"sort"

	"github.com/linuxdeepin/go-lib/strv"
)

// resolveOrder collects the enabling modules and their transitive
// dependencies and returns them so that every module comes after the
// modules it depends on. Ties are broken by name.
func (l *Loader) resolveOrder(enablingModules, disableModules []string, flag EnableFlag) ([]string, error) {
	disabled := strv.Strv(disableModules)
	for _, name := range disableModules {
		if _, ok := l.modules[name]; !ok {
			l.log.Warningf("disabled module(%s) does not exist", name)
		}
	}

	deps := make(map[string][]string)
	queue := append([]string(nil), enablingModules...)
	for len(queue) != 0 {
		name := queue[0]
		queue = queue[1:]
		if _, seen := deps[name]; seen {
			continue
		}
		module, ok := l.modules[name]
		if !ok {
			if flag.HasFlag(EnableFlagIgnoreMissingModule) {
				l.log.Debug("no such a module named", name)
				continue
			}
			return nil, &EnableError{ModuleName: name, Code: ErrorMissingModule}
		}
		if disabled.Contains(name) && !flag.HasFlag(EnableFlagForceStart) {
			return nil, &EnableError{ModuleName: name, Code: ErrorConflict}
		}
		deps[name] = module.GetDependencies()
		queue = append(queue, deps[name]...)
	}

	indegree := make(map[string]int, len(deps))
	dependents := make(map[string][]string)
	for name, list := range deps {
		indegree[name] += 0
		for _, dep := range list {
			if _, ok := deps[dep]; !ok {
				// skipped as missing
				continue
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}
	order := make([]string, 0, len(deps))
	for len(ready) != 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	if len(order) != len(deps) {
		return nil, &EnableError{Code: ErrorCircleDependencies}
	}
	return order, nil
}
