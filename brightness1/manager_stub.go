// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package brightness1

import (
	"github.com/linuxdeepin/go-lib/dbusutil"
)

func (m *Manager) GetInterfaceName() string {
	return dbusInterface
}

func (m *Manager) GetExportedMethods() dbusutil.ExportedMethods {
	return dbusutil.ExportedMethods{
		{
			Name:    methodSetBrightness,
			Fn:      m.SetBrightness,
			InArgs:  []string{"value"},
			OutArgs: []string{"result"},
		},
	}
}

func (m *Manager) setPropCurrentBrightness(val int32) {
	if m.CurrentBrightness != val {
		m.CurrentBrightness = val
		m.emitPropChanged(propCurrentBrightness, val)
	}
}

func (m *Manager) emitPropChanged(name string, val int32) {
	if m.service == nil {
		return
	}
	err := m.service.EmitPropertyChanged(m, name, val)
	if err != nil {
		logger.Warning(err)
	}
}
