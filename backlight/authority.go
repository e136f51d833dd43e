// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package backlight

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/dde-panel-state/common/busconn"
	"golang.org/x/xerrors"
)

const (
	login1Service          = "org.freedesktop.login1"
	login1SessionInterface = "org.freedesktop.login1.Session"

	DefaultSessionPath dbus.ObjectPath = "/org/freedesktop/login1/session/auto"
)

// Authority performs the privileged brightness write.
type Authority interface {
	SetBrightness(ctx context.Context, subsystem, name string, value uint32) error
}

// SessionAuthority writes through logind's Session.SetBrightness, which lets
// the active session change its own backlight without root. Every call uses
// a fresh system bus connection.
type SessionAuthority struct {
	SessionPath dbus.ObjectPath
}

func (a SessionAuthority) SetBrightness(ctx context.Context, subsystem, name string, value uint32) error {
	sessionPath := a.SessionPath
	if sessionPath == "" {
		sessionPath = DefaultSessionPath
	}

	conn, err := busconn.OpenService(ctx, busconn.System, login1Service)
	if err != nil {
		return err
	}
	defer conn.Close()

	err = conn.Object(login1Service, sessionPath).CallWithContext(ctx,
		login1SessionInterface+".SetBrightness", 0, subsystem, name, value).Err
	if err != nil {
		return xerrors.Errorf("login1 SetBrightness(%s, %s, %d): %w", subsystem, name, value, err)
	}
	return nil
}
