// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package busconn opens bus connections on demand. Connections are private
// to the caller and are never shared process-wide: every logical operation
// opens its own connection and closes it when done.
package busconn

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	sessionbus "github.com/linuxdeepin/go-dbus-factory/session/org.freedesktop.dbus"
	systembus "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.dbus"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("panel-state/busconn")

type Kind int

const (
	System Kind = iota
	Session
)

func (k Kind) String() string {
	switch k {
	case System:
		return "system"
	case Session:
		return "session"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ConnectionError reports that a bus is unreachable or that the requested
// service has no owner on it.
type ConnectionError struct {
	Bus     Kind
	Service string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("connect %s bus: %v", e.Bus, e.Err)
	}
	return fmt.Sprintf("connect %s on %s bus: %v", e.Service, e.Bus, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ErrNoOwner is wrapped by ConnectionError when the service is not running.
var ErrNoOwner = xerrors.New("name has no owner")

var connectFns = map[Kind]func(opts ...dbus.ConnOption) (*dbus.Conn, error){
	System:  dbus.ConnectSystemBus,
	Session: dbus.ConnectSessionBus,
}

// Open returns a new private connection to the bus of the given kind.
func Open(kind Kind, opts ...dbus.ConnOption) (*dbus.Conn, error) {
	fn, ok := connectFns[kind]
	if !ok {
		return nil, &ConnectionError{Bus: kind, Err: xerrors.New("unknown bus kind")}
	}
	conn, err := fn(opts...)
	if err != nil {
		return nil, &ConnectionError{Bus: kind, Err: err}
	}
	logger.Debugf("opened %s bus connection %s", kind, conn.Names())
	return conn, nil
}

// OpenService opens a connection and checks that service is currently owned
// on it. On failure the connection is closed and a *ConnectionError returned.
func OpenService(ctx context.Context, kind Kind, service string) (*dbus.Conn, error) {
	conn, err := Open(kind, dbus.WithContext(ctx))
	if err != nil {
		if ce, ok := err.(*ConnectionError); ok {
			ce.Service = service
		}
		return nil, err
	}

	hasOwner, err := HasOwner(conn, kind, service)
	if err == nil && !hasOwner {
		err = ErrNoOwner
	}
	if err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Bus: kind, Service: service, Err: err}
	}
	return conn, nil
}

// HasOwner asks the bus daemon whether name is owned.
func HasOwner(conn *dbus.Conn, kind Kind, name string) (bool, error) {
	if kind == Session {
		return sessionbus.NewDBus(conn).NameHasOwner(0, name)
	}
	return systembus.NewDBus(conn).NameHasOwner(0, name)
}
