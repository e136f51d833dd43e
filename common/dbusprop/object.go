// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package dbusprop

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"golang.org/x/xerrors"
)

const (
	propsInterface          = "org.freedesktop.DBus.Properties"
	propsSignalChanged      = propsInterface + ".PropertiesChanged"
	propsMethodGet          = propsInterface + ".Get"
	propsMethodGetAll       = propsInterface + ".GetAll"
	propsMethodSet          = propsInterface + ".Set"
	memberPropertiesChanged = "PropertiesChanged"
)

// Object is a proxy for one interface of one remote object. Property values
// are fetched once with GetAll and then kept current from PropertiesChanged
// signals dispatched by the signal loop.
type Object struct {
	*Cache

	conn      *dbus.Conn
	obj       dbus.BusObject
	dest      string
	path      dbus.ObjectPath
	matchOpts []dbus.MatchOption

	removeHandler func()
}

// NewObject builds a proxy on the connection of loop. The loop must be
// started by the caller.
func NewObject(ctx context.Context, loop *dbusutil.SignalLoop, dest string, path dbus.ObjectPath,
	iface string) (*Object, error) {
	if !path.IsValid() {
		return nil, xerrors.Errorf("invalid object path %q", path)
	}
	conn := loop.Conn()
	o := &Object{
		Cache: NewCache(iface, nil),
		conn:  conn,
		obj:   conn.Object(dest, path),
		dest:  dest,
		path:  path,
		matchOpts: []dbus.MatchOption{
			dbus.WithMatchSender(dest),
			dbus.WithMatchObjectPath(path),
			dbus.WithMatchInterface(propsInterface),
			dbus.WithMatchMember(memberPropertiesChanged),
			dbus.WithMatchArg(0, iface),
		},
	}

	err := conn.AddMatchSignal(o.matchOpts...)
	if err != nil {
		return nil, xerrors.Errorf("add match for %s: %w", path, err)
	}
	handlerID := loop.AddHandler(&dbusutil.SignalRule{
		Path: path,
		Name: propsSignalChanged,
	}, o.handlePropertiesChanged)
	o.removeHandler = func() {
		loop.RemoveHandler(handlerID)
	}

	err = o.Refresh(ctx)
	if err != nil {
		o.Destroy()
		return nil, err
	}
	return o, nil
}

func (o *Object) Path() dbus.ObjectPath {
	return o.path
}

// Refresh replaces the cache with a fresh GetAll snapshot.
func (o *Object) Refresh(ctx context.Context) error {
	var values map[string]dbus.Variant
	err := o.obj.CallWithContext(ctx, propsMethodGetAll, 0, o.iface).Store(&values)
	if err != nil {
		return xerrors.Errorf("get all properties of %s %s: %w", o.path, o.iface, err)
	}
	o.Update(values, nil)
	return nil
}

// Call invokes method of the proxied interface.
func (o *Object) Call(ctx context.Context, method string, args ...interface{}) *dbus.Call {
	return o.obj.CallWithContext(ctx, o.iface+"."+method, 0, args...)
}

// Set writes a property. The cache is updated when the service announces the
// change, not here.
func (o *Object) Set(ctx context.Context, name string, value interface{}) error {
	return o.obj.CallWithContext(ctx, propsMethodSet, 0, o.iface, name, dbus.MakeVariant(value)).Err
}

func (o *Object) Destroy() {
	if o.removeHandler != nil {
		o.removeHandler()
		o.removeHandler = nil
	}
	err := o.conn.RemoveMatchSignal(o.matchOpts...)
	if err != nil {
		logger.Debug("remove match:", err)
	}
}

func (o *Object) handlePropertiesChanged(sig *dbus.Signal) {
	changed, invalidated, ok := parsePropertiesChanged(sig, o.iface)
	if !ok {
		return
	}

	var gone []string
	for _, name := range invalidated {
		var value dbus.Variant
		err := o.obj.Call(propsMethodGet, 0, o.iface, name).Store(&value)
		if err != nil {
			logger.Debugf("refetch invalidated %s.%s: %v", o.iface, name, err)
			gone = append(gone, name)
			continue
		}
		changed[name] = value
	}
	o.Update(changed, gone)
}

func parsePropertiesChanged(sig *dbus.Signal, iface string) (map[string]dbus.Variant, []string, bool) {
	if sig.Name != propsSignalChanged || len(sig.Body) < 3 {
		return nil, nil, false
	}
	name, ok := sig.Body[0].(string)
	if !ok || name != iface {
		return nil, nil, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return nil, nil, false
	}
	invalidated, ok := sig.Body[2].([]string)
	if !ok {
		return nil, nil, false
	}
	if changed == nil {
		changed = make(map[string]dbus.Variant)
	}
	return changed, invalidated, true
}
