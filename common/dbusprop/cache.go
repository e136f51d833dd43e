// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package dbusprop implements typed proxies whose property reads return the
// last known value without a bus round trip. Values are refreshed from
// PropertiesChanged signals, or explicitly through Object.Refresh.
package dbusprop

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/log"
	"golang.org/x/xerrors"
)

var logger = log.NewLogger("panel-state/dbusprop")

var ErrNotCached = xerrors.New("property not cached")

// PropertyError is returned for a property that is missing from the cache or
// that holds a value of an unexpected type.
type PropertyError struct {
	Interface string
	Name      string
	Err       error
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("property %s.%s: %v", e.Interface, e.Name, e.Err)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// Properties is the read side of a cached proxy.
type Properties interface {
	Interface() string
	// Cached returns the last known value of the property.
	Cached(name string) (dbus.Variant, error)
	// Changed returns a channel that receives one wake-up per update touching
	// any of names. The channel is never closed; it goes quiet once ctx ends.
	Changed(ctx context.Context, names ...string) <-chan struct{}
}

type subscriber struct {
	ctx   context.Context
	names map[string]struct{}
	ch    chan struct{}
}

func (s *subscriber) wants(changed map[string]dbus.Variant, invalidated []string) bool {
	for name := range changed {
		if _, ok := s.names[name]; ok {
			return true
		}
	}
	for _, name := range invalidated {
		if _, ok := s.names[name]; ok {
			return true
		}
	}
	return false
}

// Cache holds the property values of one interface and fans change
// notifications out to subscribers.
type Cache struct {
	iface string

	// notifyMu keeps wake-ups of consecutive updates in arrival order.
	notifyMu sync.Mutex

	mu     sync.Mutex
	values map[string]dbus.Variant
	subs   []*subscriber
}

func NewCache(iface string, values map[string]dbus.Variant) *Cache {
	c := &Cache{
		iface:  iface,
		values: make(map[string]dbus.Variant, len(values)),
	}
	for name, value := range values {
		c.values[name] = value
	}
	return c
}

func (c *Cache) Interface() string {
	return c.iface
}

func (c *Cache) Cached(name string) (dbus.Variant, error) {
	c.mu.Lock()
	value, ok := c.values[name]
	c.mu.Unlock()
	if !ok {
		return dbus.Variant{}, &PropertyError{Interface: c.iface, Name: name, Err: ErrNotCached}
	}
	return value, nil
}

func (c *Cache) Changed(ctx context.Context, names ...string) <-chan struct{} {
	sub := &subscriber{
		ctx:   ctx,
		names: make(map[string]struct{}, len(names)),
		ch:    make(chan struct{}),
	}
	for _, name := range names {
		sub.names[name] = struct{}{}
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.removeSubscriber(sub)
	}()
	return sub.ch
}

func (c *Cache) removeSubscriber(sub *subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// Update stores changed values, forgets invalidated ones and wakes every
// interested subscriber. It blocks until each of them has taken the wake-up
// or has gone away.
func (c *Cache) Update(changed map[string]dbus.Variant, invalidated []string) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	for name, value := range changed {
		c.values[name] = value
	}
	for _, name := range invalidated {
		delete(c.values, name)
	}
	var targets []*subscriber
	for _, sub := range c.subs {
		if sub.wants(changed, invalidated) {
			targets = append(targets, sub)
		}
	}
	c.mu.Unlock()

	for _, sub := range targets {
		select {
		case sub.ch <- struct{}{}:
		case <-sub.ctx.Done():
		}
	}
}

// Get returns the cached value of name converted to T.
func Get[T any](p Properties, name string) (T, error) {
	var zero T
	variant, err := p.Cached(name)
	if err != nil {
		return zero, err
	}
	value, ok := variant.Value().(T)
	if !ok {
		return zero, &PropertyError{
			Interface: p.Interface(),
			Name:      name,
			Err:       xerrors.Errorf("unexpected value of signature %q", variant.Signature().String()),
		}
	}
	return value, nil
}

// GetOr is Get with read failures mapped to the zero value of T.
func GetOr[T any](p Properties, name string) T {
	value, err := Get[T](p, name)
	if err != nil {
		logger.Debug(err)
	}
	return value
}
