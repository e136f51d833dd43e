// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package feed

import (
	"context"
	"fmt"
	"sync"
)

// State of the shared source behind one key.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateSubscribed
	StatePermanentlySilent
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateSubscribed:
		return "Subscribed"
	case StatePermanentlySilent:
		return "PermanentlySilent"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type member[T any] struct {
	ctx context.Context
	ch  chan T
}

type entry[T any] struct {
	cancel  context.CancelFunc
	state   State
	members []*member[T]
}

// Registry deduplicates subscriptions by key: all subscribers of a key share
// one running source, and the source is cancelled when the last of them
// goes away. There is no reconnection; a failed source stays silent until
// every subscriber of its key has left.
type Registry[T any] struct {
	name string
	open Source[T]

	mu      sync.Mutex
	entries map[string]*entry[T]
}

func NewRegistry[T any](name string, open Source[T]) *Registry[T] {
	return &Registry[T]{
		name:    name,
		open:    open,
		entries: make(map[string]*entry[T]),
	}
}

// Subscribe returns a feed of the source registered under key. The feed
// stays attached until ctx ends.
func (r *Registry[T]) Subscribe(ctx context.Context, key string) *Feed[T] {
	m := &member[T]{
		ctx: ctx,
		ch:  make(chan T),
	}

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		runCtx, cancel := context.WithCancel(context.Background())
		e = &entry[T]{
			cancel: cancel,
			state:  StateConnecting,
		}
		r.entries[key] = e
		go r.run(runCtx, key, e)
	}
	e.members = append(e.members, m)
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.leave(key, e, m)
	}()
	return New[T](m.ch)
}

// State reports the state of the source behind key.
func (r *Registry[T]) State(key string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return StateIdle
	}
	return e.state
}

func (r *Registry[T]) setState(e *entry[T], state State) {
	r.mu.Lock()
	e.state = state
	r.mu.Unlock()
}

func (r *Registry[T]) run(ctx context.Context, key string, e *entry[T]) {
	f := Open(ctx, fmt.Sprintf("%s feed %q", r.name, key), r.open)
	if f.IsPending() {
		r.setState(e, StatePermanentlySilent)
		return
	}
	r.setState(e, StateSubscribed)
	logger.Debugf("%s feed %q subscribed", r.name, key)

	for {
		select {
		case v, ok := <-f.C():
			if !ok {
				logger.Warningf("%s feed %q: source ended", r.name, key)
				r.setState(e, StatePermanentlySilent)
				return
			}
			r.broadcast(ctx, e, v)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry[T]) broadcast(ctx context.Context, e *entry[T], v T) {
	r.mu.Lock()
	members := make([]*member[T], len(e.members))
	copy(members, e.members)
	r.mu.Unlock()

	for _, m := range members {
		select {
		case m.ch <- v:
		case <-m.ctx.Done():
		case <-ctx.Done():
			return
		}
	}
}

func (r *Registry[T]) leave(key string, e *entry[T], m *member[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, member := range e.members {
		if member == m {
			e.members = append(e.members[:i], e.members[i+1:]...)
			break
		}
	}
	if len(e.members) != 0 {
		return
	}
	if r.entries[key] == e {
		delete(r.entries, key)
	}
	e.cancel()
	logger.Debugf("%s feed %q released", r.name, key)
}
