// SPDX-FileCopyrightText: 2018 - 2022 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package feed provides infinite event sequences. A Feed never signals
// completion: a source that fails to connect becomes a Pending feed, which
// from the consumer side cannot be told apart from a feed that is idle.
package feed

import (
	"context"

	"github.com/linuxdeepin/go-lib/log"
)

var logger = log.NewLogger("panel-state/feed")

// Source opens a change stream. The returned channel lives until ctx ends.
type Source[T any] func(ctx context.Context) (<-chan T, error)

type Feed[T any] struct {
	c <-chan T
}

func New[T any](c <-chan T) *Feed[T] {
	return &Feed[T]{c: c}
}

// Pending returns a feed that never yields and never ends.
func Pending[T any]() *Feed[T] {
	return &Feed[T]{}
}

func (f *Feed[T]) IsPending() bool {
	return f.c == nil
}

// C returns the underlying channel. Receiving from the channel of a Pending
// feed blocks forever.
func (f *Feed[T]) C() <-chan T {
	return f.c
}

// Next waits for the next value. The only error is the one of ctx.
func (f *Feed[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		select {
		case v, ok := <-f.c:
			if ok {
				return v, nil
			}
			// a closed source degrades to silence
			f.c = nil
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Open runs src and wraps its stream. A connection failure is logged and
// turns into a Pending feed.
func Open[T any](ctx context.Context, name string, src Source[T]) *Feed[T] {
	c, err := src(ctx)
	if err != nil {
		logger.Warningf("%s: %v", name, err)
		return Pending[T]()
	}
	return New(c)
}

func forward[T any](ctx context.Context, src <-chan T, out chan<- T) {
	for {
		select {
		case v, ok := <-src:
			if !ok {
				return
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Merge interleaves srcs. Values of one source keep their order; values of
// different sources are delivered in whatever order they arrive.
func Merge[T any](ctx context.Context, srcs ...<-chan T) <-chan T {
	out := make(chan T)
	for _, src := range srcs {
		go forward(ctx, src, out)
	}
	return out
}

// Chain yields initial first and then everything from rest.
func Chain[T any](ctx context.Context, initial []T, rest <-chan T) <-chan T {
	out := make(chan T)
	go func() {
		for _, v := range initial {
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
		forward(ctx, rest, out)
	}()
	return out
}

// Map applies fn to every value of src, in order.
func Map[A, B any](ctx context.Context, src <-chan A, fn func(A) B) <-chan B {
	out := make(chan B)
	go func() {
		for {
			select {
			case v, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- fn(v):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
