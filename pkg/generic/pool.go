// Package generic provides typed wrappers over sync primitives.
package generic

import "sync"

// Pool is a typed wrapper around sync.Pool.
type Pool[T any] struct {
	inner sync.Pool
}

// NewPool returns a pool that uses construct to mint new values.
func NewPool[T any](construct func() T) *Pool[T] {
	return &Pool[T]{
		inner: sync.Pool{
			New: func() any { return construct() },
		},
	}
}

// NewHotPool returns a pool pre-seeded with warm ready-to-use values.
func NewHotPool[T any](construct func() T, warm int) *Pool[T] {
	p := NewPool(construct)
	for i := 0; i < warm; i++ {
		p.inner.Put(construct())
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.inner.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	p.inner.Put(value)
}
