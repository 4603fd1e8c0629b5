// Package coordinator provides the polling machinery that keeps NAS
// snapshots fresh and fans change notifications out to entities.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
)

// Reader is the read contract entities bind their generic coordinator
// parameter to.
type Reader interface {
	// LastSuccess is the time of the last successful refresh, zero before
	// the first one.
	LastSuccess() time.Time
	// LastError is the error of the most recent refresh, nil on success.
	LastError() error
}

// Coordinator periodically runs an update function and notifies listeners.
type Coordinator[T any] struct {
	name     string
	interval time.Duration
	update   func(context.Context) (T, error)
	logger   client.Logger

	mu        sync.Mutex
	data      T
	lastErr   error
	lastOK    time.Time
	listeners map[int]func()
	nextID    int
}

// New builds a coordinator around the given update function. The function is
// not called until the first Refresh.
func New[T any](name string, interval time.Duration, logger client.Logger, update func(context.Context) (T, error)) *Coordinator[T] {
	if logger == nil {
		logger = client.NopLogger
	}
	return &Coordinator[T]{
		name:      name,
		interval:  interval,
		update:    update,
		logger:    logger,
		listeners: map[int]func(){},
	}
}

// Refresh runs the update function once and notifies listeners on success.
func (c *Coordinator[T]) Refresh(ctx context.Context) error {
	data, err := c.update(ctx)

	c.mu.Lock()
	c.lastErr = err
	if err == nil {
		c.data = data
		c.lastOK = time.Now()
	}
	notify := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		notify = append(notify, fn)
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("refresh failed", "coordinator", c.name, "error", err)
		return err
	}
	for _, fn := range notify {
		fn()
	}
	return nil
}

// Data returns the snapshot of the last successful refresh.
func (c *Coordinator[T]) Data() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

// LastSuccess implements Reader.
func (c *Coordinator[T]) LastSuccess() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOK
}

// LastError implements Reader.
func (c *Coordinator[T]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// AddListener registers a callback invoked after each successful refresh and
// returns its removal func.
func (c *Coordinator[T]) AddListener(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Run polls until the context is cancelled. The first refresh happens
// immediately.
func (c *Coordinator[T]) Run(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial refresh failed", "coordinator", c.name, "error", err)
	}
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = c.Refresh(ctx)
		}
	}
}
