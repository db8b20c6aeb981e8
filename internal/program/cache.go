// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/warp/internal/camera"
	"github.com/gogpu/warp/internal/parallel"
)

// Cache maps camera setups to compiled units.
//
// Lookups compare setups with camera.Setup.Same in insertion order. A failed build
// is never inserted, so the next request for the same setup retries.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	compiler Compiler
	tile     parallel.TileSize
	entries  []*Unit
	builds   int
}

// NewCache creates an empty cache that builds units with compiler for the
// given tile size.
func NewCache(compiler Compiler, tile parallel.TileSize) *Cache {
	return &Cache{compiler: compiler, tile: tile}
}

// Obtain returns the unit for s, building and inserting it on first use.
func (c *Cache) Obtain(s camera.Setup) (*Unit, error) {
	if !s.HasValidScreen() {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidScreen, s.Width, s.Height)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range c.entries {
		if u.Setup().Same(s) {
			return u, nil
		}
	}

	start := time.Now()
	u, err := c.compiler.Compile(s, c.tile)
	c.builds++
	if err != nil {
		slogger().Warn("program: build failed", "setup", s.String(), "err", err)
		return nil, err
	}
	c.entries = append(c.entries, u)
	slogger().Info("program: built",
		"setup", s.String(),
		"tile", c.tile.String(),
		"elapsed", time.Since(start),
		"cached", len(c.entries))
	return u, nil
}

// Len returns the number of cached units.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Builds returns the number of compile attempts so far.
func (c *Cache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}

// Tile returns the tile size units are built for.
func (c *Cache) Tile() parallel.TileSize { return c.tile }

// Invalidate drops every cached unit.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}
