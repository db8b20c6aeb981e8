// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package program compiles camera setups into kernel units and caches them.
//
// A unit is the set of warp kernels specialized for one camera setup and
// tile size. Building a unit resolves every kernel by entry point name and,
// when shader emission is enabled, generates the matching WGSL module and
// compiles it to SPIR-V with naga so GPU backends can load it.
//
// Units are immutable once built and are reused by the cache for identical
// setups. The cache never evicts: a process sees only a handful of setups.
package program
