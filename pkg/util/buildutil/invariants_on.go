// Copyright 2023 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

//go:build invariants || race
// +build invariants race

package buildutil

// Invariants is enabled when built with the invariants or race build tags. It
// enables expensive invariant checks on histograms, statistics and physical
// property derivation.
const Invariants = true
