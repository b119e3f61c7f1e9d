// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package settings holds the tunable knobs of the optimizer. Settings are
// registered once, at init time, with a key, a description and a default
// value; a Values instance carries the overrides of one optimizer instance.
package settings

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// registry contains all defined settings, their types and default values.
//
// Entries in registry should be accompanied by an exported, typesafe getter
// that then wraps one of the private helpers.
//
// Registry should never be mutated after init (except in tests), as it is read
// concurrently by different callers.
var registry = map[string]wrappedSetting{}

// slotTable maps slot indexes back to settings.
var slotTable []Setting

// frozen becomes non-zero once the registry is "live".
var frozen int32

// Freeze ensures that no new settings can be defined.
func Freeze() { atomic.StoreInt32(&frozen, 1) }

func assertNotFrozen(key string) {
	if atomic.LoadInt32(&frozen) > 0 {
		panic(fmt.Sprintf("registration must occur before the registry is frozen: %s", key))
	}
}

// register adds a setting to the registry and returns its slot.
func register(key, desc string, s Setting) slotIdx {
	assertNotFrozen(key)
	if _, ok := registry[key]; ok {
		panic(fmt.Sprintf("setting already defined: %s", key))
	}
	slot := slotIdx(len(slotTable))
	slotTable = append(slotTable, s)
	registry[key] = wrappedSetting{description: desc, setting: s}
	return slot
}

// Hide prevents a setting from showing up in Keys. It can still be looked up
// if the exact setting name is known.
func Hide(key string) {
	assertNotFrozen(key)
	s, ok := registry[key]
	if !ok {
		panic(fmt.Sprintf("setting not found: %s", key))
	}
	s.hidden = true
	registry[key] = s
}

type wrappedSetting struct {
	description string
	hidden      bool
	setting     Setting
}

// Keys returns a sorted string array with all the known keys.
func Keys() (res []string) {
	res = make([]string, 0, len(registry))
	for k := range registry {
		if registry[k].hidden {
			continue
		}
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Lookup returns a Setting by name along with its description.
func Lookup(name string) (Setting, string, bool) {
	v, ok := registry[name]
	if !ok {
		return nil, "", false
	}
	return v.setting, v.description, true
}

// TestingSaveRegistry can be used in tests to save/restore the current
// contents of the registry.
func TestingSaveRegistry() func() {
	var origRegistry = make(map[string]wrappedSetting)
	for k, v := range registry {
		origRegistry[k] = v
	}
	origSlots := append([]Setting(nil), slotTable...)
	return func() {
		registry = origRegistry
		slotTable = origSlots
	}
}
