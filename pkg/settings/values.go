// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"gopkg.in/yaml.v2"
)

// Values is a container that stores the overridden values of all registered
// settings for one optimizer instance. Settings without an override report
// their default value. A nil *Values is valid and always reports defaults.
type Values struct {
	mu struct {
		sync.RWMutex
		overrides map[slotIdx]interface{}
	}
}

// MakeTestingValues returns a fresh Values container with no overrides.
func MakeTestingValues() *Values {
	return &Values{}
}

func (sv *Values) get(slot slotIdx) (interface{}, bool) {
	if sv == nil {
		return nil, false
	}
	sv.mu.RLock()
	defer sv.mu.RUnlock()
	v, ok := sv.mu.overrides[slot]
	return v, ok
}

func (sv *Values) set(slot slotIdx, v interface{}) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	if sv.mu.overrides == nil {
		sv.mu.overrides = make(map[slotIdx]interface{})
	}
	sv.mu.overrides[slot] = v
}

// Set parses the encoded value and overrides the setting with the given key.
func (sv *Values) Set(key, encoded string) error {
	s, _, ok := Lookup(key)
	if !ok {
		return errors.Errorf("unknown setting: %s", redact.Safe(key))
	}
	return s.decodeAndSet(sv, encoded)
}

// Reset removes any override of the setting with the given key.
func (sv *Values) Reset(key string) error {
	w, ok := registry[key]
	if !ok {
		return errors.Errorf("unknown setting: %s", redact.Safe(key))
	}
	var slot slotIdx
	switch s := w.setting.(type) {
	case *FloatSetting:
		slot = s.slot
	case *BoolSetting:
		slot = s.slot
	default:
		return errors.AssertionFailedf("unhandled setting type %T", s)
	}
	sv.mu.Lock()
	defer sv.mu.Unlock()
	delete(sv.mu.overrides, slot)
	return nil
}

// LoadYAML applies the overrides found in the given YAML document, which
// must be a flat mapping from setting key to value:
//
//	sql.opt.stats.default_join_scale_factor: 50
//	sql.opt.stats.ndv_scale_propagation.enabled: false
func (sv *Values) LoadYAML(data []byte) error {
	var raw yaml.MapSlice
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "parsing settings")
	}
	for _, item := range raw {
		key, ok := item.Key.(string)
		if !ok {
			return errors.Errorf("setting key must be a string, found %v", item.Key)
		}
		encoded, err := yaml.Marshal(item.Value)
		if err != nil {
			return errors.Wrapf(err, "setting %s", redact.Safe(key))
		}
		if err := sv.Set(key, trimYAMLScalar(encoded)); err != nil {
			return err
		}
	}
	return nil
}

// trimYAMLScalar strips the trailing newline yaml.Marshal appends to scalars.
func trimYAMLScalar(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == ' ') {
		b = b[:len(b)-1]
	}
	return string(b)
}
