// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// slotIdx is the index of a setting in the per-instance override table.
type slotIdx int

// Setting is the interface exposing the metadata for a registered setting.
type Setting interface {
	// Key returns the name of the setting.
	Key() string
	// Typ returns the short (1 char) string denoting the type of setting.
	Typ() string
	// String returns the string representation of the current value.
	String(sv *Values) string
	// DefaultString returns the string representation of the default value.
	DefaultString() string

	decodeAndSet(sv *Values, encoded string) error
}

// FloatSetting is the interface of a setting variable that will be
// updated automatically when the corresponding cluster-wide setting
// of type "float" is updated.
type FloatSetting struct {
	key          string
	slot         slotIdx
	defaultValue float64
	validateFn   func(float64) error
}

var _ Setting = &FloatSetting{}

// Key implements the Setting interface.
func (f *FloatSetting) Key() string { return f.key }

// Typ implements the Setting interface.
func (*FloatSetting) Typ() string { return "f" }

// Get retrieves the float value in the setting.
func (f *FloatSetting) Get(sv *Values) float64 {
	if v, ok := sv.get(f.slot); ok {
		return v.(float64)
	}
	return f.defaultValue
}

func (f *FloatSetting) String(sv *Values) string {
	return strconv.FormatFloat(f.Get(sv), 'g', -1, 64)
}

// DefaultString implements the Setting interface.
func (f *FloatSetting) DefaultString() string {
	return strconv.FormatFloat(f.defaultValue, 'g', -1, 64)
}

// Validate that a value conforms with the validation function.
func (f *FloatSetting) Validate(v float64) error {
	if f.validateFn != nil {
		if err := f.validateFn(v); err != nil {
			return err
		}
	}
	return nil
}

// Override changes the setting without validation.
// For testing usage only.
func (f *FloatSetting) Override(sv *Values, v float64) {
	sv.set(f.slot, v)
}

func (f *FloatSetting) decodeAndSet(sv *Values, encoded string) error {
	v, err := strconv.ParseFloat(encoded, 64)
	if err != nil {
		return errors.Wrapf(err, "setting %s", redact.Safe(f.key))
	}
	if err := f.Validate(v); err != nil {
		return errors.Wrapf(err, "setting %s", redact.Safe(f.key))
	}
	sv.set(f.slot, v)
	return nil
}

// RegisterFloatSetting defines a new setting with type float.
func RegisterFloatSetting(
	key, desc string, defaultValue float64, validateFns ...func(float64) error,
) *FloatSetting {
	var validateFn func(float64) error
	if len(validateFns) > 0 {
		validateFn = func(v float64) error {
			for _, fn := range validateFns {
				if err := fn(v); err != nil {
					return errors.Wrapf(err, "invalid value for %s", redact.Safe(key))
				}
			}
			return nil
		}
		if err := validateFn(defaultValue); err != nil {
			panic(errors.Wrap(err, "invalid default"))
		}
	}
	setting := &FloatSetting{key: key, defaultValue: defaultValue, validateFn: validateFn}
	setting.slot = register(key, desc, setting)
	return setting
}

// NonNegativeFloat can be passed to RegisterFloatSetting.
func NonNegativeFloat(v float64) error {
	if v < 0 {
		return errors.Errorf("cannot set to a negative value: %f", v)
	}
	return nil
}

// PositiveFloat can be passed to RegisterFloatSetting.
func PositiveFloat(v float64) error {
	if v <= 0 {
		return errors.Errorf("cannot set to a non-positive value: %f", v)
	}
	return nil
}

// FloatInRange returns a validation function that checks that the value is in
// the closed interval [low, high].
func FloatInRange(low, high float64) func(float64) error {
	return func(v float64) error {
		if v < low || v > high {
			return errors.Errorf("expected value in range [%g, %g], got: %g", low, high, v)
		}
		return nil
	}
}

// BoolSetting is the interface of a setting variable that will be
// updated automatically when the corresponding cluster-wide setting
// of type "bool" is updated.
type BoolSetting struct {
	key          string
	slot         slotIdx
	defaultValue bool
}

var _ Setting = &BoolSetting{}

// Key implements the Setting interface.
func (b *BoolSetting) Key() string { return b.key }

// Typ implements the Setting interface.
func (*BoolSetting) Typ() string { return "b" }

// Get retrieves the bool value in the setting.
func (b *BoolSetting) Get(sv *Values) bool {
	if v, ok := sv.get(b.slot); ok {
		return v.(bool)
	}
	return b.defaultValue
}

func (b *BoolSetting) String(sv *Values) string {
	return strconv.FormatBool(b.Get(sv))
}

// DefaultString implements the Setting interface.
func (b *BoolSetting) DefaultString() string {
	return strconv.FormatBool(b.defaultValue)
}

// Override changes the setting without validation.
// For testing usage only.
func (b *BoolSetting) Override(sv *Values, v bool) {
	sv.set(b.slot, v)
}

func (b *BoolSetting) decodeAndSet(sv *Values, encoded string) error {
	v, err := strconv.ParseBool(encoded)
	if err != nil {
		return errors.Wrapf(err, "setting %s", redact.Safe(b.key))
	}
	sv.set(b.slot, v)
	return nil
}

// RegisterBoolSetting defines a new setting with type bool.
func RegisterBoolSetting(key, desc string, defaultValue bool) *BoolSetting {
	setting := &BoolSetting{key: key, defaultValue: defaultValue}
	setting.slot = register(key, desc, setting)
	return setting
}
