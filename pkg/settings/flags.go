// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package settings

import "github.com/spf13/pflag"

// settingValue adapts a registered setting to the pflag.Value interface so
// that every setting can be overridden from the command line.
type settingValue struct {
	sv      *Values
	setting Setting
}

var _ pflag.Value = settingValue{}

func (v settingValue) String() string { return v.setting.String(v.sv) }

func (v settingValue) Set(s string) error { return v.setting.decodeAndSet(v.sv, s) }

func (v settingValue) Type() string {
	switch v.setting.Typ() {
	case "f":
		return "float"
	case "b":
		return "bool"
	}
	return "string"
}

// RegisterFlags adds one flag per visible setting to fs. Parsing the flags
// overrides the settings in sv.
func RegisterFlags(fs *pflag.FlagSet, sv *Values) {
	for _, key := range Keys() {
		s, desc, _ := Lookup(key)
		f := fs.VarPF(settingValue{sv: sv, setting: s}, key, "", desc)
		if s.Typ() == "b" {
			f.NoOptDefVal = "true"
		}
		f.DefValue = s.DefaultString()
	}
}
