// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/relplan/optcore/pkg/opt"
)

// ParseOrderSpec parses the representation produced by OrderSpec.String, for
// example "+1,-2". The empty string and "any" both parse to the empty spec.
func ParseOrderSpec(s string) (OrderSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "any" {
		return OrderSpec{}, nil
	}
	var ordering opt.Ordering
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) < 2 || (part[0] != '+' && part[0] != '-') {
			return OrderSpec{}, errors.Errorf("invalid ordering column %q", part)
		}
		id, err := strconv.Atoi(part[1:])
		if err != nil || id <= 0 {
			return OrderSpec{}, errors.Errorf("invalid ordering column %q", part)
		}
		ordering = append(ordering, opt.MakeOrderingColumn(opt.ColumnID(id), part[0] == '-'))
	}
	return OrderSpec{Ordering: ordering}, nil
}

// ParseDistributionSpec parses the representation produced by
// DistributionSpec.String, for example "singleton" or "hashed(1,2)".
func ParseDistributionSpec(s string) (DistributionSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AnyDistribution, nil
	}
	name, rest, found := strings.Cut(s, "(")
	kind, err := ParseDistributionKind(name)
	if err != nil {
		return DistributionSpec{}, err
	}
	if kind != DistributionHashed {
		if found {
			return DistributionSpec{}, errors.Errorf("%s distribution takes no columns", kind)
		}
		return DistributionSpec{Kind: kind}, nil
	}
	if !found || !strings.HasSuffix(rest, ")") {
		return DistributionSpec{}, errors.Errorf("hashed distribution requires columns: %q", s)
	}
	cols, err := ParseColSet(strings.TrimSuffix(rest, ")"))
	if err != nil {
		return DistributionSpec{}, err
	}
	if cols.Empty() {
		return DistributionSpec{}, errors.Errorf("hashed distribution requires columns: %q", s)
	}
	return HashedDistribution(cols), nil
}

// ParseColSet parses the representation produced by opt.ColSet.String, with
// or without the surrounding parentheses: "(1-3,5)" holds 1, 2, 3 and 5.
func ParseColSet(s string) (opt.ColSet, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "("), ")")
	var cols opt.ColSet
	if strings.TrimSpace(s) == "" {
		return cols, nil
	}
	for _, part := range strings.Split(s, ",") {
		lo, hi, isRange := strings.Cut(strings.TrimSpace(part), "-")
		from, err := strconv.Atoi(lo)
		if err != nil || from <= 0 {
			return opt.ColSet{}, errors.Errorf("invalid column %q", part)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(hi); err != nil || to < from {
				return opt.ColSet{}, errors.Errorf("invalid column range %q", part)
			}
		}
		for id := from; id <= to; id++ {
			cols.Add(opt.ColumnID(id))
		}
	}
	return cols, nil
}
