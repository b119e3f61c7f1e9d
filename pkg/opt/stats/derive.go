// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package stats

import (
	"github.com/relplan/optcore/pkg/opt"
	"github.com/relplan/optcore/pkg/opt/props"
)

// DeriveJoin is like Join, but converts a violated precondition into an error
// instead of propagating the panic.
func (b *Builder) DeriveJoin(
	joinType opt.JoinType, outer, inner *props.Statistics, preds []JoinPredicate,
) (s *props.Statistics, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = opt.CatchOptimizerError(r)
		}
	}()
	return b.Join(joinType, outer, inner, preds), nil
}
