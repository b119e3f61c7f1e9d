// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package physical

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/relplan/optcore/pkg/opt"
	"golang.org/x/exp/maps"
)

// CTEType is the role an operator plays for a common table expression.
type CTEType int8

const (
	// CTEProducer computes the rows of the CTE.
	CTEProducer CTEType = iota + 1
	// CTEConsumer reads the rows computed by the producer.
	CTEConsumer
)

func (t CTEType) String() string {
	switch t {
	case CTEProducer:
		return "producer"
	case CTEConsumer:
		return "consumer"
	}
	return fmt.Sprintf("cte-type(%d)", t)
}

// SafeValue implements the redact.SafeValue interface.
func (CTEType) SafeValue() {}

// CTEMap records the CTEs produced and consumed below an operator. A CTE whose
// producer and consumers are all below the operator is resolved and no longer
// appears in the map.
//
// A CTEMap is never modified after construction; the nil map is the empty
// one.
type CTEMap map[opt.CTEID]CTEType

// Any returns true if no CTE is produced or consumed.
func (m CTEMap) Any() bool {
	return len(m) == 0
}

// Lookup returns the role recorded for the CTE.
func (m CTEMap) Lookup(id opt.CTEID) (CTEType, bool) {
	t, ok := m[id]
	return t, ok
}

// Insert returns a map that also records the given role for the CTE.
// Inserting the producer of a consumed CTE, or the reverse, resolves it.
func (m CTEMap) Insert(id opt.CTEID, typ CTEType) CTEMap {
	return m.Union(CTEMap{id: typ})
}

// Union returns the map describing both subtrees.
func (m CTEMap) Union(other CTEMap) CTEMap {
	if len(other) == 0 {
		return m
	}
	if len(m) == 0 {
		return other
	}
	res := make(CTEMap, len(m)+len(other))
	for id, t := range m {
		res[id] = t
	}
	for id, t := range other {
		if prev, ok := res[id]; ok && prev != t {
			delete(res, id)
			continue
		}
		res[id] = t
	}
	return res
}

// Equals returns true if both maps record the same roles.
func (m CTEMap) Equals(other CTEMap) bool {
	return maps.Equal(m, other)
}

func (m CTEMap) String() string {
	return formatCTEs(m)
}

// CTEReq lists the CTEs that must appear below an operator with the given
// roles.
type CTEReq map[opt.CTEID]CTEType

// Any returns true if no CTE is required.
func (r CTEReq) Any() bool {
	return len(r) == 0
}

// Equals returns true if both requirements are the same.
func (r CTEReq) Equals(other CTEReq) bool {
	return maps.Equal(r, other)
}

// SatisfiedBy returns true if every required CTE appears in the derived map
// with the required role.
func (r CTEReq) SatisfiedBy(derived CTEMap) bool {
	for id, t := range r {
		if got, ok := derived[id]; !ok || got != t {
			return false
		}
	}
	return true
}

// Without returns the requirement without the given CTE.
func (r CTEReq) Without(id opt.CTEID) CTEReq {
	if _, ok := r[id]; !ok {
		return r
	}
	res := make(CTEReq, len(r)-1)
	for k, t := range r {
		if k != id {
			res[k] = t
		}
	}
	return res
}

func (r CTEReq) String() string {
	return formatCTEs(r)
}

func formatCTEs(m map[opt.CTEID]CTEType) string {
	if len(m) == 0 {
		return "none"
	}
	ids := maps.Keys(m)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var buf bytes.Buffer
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%s:%s", id, m[id])
	}
	return buf.String()
}
