/*
Package cowtree offers persistent, copy-on-write ordered maps.

Cowtree

A cowtree map is a B-tree whose nodes are never modified once they are
reachable from a published root. Every update copies the path from the root
down to the affected leaf and swaps in a new root. Older snapshots therefore
stay valid and may be read, iterated and serialized while the map moves on,
without locks and without copying the map.

	m := cowtree.New[string, int]()
	m.Put("b", 2)
	s := m.Snapshot()   // frozen view
	m.Put("a", 1)
	s.Len()             // still 1

Writers on the same map have to be serialized by the client; readers need
no synchronization at all.

The generic tree engine lives in sub-package btree. It is parameterized by a
policy, which supplies the key order, node fan-out bounds, a codec for leaf
entries and an aggregate ("total") function over the values of a node. Map
uses the element count as its aggregate. Sub-package merkle instantiates the
engine with a hashing aggregate, which yields an authenticated map whose root
digest identifies its content. Sub-packages snapshot and store publish and
persist such maps.

_________________________________________________________________________

BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions are met:

1. Redistributions of source code must retain the above copyright notice, this
list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright notice,
this list of conditions and the following disclaimer in the documentation
and/or other materials provided with the distribution.

3. Neither the name of the copyright holder nor the names of its
contributors may be used to endorse or promote products derived from
this software without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE
FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

*/
package cowtree

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to a global core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// MapError is an error type for the cowtree module
type MapError string

func (e MapError) Error() string {
	return string(e)
}

// ErrRecordTooLarge is flagged when a serialized leaf record announces a
// length beyond MaxRecordSize.
const ErrRecordTooLarge = MapError("leaf record too large")

// ErrIllegalArguments is flagged whenever function parameters are invalid.
const ErrIllegalArguments = MapError("illegal arguments")
