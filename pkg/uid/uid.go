// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package uid provides unique identifier generation backed by NUID, which is
// highly performant and cluster-unique enough for naming waiter handles and connections.
package uid

import (
	"hash/fnv"

	"github.com/nats-io/nuid"
)

// UID is a unique identifier
type UID string

// Hash returns the FNV-1 64-bit hash for the UID
func (a UID) Hash() UIDHash {
	hasher := fnv.New64()
	hasher.Write([]byte(a))
	return UIDHash(hasher.Sum64())
}

// UIDHash is a 64-bit hashed form of a UID
type UIDHash uint64

// UInt64 returns the hash as a uint64
func (a UIDHash) UInt64() uint64 {
	return uint64(a)
}

// NextUID returns the next unique id
func NextUID() UID {
	return UID(nuid.Next())
}

// NextUIDHash returns the next unique id in hashed form
func NextUIDHash() UIDHash {
	return NextUID().Hash()
}
