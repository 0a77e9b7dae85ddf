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

// Package journal provides a redo log over a fixed-capacity block ring.
//
// Records are appended through a single consumer goroutine which makes each record
// durable in the ring and then hands it, in order, to the apply function. Append order,
// durability order, and apply order are all the same total order. On startup the
// journal replays every stored record through the apply function before any new
// append is accepted, so no observer sees a partially recovered state.
//
// A failed ring write surfaces as a failed append - the record is never applied,
// so a failed append leaves the in-memory state unchanged.
package journal
