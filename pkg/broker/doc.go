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

// Package broker implements an in-memory named-queue message switch.
//
// Producers post messages into named queues and consumers receive them in FIFO
// order, acknowledging each one to remove it from the queue. Queues are either
// persistent or transient - a transient queue is owned by a connection and is
// reaped when that connection disappears.
//
// Every mutation (add / remove / send / ack) is encoded as an Op and appended to
// a redo log before it becomes visible; the in-memory state is only ever mutated
// by the log's apply path. On startup the log is replayed to rebuild the state,
// which is then checked against the broker's structural invariants.
//
// Domain outcomes are not errors: sending into an unknown queue drops the message,
// acking an unknown id is a no-op, and a wait timeout is normal control flow.
// Only journal I/O and corruption surface as errors.
package broker
