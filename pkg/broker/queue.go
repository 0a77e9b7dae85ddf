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

package broker

import "sync"

// waiter serializes id allocation with the condition broadcast so that a consumer
// that has just been woken is guaranteed to find the new entry installed.
type waiter struct {
	sync.Mutex
	cond *sync.Cond

	// nextID is the next sequence to allocate. Mutated under the mutex by the
	// producer path, and advanced by the apply path during replay.
	nextID int64
}

func newWaiter() *waiter {
	w := &waiter{}
	w.cond = sync.NewCond(w)
	return w
}

// queue is one named FIFO. The entries are guarded by the waiter's mutex.
type queue struct {
	name  QueueName
	owner ConnectionID

	waiter *waiter

	// ids holds the sequence ids in insertion order - strictly increasing
	ids     []int64
	entries map[int64]*Entry
}

func newQueue(owner ConnectionID, name QueueName) *queue {
	return &queue{
		name:    name,
		owner:   owner,
		waiter:  newWaiter(),
		entries: make(map[int64]*Entry),
	}
}

// insert stores the entry under id, advances nextID past id, and broadcasts the
// condition. The caller must hold the waiter's mutex.
func (a *queue) insert(id int64, e *Entry) {
	if _, exists := a.entries[id]; !exists {
		a.ids = append(a.ids, id)
	}
	a.entries[id] = e
	if id >= a.waiter.nextID {
		a.waiter.nextID = id + 1
	}
	a.waiter.cond.Broadcast()
}

// removeID deletes the entry if present - a no-op otherwise.
// The caller must hold the waiter's mutex.
func (a *queue) removeID(id int64) {
	if _, exists := a.entries[id]; !exists {
		return
	}
	delete(a.entries, id)
	for i, v := range a.ids {
		if v == id {
			a.ids = append(a.ids[:i], a.ids[i+1:]...)
			break
		}
	}
}

// length returns the number of stored entries. The caller must hold the waiter's mutex.
func (a *queue) length() int {
	return len(a.entries)
}

// contents returns a snapshot of the current entries in insertion order
func (a *queue) contents() []QueueEntry {
	a.waiter.Lock()
	defer a.waiter.Unlock()
	snapshot := make([]QueueEntry, len(a.ids))
	for i, id := range a.ids {
		snapshot[i] = QueueEntry{
			ID:    MessageID{Name: a.name, ID: id},
			Entry: a.entries[id],
		}
	}
	return snapshot
}

// after returns the messages with ids strictly greater than from, in insertion order
func (a *queue) after(from int64) []TransferItem {
	a.waiter.Lock()
	defer a.waiter.Unlock()
	var items []TransferItem
	for _, id := range a.ids {
		if id > from {
			items = append(items, TransferItem{
				ID:      MessageID{Name: a.name, ID: id},
				Message: a.entries[id].Message,
			})
		}
	}
	return items
}

// entry returns the entry for the id, or nil
func (a *queue) entry(id int64) *Entry {
	a.waiter.Lock()
	defer a.waiter.Unlock()
	return a.entries[id]
}
