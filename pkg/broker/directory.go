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

import (
	"sort"
	"sync"

	"github.com/Zhengchai/message-switch/pkg/commons/collections/sets"
	"github.com/Zhengchai/message-switch/pkg/uid"
)

// directory is the registry of queues by name, plus the owner reverse index and
// the table of pending creation waiters for not-yet-existing queues.
//
// The creation waiter table is in-memory only - it holds promises that are woken
// when a queue with that name comes into existence, and is never journalled.
type directory struct {
	mutex sync.RWMutex

	queues  map[QueueName]*queue
	byOwner map[ConnectionID]sets.Strings

	creations map[QueueName]map[uid.UID]chan struct{}
}

func newDirectory() *directory {
	return &directory{
		queues:    make(map[QueueName]*queue),
		byOwner:   make(map[ConnectionID]sets.Strings),
		creations: make(map[QueueName]map[uid.UID]chan struct{}),
	}
}

// add installs a fresh queue and wakes all pending creation waiters for the name
// exactly once. If the name already exists nothing changes - add is idempotent.
// The created queue is returned, or nil on the idempotent path.
func (a *directory) add(owner ConnectionID, name QueueName) *queue {
	a.mutex.Lock()
	if _, exists := a.queues[name]; exists {
		a.mutex.Unlock()
		return nil
	}
	q := newQueue(owner, name)
	a.queues[name] = q
	if owner != NoConnection {
		owned := a.byOwner[owner]
		if owned == nil {
			owned = sets.NewStrings()
			a.byOwner[owner] = owned
		}
		owned.Add(string(name))
	}
	waiters := a.creations[name]
	delete(a.creations, name)
	a.mutex.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
	return q
}

// remove deletes the queue and its reverse index entry. Idempotent - removing a
// missing name is a no-op. No waiters are woken; a consumer whose queue disappears
// will time out on wait.
func (a *directory) remove(name QueueName) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	q, exists := a.queues[name]
	if !exists {
		return
	}
	delete(a.queues, name)
	if q.owner != NoConnection {
		if owned := a.byOwner[q.owner]; owned != nil {
			owned.Remove(string(name))
			if owned.Empty() {
				delete(a.byOwner, q.owner)
			}
		}
	}
}

// get returns the named queue if it exists
func (a *directory) get(name QueueName) (*queue, bool) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	q, exists := a.queues[name]
	return q, exists
}

// find returns the named queue, or an ephemeral empty queue with the requested
// name so that read paths can proceed without existence checks. Nothing is inserted.
func (a *directory) find(name QueueName) *queue {
	if q, exists := a.get(name); exists {
		return q
	}
	return newQueue(NoConnection, name)
}

// list returns all queue names that begin with prefix, sorted
func (a *directory) list(prefix string) []QueueName {
	a.mutex.RLock()
	var names []QueueName
	for name := range a.queues {
		if name.HasPrefix(prefix) {
			names = append(names, name)
		}
	}
	a.mutex.RUnlock()
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// ownedQueues returns the names of all queues owned by the connection, sorted
func (a *directory) ownedQueues(owner ConnectionID) []QueueName {
	a.mutex.RLock()
	owned := a.byOwner[owner]
	a.mutex.RUnlock()
	if owned == nil {
		return nil
	}
	values := owned.SortedValues()
	names := make([]QueueName, len(values))
	for i, v := range values {
		names[i] = QueueName(v)
	}
	return names
}

// waitForCreation registers a one-shot waiter for the name. The returned channel
// is closed when a queue with that name comes into existence. cancel de-registers
// the waiter; after cancel the channel is closed without the queue existing, so
// callers treat a wake as a hint and re-check state.
//
// If the queue already exists the returned channel is already closed.
func (a *directory) waitForCreation(name QueueName) (<-chan struct{}, func()) {
	a.mutex.Lock()
	if _, exists := a.queues[name]; exists {
		a.mutex.Unlock()
		ch := make(chan struct{})
		close(ch)
		return ch, func() {}
	}

	handle := uid.NextUID()
	ch := make(chan struct{})
	waiters := a.creations[name]
	if waiters == nil {
		waiters = make(map[uid.UID]chan struct{})
		a.creations[name] = waiters
	}
	waiters[handle] = ch
	a.mutex.Unlock()

	cancel := func() {
		a.mutex.Lock()
		defer a.mutex.Unlock()
		waiters := a.creations[name]
		if waiters == nil {
			return
		}
		if pending, registered := waiters[handle]; registered {
			delete(waiters, handle)
			close(pending)
		}
		if len(waiters) == 0 {
			delete(a.creations, name)
		}
	}
	return ch, cancel
}

// pendingCreationWaiters returns the number of registered creation waiters for the name
func (a *directory) pendingCreationWaiters(name QueueName) int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return len(a.creations[name])
}
