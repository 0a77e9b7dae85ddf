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

import "fmt"

// validate checks the recovered state against the broker's structural invariants :
//
//  1. every stored id is less than the queue's next id
//  2. the tracked length equals the number of stored entries
//  3. the owner reverse index agrees with each queue's owner in both directions
//  4. ids are strictly increasing in insertion order
//
// A violation is fatal - the caller aborts startup.
func (a *Queues) validate() error {
	a.dir.mutex.RLock()
	defer a.dir.mutex.RUnlock()

	for name, q := range a.dir.queues {
		q.waiter.Lock()
		err := validateQueue(q)
		q.waiter.Unlock()
		if err != nil {
			return err
		}

		if q.owner != NoConnection {
			owned := a.dir.byOwner[q.owner]
			if owned == nil || !owned.Contains(string(name)) {
				return errOwnerIndexInconsistent(fmt.Sprintf("queue %q is owned by %q but is not indexed", name, q.owner))
			}
		}
	}

	for owner, owned := range a.dir.byOwner {
		if owned.Empty() {
			return errOwnerIndexInconsistent(fmt.Sprintf("owner %q has an empty queue set", owner))
		}
		for _, name := range owned.Values() {
			q, exists := a.dir.queues[QueueName(name)]
			if !exists {
				return errOwnerIndexInconsistent(fmt.Sprintf("owner %q is indexed for missing queue %q", owner, name))
			}
			if q.owner != owner {
				return errOwnerIndexInconsistent(fmt.Sprintf("queue %q is indexed for %q but owned by %q", name, owner, q.owner))
			}
		}
	}

	return nil
}

func validateQueue(q *queue) error {
	if len(q.ids) != len(q.entries) {
		return errInvariantViolated(q.name, fmt.Sprintf("length mismatch : %d ids vs %d entries", len(q.ids), len(q.entries)))
	}
	prev := int64(-1)
	for i, id := range q.ids {
		if i > 0 && id <= prev {
			return errInvariantViolated(q.name, fmt.Sprintf("ids are not strictly increasing : %d after %d", id, prev))
		}
		prev = id
		if id >= q.waiter.nextID {
			return errInvariantViolated(q.name, fmt.Sprintf("id %d is not below next id %d", id, q.waiter.nextID))
		}
		if _, exists := q.entries[id]; !exists {
			return errInvariantViolated(q.name, fmt.Sprintf("id %d has no entry", id))
		}
	}
	return nil
}
