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
	"github.com/Zhengchai/message-switch/pkg/journal"
	"github.com/Zhengchai/message-switch/pkg/logging"
)

// Queues is the message switch facade. Every mutation follows the same three-step
// pattern : build Op -> append to the journal -> return once applied. There is no
// short-cut path that mutates the in-memory state directly, so the memory image
// always matches the journal prefix that has been applied.
type Queues struct {
	dir     *directory
	journal *journal.Journal
	ring    journal.Ring

	ownsRing bool
}

// Open opens the message switch over the journal ring stored at filePath,
// creating the file if needed. capacity bounds the number of journalled records.
//
// All pending journal records are replayed into memory before Open returns, and
// the recovered state is checked against the broker's structural invariants - a
// violation is fatal and fails Open.
func Open(filePath string, capacity int) (*Queues, error) {
	ring, err := journal.OpenRing(filePath, capacity)
	if err != nil {
		return nil, err
	}
	a, err := New(ring)
	if err != nil {
		ring.Close()
		return nil, err
	}
	a.ownsRing = true
	return a, nil
}

// New builds the message switch over an already opened ring. The caller retains
// ownership of the ring and closes it after closing the switch.
func New(ring journal.Ring) (*Queues, error) {
	a := &Queues{
		dir:     newDirectory(),
		journal: journal.NewJournal(ring),
		ring:    ring,
	}
	replayed, err := a.journal.Start(a.apply)
	if err != nil {
		a.journal.Close()
		return nil, err
	}
	if err := a.validate(); err != nil {
		a.journal.Close()
		return nil, err
	}
	LOG_EVENT_STARTED.Log(logger.Info()).
		Str(logging.NAME, ServiceDescriptor.Name).
		Str("version", ServiceDescriptor.Version.String()).
		Int("replayed", replayed).
		Msg("")
	return a, nil
}

// Close shuts down the journal. If the switch owns the ring (see Open), the ring
// is closed as well.
func (a *Queues) Close() error {
	err := a.journal.Close()
	if a.ownsRing {
		if closeErr := a.ring.Close(); err == nil {
			err = closeErr
		}
	}
	LOG_EVENT_STOPPED.Log(logger.Info()).Msg("")
	return err
}

// Add creates the named queue. owner = NoConnection creates a persistent queue,
// otherwise the queue is transient to the owning connection. Idempotent - adding
// an existing name changes nothing.
func (a *Queues) Add(owner ConnectionID, name QueueName) error {
	if err := name.Validate(); err != nil {
		return err
	}
	return <-a.journal.Append(AddOp(owner, name).Encode())
}

// Remove destroys the named queue. Idempotent - removing a missing name is a no-op.
func (a *Queues) Remove(name QueueName) error {
	if err := name.Validate(); err != nil {
		return err
	}
	return <-a.journal.Append(RemoveOp(name).Encode())
}

// Send appends the message to the named queue and returns the allocated message id.
//
// If the queue does not exist the message is dropped and (nil, nil) is returned -
// producers do not create queues by writing to them.
//
// The id is allocated before the journal append to keep ids dense and monotonic;
// the journal submission happens under the same per-queue lock so the journal
// order matches the allocation order. If the append fails the id is skipped -
// consumers treat ids as opaque cursors, so gaps are tolerable.
func (a *Queues) Send(origin ConnectionID, name QueueName, message *Message) (*MessageID, error) {
	q, exists := a.dir.get(name)
	if !exists {
		LOG_EVENT_SEND_DROPPED.Log(logger.Debug()).Str(logging.QUEUE, string(name)).Msg("")
		return nil, nil
	}

	q.waiter.Lock()
	id := q.waiter.nextID
	q.waiter.nextID++
	done := a.journal.Append(SendOp(origin, name, id, message).Encode())
	q.waiter.Unlock()

	if err := <-done; err != nil {
		return nil, err
	}
	return &MessageID{Name: name, ID: id}, nil
}

// Ack removes the identified message from its queue. Idempotent - acking an
// unknown id is a no-op, so at-least-once ack paths are safe.
func (a *Queues) Ack(id MessageID) error {
	return <-a.journal.Append(AckOp(id).Encode())
}

// Transfer returns, for each requested queue, the messages with ids strictly
// greater than from. Per-queue order is preserved; order across queues follows
// the order of names. Pure read - nothing is journalled and nothing is removed.
func (a *Queues) Transfer(from int64, names []QueueName) []TransferItem {
	var items []TransferItem
	for _, name := range names {
		items = append(items, a.dir.find(name).after(from)...)
	}
	return items
}

// Entry looks up a single stored entry. nil is returned if the queue or id is unknown.
func (a *Queues) Entry(id MessageID) *Entry {
	return a.dir.find(id.Name).entry(id.ID)
}

// Contents returns a snapshot of the named queue's entries in insertion order
func (a *Queues) Contents(name QueueName) []QueueEntry {
	return a.dir.find(name).contents()
}

// QueueInfo is a read-only snapshot of a queue
type QueueInfo struct {
	Name   QueueName
	Owner  ConnectionID
	Length int
}

// Find returns a snapshot of the named queue. A missing name yields an ephemeral
// empty snapshot with the requested name, so read paths can proceed without
// existence checks - nothing is created.
func (a *Queues) Find(name QueueName) QueueInfo {
	q := a.dir.find(name)
	q.waiter.Lock()
	defer q.waiter.Unlock()
	return QueueInfo{Name: q.name, Owner: q.owner, Length: q.length()}
}

// List returns all queue names that begin with prefix, sorted
func (a *Queues) List(prefix string) []QueueName {
	return a.dir.list(prefix)
}

// OwnedQueues returns the names of all transient queues owned by the connection
func (a *Queues) OwnedQueues(owner ConnectionID) []QueueName {
	return a.dir.ownedQueues(owner)
}

// ReapOwner removes every queue owned by the connection - invoked by the transport
// when it learns the connection is gone. Each removal is journalled individually;
// partial progress is safe because removes are idempotent. All removals are
// attempted; the first error is returned.
func (a *Queues) ReapOwner(owner ConnectionID) error {
	var firstErr error
	for _, name := range a.dir.ownedQueues(owner) {
		if err := a.Remove(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		LOG_EVENT_OWNER_REAPED.Log(logger.Info()).Str(logging.OWNER, string(owner)).Msg("")
	}
	return firstErr
}
