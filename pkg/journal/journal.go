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

package journal

import (
	"sync"

	"github.com/Zhengchai/message-switch/pkg/logging"
	"gopkg.in/tomb.v2"
)

type pkgobject struct{}

var logger = logging.NewPackageLogger(pkgobject{})

// log events
const (
	LOG_EVENT_REPLAY_STARTED  logging.Event = "REPLAY_STARTED"
	LOG_EVENT_REPLAY_COMPLETE logging.Event = "REPLAY_COMPLETE"
	LOG_EVENT_DYING           logging.Event = "DYING"
)

// Apply is the reducer function that folds a journalled record into the in-memory state.
// It is invoked from a single goroutine - one record at a time, in append order.
type Apply func(record []byte)

// Journal is a redo log over a Ring.
//
// All appends are funneled through a single tomb-managed consumer goroutine.
// An append resolves only after the record is durable in the ring and has been
// applied, and the N-th append completes only after all prior appends completed.
type Journal struct {
	tomb.Tomb

	ring Ring

	mutex   sync.Mutex
	started bool
	pending []*appendRequest
	signal  chan struct{}
}

type appendRequest struct {
	record []byte
	done   chan error
}

// NewJournal creates a Journal over the ring. Start must be called before appending.
func NewJournal(ring Ring) *Journal {
	return &Journal{
		ring:   ring,
		signal: make(chan struct{}, 1),
	}
}

// Ring returns the underlying ring
func (a *Journal) Ring() Ring {
	return a.ring
}

// Start replays every record stored in the ring through apply, then starts the
// append consumer. The replay count is returned. No append is applied until
// replay has completed - appends submitted while the replay runs are queued.
func (a *Journal) Start(apply Apply) (int, error) {
	a.mutex.Lock()
	if a.started {
		a.mutex.Unlock()
		return 0, ErrJournalAlreadyStarted
	}
	a.started = true
	a.mutex.Unlock()

	LOG_EVENT_REPLAY_STARTED.Log(logger.Info()).Msg("")
	replayed := 0
	err := a.ring.Replay(func(record []byte) error {
		apply(record)
		replayed++
		return nil
	})
	if err != nil {
		return replayed, err
	}
	replayedCounter.Add(float64(replayed))
	LOG_EVENT_REPLAY_COMPLETE.Log(logger.Info()).Int("records", replayed).Msg("")

	a.Go(func() error {
		return a.run(apply)
	})
	return replayed, nil
}

// Append submits the record to the journal. The returned channel resolves with nil
// once the record is durable and applied, or with an error if the ring write failed
// or the journal was closed first.
//
// Submission order is the order Append is invoked in - callers that must correlate
// some external allocation with the journal order hold their own lock around Append.
func (a *Journal) Append(record []byte) <-chan error {
	done := make(chan error, 1)

	a.mutex.Lock()
	if !a.started {
		a.mutex.Unlock()
		done <- ErrJournalNotStarted
		return done
	}
	if !a.Alive() {
		a.mutex.Unlock()
		done <- ErrJournalClosed
		return done
	}
	a.pending = append(a.pending, &appendRequest{record: record, done: done})
	a.mutex.Unlock()

	select {
	case a.signal <- struct{}{}:
	default:
	}
	return done
}

// Close shuts the journal down. Pending appends fail with ErrJournalClosed.
// The ring is not closed - the owner of the ring closes it.
func (a *Journal) Close() error {
	a.mutex.Lock()
	if !a.started {
		a.started = true
		// nothing was ever started - spawn a goroutine for Wait to collect
		a.Go(func() error { return nil })
	}
	a.mutex.Unlock()
	a.Kill(nil)
	return a.Wait()
}

func (a *Journal) run(apply Apply) error {
	for {
		select {
		case <-a.Dying():
			LOG_EVENT_DYING.Log(logger.Info()).Msg("")
			a.failPending(ErrJournalClosed)
			return nil
		case <-a.signal:
			for _, req := range a.take() {
				if err := a.ring.Append(req.record); err != nil {
					appendFailureCounter.Inc()
					logger.Error().Err(err).Msg("ring append failed")
					req.done <- err
					continue
				}
				appendCounter.Inc()
				apply(req.record)
				req.done <- nil
			}
		}
	}
}

func (a *Journal) take() []*appendRequest {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	batch := a.pending
	a.pending = nil
	return batch
}

func (a *Journal) failPending(err error) {
	for _, req := range a.take() {
		req.done <- err
	}
}
