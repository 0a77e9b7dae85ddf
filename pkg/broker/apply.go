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

import "github.com/Zhengchai/message-switch/pkg/logging"

// apply is the journal reducer - the only code path that mutates the in-memory
// state. The journal invokes it from a single goroutine, one record at a time,
// both during recovery replay and for live appends.
//
// A record that fails to decode is dropped and logged - replay proceeds. The
// system favors availability over refusing to start after mild corruption.
func (a *Queues) apply(record []byte) {
	op, err := DecodeOp(record)
	if err != nil {
		droppedRecordCounter.Inc()
		LOG_EVENT_RECORD_DROPPED.Log(logger.Warn()).Err(err).Msg("")
		return
	}

	switch op.Kind {
	case OpAdd:
		a.applyAdd(op)
	case OpRemove:
		a.applyRemove(op)
	case OpAck:
		a.applyAck(op)
	case OpSend:
		a.applySend(op)
	}
}

func (a *Queues) applyAdd(op *Op) {
	if q := a.dir.add(op.Owner, op.Name); q != nil {
		queueLengthGauge.WithLabelValues(string(op.Name)).Set(0)
	}
}

func (a *Queues) applyRemove(op *Op) {
	a.dir.remove(op.Name)
	queueLengthGauge.DeleteLabelValues(string(op.Name))
}

func (a *Queues) applyAck(op *Op) {
	q, exists := a.dir.get(op.ID.Name)
	if !exists {
		return
	}
	q.waiter.Lock()
	q.removeID(op.ID.ID)
	n := q.length()
	q.waiter.Unlock()
	queueLengthGauge.WithLabelValues(string(op.ID.Name)).Set(float64(n))
}

func (a *Queues) applySend(op *Op) {
	q, exists := a.dir.get(op.Name)
	if !exists {
		// the queue vanished between the journal append and now, or the journal
		// carries a send for a queue removed later in a prior run
		LOG_EVENT_SEND_DROPPED.Log(logger.Debug()).Str(logging.QUEUE, string(op.Name)).Msg("")
		return
	}
	q.waiter.Lock()
	q.insert(op.SendID, newEntry(op.Origin, op.Message))
	n := q.length()
	q.waiter.Unlock()
	queueLengthGauge.WithLabelValues(string(op.Name)).Set(float64(n))
}
