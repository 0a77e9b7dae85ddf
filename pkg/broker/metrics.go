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
	"github.com/Zhengchai/message-switch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsNamespace is used as the metric namespace for all message switch metrics
	MetricsNamespace = "mswitch"
	// MetricsSubSystem is used as the metric subsystem for broker metrics
	MetricsSubSystem = "queues"

	// MetricLabelQueue is the variable label naming the queue
	MetricLabelQueue = "queue"
)

var (
	// QueueLengthGaugeOpts tracks the current length of each queue
	QueueLengthGaugeOpts = &metrics.GaugeVecOpts{
		GaugeOpts: &prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Subsystem: MetricsSubSystem,
			Name:      "length",
			Help:      "The current number of entries in the queue",
		},
		Labels: []string{MetricLabelQueue},
	}
	queueLengthGauge = metrics.GetOrMustRegisterGaugeVec(QueueLengthGaugeOpts)

	// DroppedRecordCounterOpts tracks journal records dropped because they failed to decode
	DroppedRecordCounterOpts = &prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: "journal",
		Name:      "dropped_records_total",
		Help:      "The number of journal records dropped because they could not be decoded",
	}
	droppedRecordCounter = metrics.GetOrMustRegisterCounter(DroppedRecordCounterOpts)
)

// QueueLength pairs a queue name with its current length
type QueueLength struct {
	Name   QueueName
	Length int
}

// Lengths enumerates all queue names with their current lengths - a read-only
// snapshot, sorted by name.
func (a *Queues) Lengths() []QueueLength {
	names := a.dir.list("")
	lengths := make([]QueueLength, 0, len(names))
	for _, name := range names {
		q, exists := a.dir.get(name)
		if !exists {
			continue
		}
		q.waiter.Lock()
		n := q.length()
		q.waiter.Unlock()
		lengths = append(lengths, QueueLength{Name: name, Length: n})
	}
	return lengths
}

// Measure returns the current length of a single queue.
// false is returned if the queue does not exist.
func (a *Queues) Measure(name QueueName) (int, bool) {
	q, exists := a.dir.get(name)
	if !exists {
		return 0, false
	}
	q.waiter.Lock()
	defer q.waiter.Unlock()
	return q.length(), true
}
