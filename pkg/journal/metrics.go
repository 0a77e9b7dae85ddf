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
	"github.com/Zhengchai/message-switch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsNamespace is used as the metric namespace for all message switch metrics
	MetricsNamespace = "mswitch"
	// MetricsSubSystem is used as the metric subsystem for journal metrics
	MetricsSubSystem = "journal"
)

var (
	// AppendCounterOpts tracks the number of records appended to the ring
	AppendCounterOpts = &prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubSystem,
		Name:      "appends_total",
		Help:      "The number of records appended to the journal",
	}
	appendCounter = metrics.GetOrMustRegisterCounter(AppendCounterOpts)

	// AppendFailureCounterOpts tracks the number of failed ring appends
	AppendFailureCounterOpts = &prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubSystem,
		Name:      "append_failures_total",
		Help:      "The number of journal appends that failed",
	}
	appendFailureCounter = metrics.GetOrMustRegisterCounter(AppendFailureCounterOpts)

	// ReplayedCounterOpts tracks the number of records replayed at startup
	ReplayedCounterOpts = &prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubSystem,
		Name:      "replayed_total",
		Help:      "The number of records replayed during recovery",
	}
	replayedCounter = metrics.GetOrMustRegisterCounter(ReplayedCounterOpts)
)
