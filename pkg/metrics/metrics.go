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

// Package metrics provides prometheus metrics support with a caching registration layer.
// Metrics are registered against a package level Registry. The GetOrMustRegisterXXX functions
// make registration idempotent for metrics registered with the same opts - registering the
// same name with different opts or a different metric type triggers a panic.
package metrics

import (
	"github.com/Zhengchai/message-switch/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
)

type pkgobject struct{}

var logger = logging.NewPackageLogger(pkgobject{})

// MetricType identifies the type of metric
type MetricType int

// MetricType enum values
const (
	UNKNOWN MetricType = iota

	COUNTER
	GAUGE

	COUNTERVEC
	GAUGEVEC
)

// Value returns the enum int value
func (a MetricType) Value() int {
	return int(a)
}

func (a MetricType) String() string {
	switch a {
	case COUNTER:
		return "Counter"
	case GAUGE:
		return "Gauge"
	case COUNTERVEC:
		return "CounterVec"
	case GAUGEVEC:
		return "GaugeVec"
	default:
		return "UNKNOWN"
	}
}

// Counter pairs the registered counter with the opts it was registered with
type Counter struct {
	prometheus.Counter
	*prometheus.CounterOpts
}

// CounterVec pairs the registered counter vector with the opts it was registered with
type CounterVec struct {
	*prometheus.CounterVec
	*CounterVecOpts
}

// Gauge pairs the registered gauge with the opts it was registered with
type Gauge struct {
	prometheus.Gauge
	*prometheus.GaugeOpts
}

// GaugeVec pairs the registered gauge vector with the opts it was registered with
type GaugeVec struct {
	*prometheus.GaugeVec
	*GaugeVecOpts
}

// CounterVecOpts are the opts for a counter vector, i.e., counter opts plus the variable label names
type CounterVecOpts struct {
	*prometheus.CounterOpts
	Labels []string
}

// GaugeVecOpts are the opts for a gauge vector, i.e., gauge opts plus the variable label names
type GaugeVecOpts struct {
	*prometheus.GaugeOpts
	Labels []string
}
