/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package metric exposes Prometheus counters for casts, registrations and
// shape lookups. A nil *Metrics is valid and records nothing.
package metric

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dyncast"

// Result label values.
const (
	ResultOK             = "ok"
	ResultIdentity       = "identity"
	ResultNotImplemented = "not_implemented"
	ResultUnknown        = "unknown"
	ResultUnknownIface   = "unknown_interface"
	ResultIndeterminate  = "indeterminate"
	ResultMismatch       = "mismatch"
	ResultConflict       = "conflict"
	ResultInvalid        = "invalid"
	ResultHit            = "hit"
	ResultMiss           = "miss"
)

// Metrics holds the dyncast collectors.
type Metrics struct {
	CastsTotal         *prometheus.CounterVec // By result
	RegistrationsTotal *prometheus.CounterVec // By result
	LookupsTotal       *prometheus.CounterVec // By result (hit/miss)
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		CastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "casts_total",
			Help:      "Total number of dynamic casts by outcome",
		}, []string{"result"}),

		RegistrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of shape registrations by outcome",
		}, []string{"result"}),

		LookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Total number of shape lookups by outcome",
		}, []string{"result"}),
	}
}

// Collectors returns every collector held by m.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{m.CastsTotal, m.RegistrationsTotal, m.LookupsTotal}
}

// Register registers the collectors of m with r and returns the Metrics to
// record into. Where r already holds an equal collector the existing one is
// used, so several Metrics values can share r. m itself is not modified and
// may already be installed.
func (m *Metrics) Register(r prometheus.Registerer) (*Metrics, error) {
	if m == nil || r == nil {
		return m, nil
	}
	cs := m.Collectors()
	vecs := make([]*prometheus.CounterVec, len(cs))
	for i, c := range cs {
		vecs[i] = c.(*prometheus.CounterVec)
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			vecs[i] = existing
		}
	}
	return &Metrics{
		CastsTotal:         vecs[0],
		RegistrationsTotal: vecs[1],
		LookupsTotal:       vecs[2],
	}, nil
}

// ObserveCast counts one cast with the given result.
func (m *Metrics) ObserveCast(result string) {
	if m == nil {
		return
	}
	m.CastsTotal.WithLabelValues(result).Inc()
}

// ObserveRegistration counts one registration with the given result.
func (m *Metrics) ObserveRegistration(result string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

// ObserveLookup counts one shape lookup.
func (m *Metrics) ObserveLookup(hit bool) {
	if m == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.LookupsTotal.WithLabelValues(result).Inc()
}
