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

package dyncast

import (
	"sync/atomic"

	"go.uber.org/zap"

	"dirpx.dev/dyncast/metric"
)

var (
	logger  atomic.Pointer[zap.Logger]
	metrics atomic.Pointer[metric.Metrics]

	nop = zap.NewNop()
)

// Logger returns the package logger. It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nop
}

// SetLogger configures the package logger. A nil logger restores the
// no-op default.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// Metrics returns the installed metrics, or nil.
func Metrics() *metric.Metrics {
	return metrics.Load()
}

// SetMetrics installs m. Pass nil to stop recording.
func SetMetrics(m *metric.Metrics) {
	metrics.Store(m)
}
