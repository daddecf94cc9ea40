// Copyright 2025 torrentctl
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcome labels. Each call resolves to exactly one of these.
const (
	outcomeSuccess        = "success"
	outcomeTransportError = "transport_error"
	outcomeAuthError      = "auth_error"
	outcomeSessionError   = "session_error"
	outcomeDecodeError    = "decode_error"
	outcomeProtocolError  = "protocol_error"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "transmission",
		Name:      "rpc_requests_total",
		Help:      "Total RPC calls by method and outcome.",
	}, []string{"method", "outcome"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "transmission",
		Name:      "rpc_request_duration_seconds",
		Help:      "RPC call duration in seconds, including the token retry round trip.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method"})

	sessionRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "transmission",
		Name:      "rpc_session_retries_total",
		Help:      "Total 409 session-token refresh retries.",
	})
)

// MustRegister registers the client's collectors with r. Callers that do
// not export metrics can skip this; the collectors still count, they are
// just never scraped.
func MustRegister(r prometheus.Registerer) {
	r.MustRegister(requestsTotal, requestDuration, sessionRetries)
}

func observeOutcome(method, outcome string) {
	requestsTotal.WithLabelValues(method, outcome).Inc()
}

func observeDuration(method string, d time.Duration) {
	requestDuration.WithLabelValues(method).Observe(d.Seconds())
}
