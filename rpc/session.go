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
	"fmt"
	"sync"
)

// Session token header names by scheme. The daemon documents the header
// as x-transmission-session-id, but TLS connections have been observed to
// require the canonically cased form. This may be a workaround for a
// specific daemon version; the behavior is preserved as observed rather
// than assumed intentional.
const (
	sessionHeaderPlain = "x-transmission-session-id"
	sessionHeaderTLS   = "X-Transmission-Session-Id"
)

// SessionHeaderName returns the session token header name to send for
// the given URL scheme.
func SessionHeaderName(scheme string) string {
	if scheme == "https" {
		return sessionHeaderTLS
	}
	return sessionHeaderPlain
}

// Endpoint identifies one daemon. Endpoints are immutable values; a
// server switch replaces the whole Session rather than mutating one.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
}

// URL returns the fixed RPC entry point for the endpoint.
func (e Endpoint) URL() string {
	return fmt.Sprintf("%s://%s:%d/transmission/rpc", e.Scheme, e.Host, e.Port)
}

// Credentials authenticate against one Endpoint for the lifetime of its
// connection.
type Credentials struct {
	Username string
	Password string
}

// Session holds the mutable connection state for one daemon: the
// endpoint, its credentials and the last session token the daemon
// issued. Each Session is owned by its caller and passed by reference;
// two sessions against different daemons never interfere.
//
// The token slot is guarded by a mutex so that concurrent calls read and
// write it atomically. Calls are otherwise not serialized: a call that
// reads a token made stale by a concurrent refresh simply pays one extra
// round trip through its own 409 recovery.
type Session struct {
	endpoint Endpoint
	creds    Credentials

	mu    sync.RWMutex
	token string
}

// NewSession creates the connection state for one daemon. The session
// starts with no token; the first request earns one through the 409
// handshake.
func NewSession(endpoint Endpoint, creds Credentials) *Session {
	return &Session{endpoint: endpoint, creds: creds}
}

// Endpoint returns the daemon this session talks to.
func (s *Session) Endpoint() Endpoint { return s.endpoint }

// Credentials returns the credentials paired with the endpoint.
func (s *Session) Credentials() Credentials { return s.creds }

// Token returns the cached session token, or "" before the first 409
// handshake has completed.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the token issued by the daemon, overwriting any
// previous one.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}
