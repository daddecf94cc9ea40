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

import "fmt"

// Every call resolves to exactly one outcome: a typed success or one of
// the error types below. The dispatcher never retries beyond the single
// 409 token recovery; bounded retry loops, if any, belong to callers.

// TransportError reports that no response reached the client: connection
// refused, DNS failure, TLS handshake failure, or a cancelled context.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports an HTTP 401 from the daemon. Authentication failures
// are terminal; they never trigger a session-token retry.
type AuthError struct {
	Username string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("rpc: authentication rejected for user %q", e.Username)
}

// SessionError reports that the daemon rejected the session token again
// after the one-shot refresh, so the handshake cannot converge.
type SessionError struct {
	Token string
}

func (e *SessionError) Error() string {
	return "rpc: session token rejected after refresh"
}

// DecodeError reports a 200 response whose body did not match the
// expected JSON shape. Body carries the raw response for diagnosis.
type DecodeError struct {
	Body []byte
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rpc: cannot decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ProtocolError reports any other HTTP status. The daemon frequently
// answers such requests with plain text, so the body is surfaced
// verbatim as the message.
type ProtocolError struct {
	Status int
	Body   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("rpc: unexpected status %d: %s", e.Status, e.Body)
}
