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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// Session holds the endpoint, credentials and token slot. Required.
	Session *Session

	// HTTPClient performs the actual requests. Defaults to a plain
	// http.Client with transport defaults; no additional timeout layer
	// is imposed here.
	HTTPClient *http.Client

	// Logger receives debug-level dispatch and retry logs. Defaults to
	// a logger that discards everything.
	Logger *logrus.Logger

	// Limiter optionally throttles outgoing requests. Nil means no
	// client-side limit.
	Limiter *rate.Limiter

	// MaxResponseSize bounds how much of a response body is read.
	// Default: 32MB, enough for torrent-get over large sessions.
	MaxResponseSize int64
}

// Client dispatches authenticated requests against one daemon, handling
// the session-token handshake transparently. A Client is safe for
// concurrent use; calls are independent and the shared token slot is
// self-healing per call.
type Client struct {
	session *Session
	http    *http.Client
	log     *logrus.Logger
	limiter *rate.Limiter
	maxBody int64
}

// NewClient creates a client bound to the given session.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Session == nil {
		return nil, fmt.Errorf("rpc: Session is required")
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
		config.Logger.SetOutput(io.Discard)
	}
	if config.MaxResponseSize == 0 {
		config.MaxResponseSize = 32 << 20
	}
	return &Client{
		session: config.Session,
		http:    config.HTTPClient,
		log:     config.Logger,
		limiter: config.Limiter,
		maxBody: config.MaxResponseSize,
	}, nil
}

// Session returns the connection state the client operates on.
func (c *Client) Session() *Session { return c.session }

// Call invokes an RPC method and decodes the response arguments into
// result. result must be a pointer; pass nil to discard the arguments.
func (c *Client) Call(ctx context.Context, method string, args, result interface{}) error {
	body, err := c.dispatch(ctx, method, args)
	if err != nil {
		return err
	}
	if result == nil {
		observeOutcome(method, outcomeSuccess)
		return nil
	}
	var envelope responseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		observeOutcome(method, outcomeDecodeError)
		return &DecodeError{Body: body, Err: err}
	}
	if len(envelope.Arguments) > 0 {
		if err := json.Unmarshal(envelope.Arguments, result); err != nil {
			observeOutcome(method, outcomeDecodeError)
			return &DecodeError{Body: body, Err: err}
		}
	}
	observeOutcome(method, outcomeSuccess)
	return nil
}

// Exec invokes an RPC method whose response body carries nothing the
// caller needs: only the success/failure classification is reported.
// Used for fire-and-forget mutations like start, stop and remove.
func (c *Client) Exec(ctx context.Context, method string, args interface{}) error {
	if _, err := c.dispatch(ctx, method, args); err != nil {
		return err
	}
	observeOutcome(method, outcomeSuccess)
	return nil
}

// dispatch runs one call through its full lifecycle: build the request,
// execute it, recover once from a stale session token, and classify the
// status. It returns the raw 200 body.
//
// The call moves through the states initial -> awaiting response ->
// (retrying with token -> awaiting response) -> resolved; the 409
// recovery happens at most once, bounding every call to two round trips.
func (c *Client) dispatch(ctx context.Context, method string, args interface{}) ([]byte, error) {
	payload, err := json.Marshal(requestEnvelope{Method: method, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("rpc: cannot encode %s arguments: %w", method, err)
	}

	// One duration observation per call, on every resolution path,
	// mirroring the one-outcome guarantee of the counters.
	start := time.Now()
	defer func() { observeDuration(method, time.Since(start)) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			observeOutcome(method, outcomeTransportError)
			return nil, &TransportError{Err: err}
		}
	}

	resp, err := c.send(ctx, payload, c.session.Token())
	if err != nil {
		observeOutcome(method, outcomeTransportError)
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode == http.StatusConflict {
		resp, err = c.retryWithFreshToken(ctx, method, payload, resp)
		if err != nil {
			return nil, err
		}
	}

	body, err := c.classify(method, resp)
	c.log.WithFields(logrus.Fields{
		"method":   method,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("rpc call resolved")
	return body, err
}

// retryWithFreshToken handles the 409 challenge: extract the token the
// daemon issued in the response headers, store it, and resubmit the
// identical request exactly once. A second 409 is terminal.
func (c *Client) retryWithFreshToken(ctx context.Context, method string, payload []byte, conflict *http.Response) (*http.Response, error) {
	token := sessionTokenFrom(conflict)
	drain(conflict)
	if token == "" {
		observeOutcome(method, outcomeSessionError)
		return nil, &SessionError{}
	}
	c.session.SetToken(token)
	sessionRetries.Inc()
	c.log.WithField("method", method).Debug("session token refreshed, retrying")

	resp, err := c.send(ctx, payload, token)
	if err != nil {
		observeOutcome(method, outcomeTransportError)
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode == http.StatusConflict {
		drain(resp)
		observeOutcome(method, outcomeSessionError)
		return nil, &SessionError{Token: token}
	}
	return resp, nil
}

// send performs one HTTP round trip with the fixed protocol headers.
func (c *Client) send(ctx context.Context, payload []byte, token string) (*http.Response, error) {
	endpoint := c.session.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	creds := c.session.Credentials()
	req.SetBasicAuth(creds.Username, creds.Password)
	if token != "" {
		setSessionToken(req, endpoint.Scheme, token)
	}
	return c.http.Do(req)
}

// classify maps the final HTTP status to the call outcome and returns
// the raw body of a 200 response.
func (c *Client) classify(method string, resp *http.Response) ([]byte, error) {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if readErr != nil {
			observeOutcome(method, outcomeTransportError)
			return nil, &TransportError{Err: readErr}
		}
		return body, nil
	case http.StatusUnauthorized:
		observeOutcome(method, outcomeAuthError)
		return nil, &AuthError{Username: c.session.Credentials().Username}
	default:
		// The daemon often answers these with plain text, not JSON;
		// surface the body verbatim.
		observeOutcome(method, outcomeProtocolError)
		return nil, &ProtocolError{Status: resp.StatusCode, Body: string(body)}
	}
}

// setSessionToken attaches the token under the scheme-appropriate header
// name. The plain-HTTP form is lower-case and must bypass the
// canonicalization http.Header.Set would apply.
func setSessionToken(req *http.Request, scheme, token string) {
	name := SessionHeaderName(scheme)
	if name == sessionHeaderPlain {
		req.Header[sessionHeaderPlain] = []string{token}
		return
	}
	req.Header.Set(name, token)
}

// sessionTokenFrom extracts the daemon-issued token from a 409 response.
// Header.Get matches case-insensitively, so one lookup covers both
// observed spellings.
func sessionTokenFrom(resp *http.Response) string {
	return resp.Header.Get(sessionHeaderTLS)
}

// drain discards and closes a response body that will not be used, so
// the underlying connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
