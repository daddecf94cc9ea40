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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// newTestClient builds a client pointed at a test server.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("failed to parse test server port: %v", err)
	}

	session := NewSession(
		Endpoint{Scheme: u.Scheme, Host: u.Hostname(), Port: port},
		Credentials{Username: "admin", Password: "secret"},
	)
	client, err := NewClient(ClientConfig{Session: session})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

// tokenDaemon emulates the daemon's 409 handshake: requests without the
// expected token are rejected with the fresh token in the headers.
func tokenDaemon(t *testing.T, token string, calls *int64, handler http.HandlerFunc) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		if r.Header.Get("X-Transmission-Session-Id") != token {
			w.Header().Set("X-Transmission-Session-Id", token)
			w.WriteHeader(http.StatusConflict)
			return
		}
		handler(w, r)
	}
}

func TestClient_SessionHandshake(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(tokenDaemon(t, "abc123", &calls, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"arguments":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if err := client.Exec(context.Background(), "torrent-stop", nil); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}

	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Errorf("expected 2 requests (409 then retry), got %d", got)
	}
	if got := client.Session().Token(); got != "abc123" {
		t.Errorf("expected cached token %q, got %q", "abc123", got)
	}
}

func TestClient_TokenReusedAcrossCalls(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(tokenDaemon(t, "abc123", &calls, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"arguments":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := client.Exec(ctx, "torrent-verify", nil); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}

	// One 409 on the first call, then the cached token satisfies the
	// remaining calls directly.
	if got := atomic.LoadInt64(&calls); got != 4 {
		t.Errorf("expected 4 requests, got %d", got)
	}
}

func TestClient_SessionErrorAfterSecondConflict(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Header().Set("X-Transmission-Session-Id", "rotating")
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	err := client.Exec(context.Background(), "torrent-start", nil)

	var sessionErr *SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("expected *SessionError, got %v", err)
	}
	if got := atomic.LoadInt64(&calls); got != 2 {
		t.Errorf("expected exactly 2 requests, never a third, got %d", got)
	}
}

func TestClient_ConflictWithoutTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	err := client.Exec(context.Background(), "torrent-start", nil)

	var sessionErr *SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("expected *SessionError when 409 carries no token, got %v", err)
	}
}

func TestClient_RetryCarriesIssuedToken(t *testing.T) {
	var retryToken string
	first := true
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if first {
			first = false
			w.Header().Set("X-Transmission-Session-Id", "abc123")
			w.WriteHeader(http.StatusConflict)
			return
		}
		retryToken = r.Header.Get("X-Transmission-Session-Id")
		w.Write([]byte(`{"arguments":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if err := client.Exec(context.Background(), "torrent-stop", nil); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if retryToken != "abc123" {
		t.Errorf("retried request carried token %q, want %q", retryToken, "abc123")
	}
}

func TestClient_AuthErrorNeverRetries(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	err := client.Exec(context.Background(), "session-set", nil)

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
	if authErr.Username != "admin" {
		t.Errorf("expected username in AuthError, got %q", authErr.Username)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("401 must not trigger a retry, got %d requests", got)
	}
}

func TestClient_DecodeErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not json`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	var result SessionGetResponse
	err := client.Call(context.Background(), "session-get", nil, &result)

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if string(decodeErr.Body) != "this is not json" {
		t.Errorf("DecodeError should carry the raw body, got %q", decodeErr.Body)
	}
}

func TestClient_ProtocolErrorSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("daemon is shutting down"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	err := client.Exec(context.Background(), "torrent-get", nil)

	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected *ProtocolError, got %v", err)
	}
	if protoErr.Status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", protoErr.Status)
	}
	if protoErr.Body != "daemon is shutting down" {
		t.Errorf("expected verbatim plain-text body, got %q", protoErr.Body)
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	client := newTestClient(t, srv)
	err := client.Exec(context.Background(), "torrent-get", nil)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
}

func TestClient_RequestShape(t *testing.T) {
	var (
		gotMethod      string
		gotPath        string
		gotContentType string
		gotUser        string
		gotPass        string
		gotBody        requestEnvelope
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUser, gotPass, _ = r.BasicAuth()
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"arguments":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	req := TorrentGetRequest{Fields: []string{"id", "name"}}
	if _, err := client.TorrentGet(context.Background(), req); err != nil {
		t.Fatalf("TorrentGet failed: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/transmission/rpc" {
		t.Errorf("expected fixed RPC path, got %s", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %s", gotContentType)
	}
	if gotUser != "admin" || gotPass != "secret" {
		t.Errorf("expected basic auth admin/secret, got %s/%s", gotUser, gotPass)
	}
	if gotBody.Method != "torrent-get" {
		t.Errorf("expected envelope method torrent-get, got %s", gotBody.Method)
	}
}

func TestClient_TorrentGetDecodesTorrents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"arguments":{"torrents":[{"id":1,"name":"x"}]}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	resp, err := client.TorrentGet(context.Background(), TorrentGetRequest{Fields: []string{"id", "name"}})
	if err != nil {
		t.Fatalf("TorrentGet failed: %v", err)
	}
	if len(resp.Torrents) != 1 {
		t.Fatalf("expected one torrent, got %d", len(resp.Torrents))
	}
	if resp.Torrents[0].ID != 1 || resp.Torrents[0].Name != "x" {
		t.Errorf("unexpected torrent decoded: %+v", resp.Torrents[0])
	}
}

func TestClient_ExecIgnoresBodyShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	if err := client.Exec(context.Background(), "torrent-stop", nil); err != nil {
		t.Errorf("Exec should only classify the status, got %v", err)
	}
}

func TestClient_ConcurrentCalls(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(tokenDaemon(t, "tok-77", &calls, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"arguments":{"torrents":[]}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.TorrentGet(context.Background(), TorrentGetRequest{Fields: []string{"id"}})
		}(i)
	}
	wg.Wait()

	// Concurrent calls may each pay a 409 round trip, but every call
	// must converge on its own.
	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent call %d failed: %v", i, err)
		}
	}
	if got := client.Session().Token(); got != "tok-77" {
		t.Errorf("expected converged token, got %q", got)
	}
}

func TestSetSessionToken_HeaderCasing(t *testing.T) {
	// Plain HTTP uses the lower-case header name on the wire, bypassing
	// canonicalization; TLS uses the canonical form.
	req, _ := http.NewRequest(http.MethodPost, "http://example:9091/transmission/rpc", nil)
	setSessionToken(req, "http", "tok")
	if got := req.Header[sessionHeaderPlain]; len(got) != 1 || got[0] != "tok" {
		t.Errorf("expected raw lower-case header for http, got %v", req.Header)
	}
	if got := req.Header.Get(sessionHeaderTLS); got != "" {
		t.Errorf("canonical header must not be set for http, got %q", got)
	}

	req, _ = http.NewRequest(http.MethodPost, "https://example:9091/transmission/rpc", nil)
	setSessionToken(req, "https", "tok")
	if got := req.Header.Get(sessionHeaderTLS); got != "tok" {
		t.Errorf("expected canonical header for https, got %v", req.Header)
	}
}

func TestSessionHeaderName(t *testing.T) {
	if got := SessionHeaderName("http"); got != "x-transmission-session-id" {
		t.Errorf("unexpected plain header name %q", got)
	}
	if got := SessionHeaderName("https"); got != "X-Transmission-Session-Id" {
		t.Errorf("unexpected TLS header name %q", got)
	}
}

func TestEndpoint_URL(t *testing.T) {
	e := Endpoint{Scheme: "https", Host: "nas.local", Port: 9091}
	want := "https://nas.local:9091/transmission/rpc"
	if got := e.URL(); got != want {
		t.Errorf("Endpoint.URL() = %q, want %q", got, want)
	}
}

func TestNewClient_RequiresSession(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatal("NewClient must reject a missing session")
	}
}
