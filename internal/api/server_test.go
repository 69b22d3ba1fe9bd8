// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cf-worker-cli/internal/deploy"
	"cf-worker-cli/internal/logger"
	"cf-worker-cli/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedURL = "https://example.com/default.js"

func TestMain(m *testing.M) {
	logger.SetLogger(zerolog.Nop())
	os.Exit(m.Run())
}

type stubDeployer struct {
	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	overlap  atomic.Bool
	delay    time.Duration
	fail     map[string]bool
}

func (d *stubDeployer) Deploy(ctx context.Context, a store.Account, worker, url string) deploy.Result {
	if d.inFlight.Add(1) > 1 {
		d.overlap.Store(true)
	}
	defer d.inFlight.Add(-1)
	time.Sleep(d.delay)

	d.mu.Lock()
	d.calls = append(d.calls, a.Email+"/"+worker+"@"+url)
	d.mu.Unlock()

	res := deploy.Result{AccountEmail: a.Email, WorkerName: worker}
	if d.fail[worker] {
		res.Error = "Deployment failed: quota exceeded"
		return res
	}
	res.Success = true
	res.Data = map[string]any{"success": true, "vless": "vless://u-1@h:443"}
	return res
}

type fixture struct {
	srv      *httptest.Server
	session  *store.Session
	deployer *stubDeployer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	session := store.Open(store.Paths{
		Accounts: filepath.Join(dir, "accounts.json"),
		Scripts:  filepath.Join(dir, "github_urls.json"),
	}, seedURL)
	d := &stubDeployer{}
	srv := httptest.NewServer(NewServer(session, d, "https://api.example.com/").NewRouter())
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, session: session, deployer: d}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestAccountsRoutes(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "POST", "/api/accounts", addAccountRequest{Email: "ops@example.com", APIKey: "abcdefgh12345678"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	added := decode[mutationResponse](t, body)
	require.NotNil(t, added.Account)
	assert.Equal(t, 1, added.Account.Index)
	assert.Equal(t, "abcdefgh...5678", added.Account.APIKey)

	resp, body = f.do(t, "GET", "/api/accounts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]accountView](t, body)
	assert.Equal(t, []accountView{{Index: 1, Email: "ops@example.com", APIKey: "abcdefgh...5678"}}, list)
	assert.NotContains(t, string(body), "abcdefgh12345678")

	resp, body = f.do(t, "POST", "/api/accounts", addAccountRequest{Email: "nope", APIKey: "k"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "please enter a valid email", decode[errorResponse](t, body).Error)

	resp, _ = f.do(t, "DELETE", "/api/accounts/2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = f.do(t, "DELETE", "/api/accounts/x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, "DELETE", "/api/accounts/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, f.session.Accounts())
}

func TestAddAccountMalformedBody(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest("POST", f.srv.URL+"/api/accounts", strings.NewReader("{"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScriptsRoutes(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "POST", "/api/scripts", addScriptRequest{Name: "Second", URL: "https://second.js"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = f.do(t, "POST", "/api/scripts", addScriptRequest{Name: "SECOND", URL: "https://x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = f.do(t, "PUT", "/api/scripts/2/default", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://second.js", f.session.DefaultScriptURL())

	resp, body = f.do(t, "GET", "/api/scripts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]scriptView](t, body)
	require.Len(t, list, 2)
	assert.False(t, list[0].IsDefault)
	assert.True(t, list[1].IsDefault)
	assert.Equal(t, 2, list[1].Index)

	resp, body = f.do(t, "DELETE", "/api/scripts/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	removed := decode[mutationResponse](t, body)
	require.NotNil(t, removed.NewDefault)
	assert.Equal(t, "Default Worker", removed.NewDefault.Name)

	resp, _ = f.do(t, "PUT", "/api/scripts/9/default", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusRoute(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.AddAccount("ops@example.com", "k")
	require.NoError(t, err)

	resp, body := f.do(t, "GET", "/api/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[statusResponse](t, body)
	assert.Equal(t, 1, st.AccountsCount)
	assert.Equal(t, []string{"ops@example.com"}, st.Accounts)
	assert.Equal(t, []string{"Default Worker"}, st.Scripts)
	assert.Equal(t, seedURL, st.DefaultScriptURL)
	assert.Equal(t, "https://api.example.com/", st.APIURL)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestDeployRoute(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.AddAccount("ops@example.com", "k")
	require.NoError(t, err)

	resp, body := f.do(t, "POST", "/api/deploy", DeployRequest{Account: "ops@example.com", WorkerName: "edge"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	got := decode[DeployResponse](t, body)
	assert.True(t, got.Success)
	assert.Equal(t, seedURL, got.ScriptURL)
	require.NotNil(t, got.Links)
	assert.Equal(t, "u-1", got.Links.UUID)

	f.deployer.fail = map[string]bool{"bad": true}
	resp, body = f.do(t, "POST", "/api/deploy", DeployRequest{Account: "1", WorkerName: "bad", Script: "default worker"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "a failed deployment is still a 200")
	got = decode[DeployResponse](t, body)
	assert.False(t, got.Success)
	assert.Equal(t, "Deployment failed: quota exceeded", got.Error)
	assert.Nil(t, got.Links)

	resp, _ = f.do(t, "POST", "/api/deploy", DeployRequest{Account: "1", WorkerName: " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = f.do(t, "POST", "/api/deploy", DeployRequest{Account: "someone@example.com", WorkerName: "w"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = f.do(t, "POST", "/api/deploy", DeployRequest{Account: "1", WorkerName: "w", Script: "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBulkRoute(t *testing.T) {
	f := newFixture(t)
	for _, e := range []string{"a@example.com", "b@example.com"} {
		_, err := f.session.AddAccount(e, "k")
		require.NoError(t, err)
	}
	f.deployer.fail = map[string]bool{"w2": true}

	resp, body := f.do(t, "POST", "/api/bulk", BulkRequest{WorkerNames: []string{" w1 ", "", "w2"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	summary := decode[deploy.Summary](t, body)
	assert.Equal(t, 4, summary.Attempted)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, []string{
		"a@example.com/w1@" + seedURL, "a@example.com/w2@" + seedURL,
		"b@example.com/w1@" + seedURL, "b@example.com/w2@" + seedURL,
	}, f.deployer.calls)

	resp, _ = f.do(t, "POST", "/api/bulk", BulkRequest{WorkerNames: []string{" ", ""}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBulkRouteWithoutAccounts(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, "POST", "/api/bulk", BulkRequest{WorkerNames: []string{"w1"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "no accounts registered", decode[errorResponse](t, body).Error)
}

func TestConcurrentRequestsAreSerialized(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.AddAccount("ops@example.com", "k")
	require.NoError(t, err)
	f.deployer.delay = 20 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload, _ := json.Marshal(DeployRequest{Account: "1", WorkerName: "edge"})
			resp, err := http.Post(f.srv.URL+"/api/deploy", "application/json", bytes.NewReader(payload))
			if assert.NoError(t, err) {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, f.deployer.calls, 4)
	assert.False(t, f.deployer.overlap.Load(), "deployments overlapped")
}

func TestStreamBulkRoute(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.AddAccount("ops@example.com", "k")
	require.NoError(t, err)

	resp, err := http.Get(f.srv.URL + "/api/bulk/stream?workers=w1,w2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	var lastData string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			events = append(events, name)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			lastData = data
		}
	}
	require.NoError(t, sc.Err())

	assert.Equal(t, []string{"step", "result", "step", "result", "done"}, events)
	summary := decode[deploy.Summary](t, []byte(lastData))
	assert.Equal(t, 2, summary.Succeeded)

	resp2, err := http.Get(f.srv.URL + "/api/bulk/stream")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestRejectsNonJSONBodies(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.AddAccount("victim@example.com", "k")
	require.NoError(t, err)

	tests := []struct {
		name        string
		path        string
		body        string
		contentType string
	}{
		{"text plain script", "/api/scripts", `{"name":"evil","url":"https://evil.example/w.js"}`, "text/plain"},
		{"form deploy", "/api/deploy", `{"account":"1","worker_name":"pwn"}`, "application/x-www-form-urlencoded"},
		{"missing content type", "/api/accounts", `{"email":"a@b","api_key":"k"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("POST", f.srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		})
	}

	assert.Len(t, f.session.Scripts(), 1)
	assert.Len(t, f.session.Accounts(), 1)
	assert.Empty(t, f.deployer.calls)

	req, err := http.NewRequest("POST", f.srv.URL+"/api/scripts", strings.NewReader(`{"name":"ok","url":"https://ok"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRejectsCrossOriginRequests(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.AddAccount("victim@example.com", "k")
	require.NoError(t, err)

	send := func(method, path, body string, headers map[string]string) int {
		req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	evil := map[string]string{"Origin": "https://evil.example"}
	assert.Equal(t, http.StatusForbidden, send("POST", "/api/scripts", `{"name":"evil","url":"https://evil.example/w.js"}`, evil))
	assert.Equal(t, http.StatusForbidden, send("POST", "/api/deploy", `{"account":"1","worker_name":"pwn"}`, evil))
	assert.Equal(t, http.StatusForbidden, send("GET", "/api/accounts", "", evil))
	assert.Equal(t, http.StatusForbidden, send("GET", "/api/bulk/stream?workers=pwn", "", map[string]string{"Sec-Fetch-Site": "cross-site"}))
	assert.Equal(t, http.StatusForbidden, send("POST", "/api/deploy", `{"account":"1","worker_name":"pwn"}`, map[string]string{"Origin": "null"}))

	assert.Empty(t, f.deployer.calls)
	assert.Len(t, f.session.Scripts(), 1)

	same := map[string]string{"Origin": f.srv.URL, "Sec-Fetch-Site": "same-origin"}
	assert.Equal(t, http.StatusOK, send("POST", "/api/deploy", `{"account":"1","worker_name":"edge"}`, same))
	assert.Len(t, f.deployer.calls, 1)
}
