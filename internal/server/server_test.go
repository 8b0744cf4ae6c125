package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/whomadeit/internal/analysis"
	"github.com/abhisek/whomadeit/internal/classifier"
	"github.com/abhisek/whomadeit/internal/llm"
	"github.com/abhisek/whomadeit/internal/stats"
	"github.com/abhisek/whomadeit/internal/store"
)

type testEnv struct {
	srv  *httptest.Server
	mock *llm.MockProvider
}

func newTestEnv(t *testing.T, configured bool, origins ...string) *testEnv {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider()
	var c analysis.Classifier
	if configured {
		c = classifier.New(mock, classifier.DefaultConfig())
	}
	svc := analysis.New(c, st, nil)

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	srv := httptest.NewServer(New(svc, Options{CORSOrigins: origins}, nil))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, mock: mock}
}

func (e *testEnv) reply(content string) {
	e.mock.AddResponse(llm.MockResponse{Content: []byte(content)})
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), "body: %s", data)
	return v
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t, true)
	resp, body := env.do(t, http.MethodGet, "/api/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Inventor Gender Checker API"}`, string(body))

	resp, _ = env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalyze(t *testing.T) {
	env := newTestEnv(t, true)
	env.reply("```json\n{\"result\":\"WOMAN\",\"creator_name\":\"Grace Hopper\",\"category\":\"Computing\",\"explanation\":\"Wrote the first compiler.\"}\n```")

	resp, body := env.do(t, http.MethodPost, "/api/analyze", `{"input_text":"compiler"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	got := decode[map[string]any](t, body)
	assert.NotEmpty(t, got["id"])
	assert.Equal(t, "compiler", got["input_text"])
	assert.Equal(t, "woman", got["result"])
	assert.Equal(t, "Grace Hopper", got["creator_name"])
	assert.Equal(t, "Computing", got["category"])
	assert.Equal(t, "Wrote the first compiler.", got["explanation"])
	ts, err := time.Parse(time.RFC3339Nano, got["timestamp"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)

	resp, body = env.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"total_queries":1,"men_count":0,"women_count":1,"milestones":[]}`, string(body))

	resp, body = env.do(t, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"category":"Computing","count":1,"men_count":0,"women_count":1}]`, string(body))
}

func TestAnalyze_Fallback(t *testing.T) {
	env := newTestEnv(t, true)
	env.reply("Fire was discovered, not invented.")

	resp, body := env.do(t, http.MethodPost, "/api/analyze", `{"input_text":"fire"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[store.Query](t, body)
	assert.Equal(t, "unknown", got.Result)
	assert.Equal(t, "Unknown", got.CreatorName)
	assert.Equal(t, "General", got.Category)
	assert.Equal(t, "Fire was discovered, not invented.", got.Explanation)

	_, body = env.do(t, http.MethodGet, "/api/queries", "")
	assert.JSONEq(t, `[]`, string(body))
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
		upstream   error
		body       string
		wantStatus int
		wantDetail string
	}{
		{"malformed body", true, nil, `{"input_text":`, http.StatusBadRequest, "invalid JSON body"},
		{"missing field", true, nil, `{}`, http.StatusBadRequest, "missing input_text"},
		{"blank input", true, nil, `{"input_text":"  "}`, http.StatusBadRequest, analysis.ErrEmptyInput.Error()},
		{"not configured", false, nil, `{"input_text":"radio"}`, http.StatusInternalServerError, "API key not configured"},
		{"upstream failure", true, errors.New("upstream exploded"), `{"input_text":"radio"}`, http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.configured)
			if tt.upstream != nil {
				env.mock.AddResponse(llm.MockResponse{Err: tt.upstream})
			}
			resp, body := env.do(t, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			got := decode[errorBody](t, body)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, got.Detail)
			} else {
				assert.Contains(t, got.Detail, tt.upstream.Error())
			}
		})
	}
}

func TestQueries_Limit(t *testing.T) {
	env := newTestEnv(t, true)
	for i := 0; i < 7; i++ {
		env.reply(`{"result":"man","creator_name":"A","category":"Technology"}`)
		resp, _ := env.do(t, http.MethodPost, "/api/analyze", `{"input_text":"item"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodGet, "/api/queries?limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]store.Query](t, body), 5)

	_, body = env.do(t, http.MethodGet, "/api/queries", "")
	assert.Len(t, decode[[]store.Query](t, body), 7)

	_, body = env.do(t, http.MethodGet, "/api/queries?limit=0", "")
	assert.JSONEq(t, `[]`, string(body))

	_, body = env.do(t, http.MethodGet, "/api/queries?limit=-1", "")
	assert.Len(t, decode[[]store.Query](t, body), 7)

	resp, body = env.do(t, http.MethodGet, "/api/queries?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "limit must be an integer", decode[errorBody](t, body).Detail)
}

func TestEmptyCollections(t *testing.T) {
	env := newTestEnv(t, true)
	for _, path := range []string{"/api/queries", "/api/categories", "/api/milestones"} {
		resp, body := env.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.JSONEq(t, `[]`, string(body), path)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, true)
	resp, _ := env.do(t, http.MethodGet, "/api/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, true, "http://localhost:3000")

	req, err := http.NewRequest(http.MethodOptions, env.srv.URL+"/api/analyze", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "POST", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "content-type", resp.Header.Get("Access-Control-Allow-Headers"))

	req, err = http.NewRequest(http.MethodGet, env.srv.URL+"/api/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = env.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	env := newTestEnv(t, true, "*")
	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://any.example.com")
	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://any.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

type panicService struct{ Service }

func (panicService) Stats(context.Context) (*stats.Snapshot, error) { panic("boom") }

func TestRecoverPanics(t *testing.T) {
	srv := httptest.NewServer(New(panicService{}, Options{}, nil))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(panicService{}, Options{ShutdownTimeout: time.Second}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
