package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_tm_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_tm_similarity/internal/config"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	log, err := logger.NewDiscardLogger()
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })

	cfg := config.Default()
	cfg.Server.WarmUp = false
	a, err := newApp(cfg, log)
	require.NoError(t, err)
	return a
}

func do(a *app, method, path, body string, headers ...string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	for i := 0; i+1 < len(headers); i += 2 {
		ctx.Request.Header.Set(headers[i], headers[i+1])
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	a.requestHandler(&ctx)
	return &ctx
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	ctx := do(a, fasthttp.MethodGet, "/health", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.NotEmpty(t, ctx.Response.Header.Peek(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	a := newTestApp(t)

	ctx := do(a, fasthttp.MethodGet, "/health", "", requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek(requestIDHeader)))
}

func TestSimilarityEndpoint(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"ok", fasthttp.MethodPost, `{"query":"kitten","candidate":"sitting"}`, fasthttp.StatusOK},
		{"wrong method", fasthttp.MethodGet, "", fasthttp.StatusMethodNotAllowed},
		{"bad json", fasthttp.MethodPost, `{"query":`, fasthttp.StatusBadRequest},
		{"missing candidate", fasthttp.MethodPost, `{"query":"kitten"}`, fasthttp.StatusBadRequest},
		{"empty strings", fasthttp.MethodPost, `{"query":"","candidate":""}`, fasthttp.StatusOK},
		{"invalid stop", fasthttp.MethodPost, `{"query":"a","candidate":"b","stop_percentage":101}`, fasthttp.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := do(a, tc.method, "/similarity", tc.body)
			assert.Equal(t, tc.status, ctx.Response.StatusCode(), string(ctx.Response.Body()))
		})
	}

	ctx := do(a, fasthttp.MethodPost, "/similarity", `{"query":"kitten","candidate":"sitting"}`)
	var resp Response
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.InDelta(t, 100-300.0/7, resp.Score, 1e-9)
	assert.True(t, resp.Passed)
	assert.Equal(t, 40.0, resp.StopPercentage)

	ctx = do(a, fasthttp.MethodPost, "/similarity", `{"query":"","candidate":""}`)
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 100.0, resp.Score)
}

func TestTerminologyEndpoint(t *testing.T) {
	a := newTestApp(t)

	ctx := do(a, fasthttp.MethodPost, "/terminology", `{"text":"categories of items","term":"category"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp Response
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 80.0, resp.Score)
	assert.True(t, resp.Passed)

	ctx = do(a, fasthttp.MethodPost, "/terminology", `{"text":"xyz","term":"quick","stop_percentage":0}`)
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 0.0, resp.Score)
	assert.False(t, resp.Passed)

	ctx = do(a, fasthttp.MethodPost, "/terminology", `{"text":"","term":""}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 0.0, resp.Score)

	ctx = do(a, fasthttp.MethodPost, "/terminology", `{"text":"xyz"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestRankEndpoint(t *testing.T) {
	a := newTestApp(t)

	body := `{"query":"Save the file before closing","candidates":["Printer not found","Save the files before closing","Save the file before closing"],"limit":1}`
	ctx := do(a, fasthttp.MethodPost, "/rank", body)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	var resp RankResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, 2, resp.Matches[0].Index)
	assert.Equal(t, 100.0, resp.Matches[0].Score)

	ctx = do(a, fasthttp.MethodPost, "/rank", `{"query":"open the file","candidates":["file (noun)","printer"],"mode":"terminology"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "file (noun)", resp.Matches[0].Candidate)

	ctx = do(a, fasthttp.MethodPost, "/rank", `{"query":"x","candidates":["y"],"mode":"soundex"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(a, fasthttp.MethodPost, "/rank", `{"query":"x"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(a, fasthttp.MethodPost, "/rank", `{"query":"","candidates":[]}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	resp = RankResponse{}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Empty(t, resp.Matches)

	ctx = do(a, fasthttp.MethodPost, "/rank", `{"query":"the quick brown fox","candidates":["quick","zebra"],"mode":"terminology","stop_percentage":0}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "quick", resp.Matches[0].Candidate)
}

func TestUnknownPath(t *testing.T) {
	a := newTestApp(t)

	ctx := do(a, fasthttp.MethodGet, "/nope", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}
