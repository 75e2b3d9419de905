package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/cases"
	"github.com/abhisek/sleuth/internal/engine"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Mode = gin.TestMode
	return cfg
}

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *api.Client) {
	t.Helper()
	eng, err := engine.Open(context.Background(), cases.Default(), engine.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	s, err := New(eng, cfg, zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	clientCfg := api.DefaultConfig()
	clientCfg.BaseURL = ts.URL
	clientCfg.Timeout = 5 * time.Second
	return ts, api.NewClient(clientCfg, zap.NewNop())
}

func TestHandshake(t *testing.T) {
	_, client := newTestServer(t, testConfig())

	h, err := client.Handshake(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, api.ProtocolVersion, h.Version)
}

func TestSchema_UnknownCaseIsNotFound(t *testing.T) {
	_, client := newTestServer(t, testConfig())

	_, err := client.GetCaseSchema(context.Background(), "case-999")
	require.ErrorIs(t, err, api.ErrNotFound)
	var te *api.TransportError
	assert.NotErrorAs(t, err, &te)
}

func TestSchema_SingleAndWrapped(t *testing.T) {
	ts, client := newTestServer(t, testConfig())
	ctx := context.Background()

	single, err := client.GetCaseSchema(ctx, "case-003")
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, "finances", single[0].TableName)

	multi, err := client.GetCaseSchema(ctx, "case-004")
	require.NoError(t, err)
	assert.Len(t, multi, 2)

	resp, err := http.Get(ts.URL + "/case/case-004/schema")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body, "tables")
}

func TestData(t *testing.T) {
	_, client := newTestServer(t, testConfig())

	tables, err := client.GetCaseData(context.Background(), "case-006")
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "secret_negotiations", tables[0].TableName)
	assert.NotEmpty(t, tables[0].Data)
}

func TestCheckSolution_Case003(t *testing.T) {
	_, client := newTestServer(t, testConfig())
	ctx := context.Background()
	answer := "SELECT recipient_name, amount FROM finances WHERE transaction_date = '1380-09-06' AND amount > 50"

	res, err := client.CheckSolution(ctx, answer, "case-003")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)

	res, err = client.CheckSolution(ctx, "SELECT * FROM finances", "case-003")
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
}

func TestExecuteSQL(t *testing.T) {
	_, client := newTestServer(t, testConfig())
	ctx := context.Background()

	res, err := client.ExecuteSQL(ctx, "SELECT recipient_name, amount FROM finances WHERE transaction_date = '1380-09-06' AND amount > 50", "case-003")
	require.NoError(t, err)
	assert.True(t, res.Correct())
	assert.Equal(t, engine.SuccessMessage, res.Message)
	for _, row := range res.Rows {
		assert.Len(t, row, len(res.Columns))
		for _, c := range res.Columns {
			assert.Contains(t, row, c)
		}
	}

	res, err = client.ExecuteSQL(ctx, "SELECT * FROM camp_logs", "")
	require.NoError(t, err)
	assert.Nil(t, res.IsCorrect)
}

func TestExecuteSQL_Errors(t *testing.T) {
	_, client := newTestServer(t, testConfig())

	tests := []struct {
		name   string
		query  string
		status int
		prefix string
	}{
		{"forbidden", "SELECT 1; DROP TABLE finances", http.StatusForbidden, "This operation is not allowed"},
		{"unknown table", "SELECT * FROM banners", http.StatusBadRequest, "Invalid table name in query"},
		{"empty", "", http.StatusBadRequest, "Query cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ExecuteSQL(context.Background(), tt.query, "case-003")
			var ee *api.ExecutionError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.status, ee.Status)
			assert.True(t, strings.HasPrefix(ee.Message, tt.prefix), "message %q", ee.Message)
		})
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = RateLimitConfig{Requests: 2, Window: time.Hour}
	ts, _ := newTestServer(t, cfg)

	var last int
	for range 3 {
		resp, err := http.Get(ts.URL + "/case/case-001/schema")
		require.NoError(t, err)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		last = resp.StatusCode
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health is not rate limited")
}

func TestRequestIDAndMetrics(t *testing.T) {
	ts, client := newTestServer(t, testConfig())
	_, err := client.ExecuteSQL(context.Background(), "SELECT 1", "")
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sleuth_queries_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), `sleuth_http_requests_total{endpoint="/execute-sql",method="POST",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	ts, _ := newTestServer(t, testConfig())

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/execute-sql", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestServe_GracefulShutdown(t *testing.T) {
	eng, err := engine.Open(context.Background(), cases.Default(), engine.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	defer eng.Close()
	s, err := New(eng, testConfig(), zap.NewNop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = "loud"
	assert.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.RateLimit.Requests = 0
	assert.Error(t, cfg.Validate())

	assert.NoError(t, testConfig().Validate())
}
