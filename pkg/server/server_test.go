package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/photogeo/pkg/config"
	"github.com/NERVsystems/photogeo/pkg/testutil"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func handle(t *testing.T, s *Server, ctx context.Context, msg string) mcp.JSONRPCResponse {
	t.Helper()
	out := s.MCPServer().HandleMessage(ctx, json.RawMessage(msg))
	resp, ok := out.(mcp.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected a JSON-RPC response, got %T: %+v", out, out)
	}
	return resp
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t, nil)
	if s.MCPServer() == nil {
		t.Error("NewServer() returned a server without an MCP server")
	}
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Burst = 0
	if _, err := NewServer(cfg); err == nil {
		t.Error("NewServer() accepted a zero burst")
	}
}

func TestListTools(t *testing.T) {
	s := newTestServer(t, nil)
	resp := handle(t, s, context.Background(), `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	result, ok := resp.Result.(mcp.ListToolsResult)
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if len(result.Tools) != 8 {
		t.Errorf("got %d tools, want 8", len(result.Tools))
	}
}

func TestCallTool(t *testing.T) {
	s := newTestServer(t, nil)
	resp := handle(t, s, context.Background(),
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"geo_distance","arguments":{"from_lat":0,"from_lon":0,"to_lat":0,"to_lon":1}}}`)

	result, ok := resp.Result.(mcp.CallToolResult)
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", testutil.ResultText(&result))
	}
	if !strings.Contains(testutil.ResultText(&result), `"distance":111.19`) {
		t.Errorf("unexpected output %s", testutil.ResultText(&result))
	}
}

func TestRateLimitedCall(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RatePerSecond = 0.001
	cfg.Server.Burst = 1
	s := newTestServer(t, cfg)

	call := `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"geo_midpoint","arguments":{"from_lat":0,"from_lon":0,"to_lat":0,"to_lon":2}}}`

	first := handle(t, s, context.Background(), call).Result.(mcp.CallToolResult)
	if first.IsError {
		t.Fatalf("first call should use the burst token: %s", testutil.ResultText(&first))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	second := handle(t, s, ctx, call).Result.(mcp.CallToolResult)
	if !second.IsError || !strings.Contains(testutil.ResultText(&second), "Too many requests") {
		t.Errorf("second call should be rate limited, got %s", testutil.ResultText(&second))
	}
}

func TestActivitySummary(t *testing.T) {
	cfg := config.Default()
	cfg.Schedule.BatchDelayMs = 200
	logger, logs := testutil.NewRecordingLogger()
	s, err := NewServerWithLogger(cfg, logger)
	if err != nil {
		t.Fatalf("NewServerWithLogger() error = %v", err)
	}
	t.Cleanup(s.Close)

	distance := `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"geo_distance","arguments":{"from_lat":0,"from_lon":0,"to_lat":1,"to_lon":1}}}`
	midpoint := `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"geo_midpoint","arguments":{"from_lat":0,"from_lon":0,"to_lat":1,"to_lon":1}}}`
	handle(t, s, context.Background(), distance)
	handle(t, s, context.Background(), distance)
	handle(t, s, context.Background(), midpoint)

	deadline := time.Now().Add(2 * time.Second)
	for len(logs.Lines("tool activity")) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	lines := logs.Lines("tool activity")
	if len(lines) != 1 {
		t.Fatalf("got %d activity summaries, want 1:\n%s", len(lines), logs)
	}
	for _, want := range []string{"calls=3", "geo_distance:2", "geo_midpoint:1"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("summary %q lacks %s", lines[0], want)
		}
	}
}

func TestRateLimitWarningIsThrottled(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RatePerSecond = 0.001
	cfg.Server.Burst = 1
	cfg.Schedule.ThrottleMs = 60_000
	logger, logs := testutil.NewRecordingLogger()
	s, err := NewServerWithLogger(cfg, logger)
	if err != nil {
		t.Fatalf("NewServerWithLogger() error = %v", err)
	}
	t.Cleanup(s.Close)

	call := `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"geo_midpoint","arguments":{"from_lat":0,"from_lon":0,"to_lat":0,"to_lon":2}}}`
	handle(t, s, context.Background(), call)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		res := handle(t, s, ctx, call).Result.(mcp.CallToolResult)
		if !res.IsError {
			t.Fatalf("call %d was not rate limited", i)
		}
	}

	if got := len(logs.Lines("tool calls are being rate limited")); got != 1 {
		t.Errorf("got %d rate limit warnings, want 1:\n%s", got, logs)
	}
	if got := len(logs.Lines("rate limiter wait error")); got != 5 {
		t.Errorf("got %d limiter debug lines, want 5", got)
	}
}
