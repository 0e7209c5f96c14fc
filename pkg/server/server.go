// Package server provides the MCP server exposing the photo geodata tools.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"github.com/NERVsystems/photogeo/pkg/config"
	"github.com/NERVsystems/photogeo/pkg/metrics"
	"github.com/NERVsystems/photogeo/pkg/schedule"
	"github.com/NERVsystems/photogeo/pkg/tools"
	"github.com/NERVsystems/photogeo/pkg/tools/prompts"
	"github.com/NERVsystems/photogeo/pkg/version"
)

// ServerName is the name of the MCP server
const ServerName = version.Name

// Server encapsulates the MCP server with the photogeo tools.
type Server struct {
	srv    *server.MCPServer
	logger *slog.Logger

	limiter  *rate.Limiter
	limitLog *schedule.Throttler[string]
	activity *schedule.BatchUpdater[string]
}

// NewServer creates a new photogeo MCP server with all tools registered,
// logging to slog.Default(). A nil cfg means config.Default().
func NewServer(cfg *config.Config) (*Server, error) {
	return NewServerWithLogger(cfg, slog.Default())
}

// NewServerWithLogger is NewServer with an explicit logger for the server,
// its tools and its background summaries.
func NewServerWithLogger(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("initializing photogeo MCP server",
		"name", ServerName,
		"version", version.BuildVersion)

	s := &Server{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.Server.RatePerSecond), cfg.Server.Burst),
	}

	var err error
	s.limitLog, err = schedule.NewThrottler(cfg.ThrottleLimit(), func(tool string) {
		logger.Warn("tool calls are being rate limited", "tool", tool)
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit logger: %w", err)
	}
	s.activity, err = schedule.NewBatchUpdater(cfg.BatchDelay(), s.logActivity)
	if err != nil {
		return nil, fmt.Errorf("activity log: %w", err)
	}

	// Middleware runs in the order given: recovery wraps everything and
	// rate-limited calls never reach the metrics timer.
	srv := server.NewMCPServer(
		ServerName,
		version.BuildVersion,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(s.rateLimit),
		server.WithToolHandlerMiddleware(s.observe),
	)

	registry := tools.NewRegistry(logger, cfg)
	registry.RegisterTools(srv)
	prompts.RegisterPhotoPrompts(srv)

	s.srv = srv
	return s, nil
}

// rateLimit waits for the shared token bucket. A call whose context ends
// first is answered with a tool error.
func (s *Server) rateLimit(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Debug("rate limiter wait error", "tool", req.Params.Name, "error", err)
			s.limitLog.Call(req.Params.Name)
			metrics.ObserveToolCall(req.Params.Name, metrics.OutcomeRateLimited, time.Since(start))
			return tools.ErrorResponse("Too many requests, try again shortly"), nil
		}
		return next(ctx, req)
	}
}

// observe records call counts and latency per tool and outcome.
func (s *Server) observe(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := next(ctx, req)

		outcome := metrics.OutcomeOK
		switch {
		case err != nil:
			outcome = metrics.OutcomeError
		case res != nil && res.IsError:
			outcome = metrics.OutcomeToolError
		}
		metrics.ObserveToolCall(req.Params.Name, outcome, time.Since(start))
		s.activity.Add(req.Params.Name)
		return res, err
	}
}

// logActivity summarizes a burst of tool calls in one debug line.
func (s *Server) logActivity(names []string) {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		counts[n]++
	}
	s.logger.Debug("tool activity", "calls", len(names), "by_tool", counts)
}

// Run starts the MCP server using stdin/stdout for communication.
func (s *Server) Run() error {
	defer s.Close()
	return server.ServeStdio(s.srv)
}

// RunWithContext serves stdin/stdout until ctx is cancelled or input ends.
func (s *Server) RunWithContext(ctx context.Context) error {
	defer s.Close()
	return server.NewStdioServer(s.srv).Listen(ctx, os.Stdin, os.Stdout)
}

// Close logs any pending activity and stops the background timers.
func (s *Server) Close() {
	s.activity.Flush()
	s.activity.Stop()
	s.limitLog.Stop()
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}
