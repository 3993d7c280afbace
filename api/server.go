// Package api provides the math2python HTTP server: a single conversion
// endpoint in front of the conversion service, plus optional history of
// recorded conversions and an MCP endpoint.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/papercomputeco/math2python/pkg/conversion"
	"github.com/papercomputeco/math2python/pkg/merkle"
	"github.com/papercomputeco/math2python/pkg/textutil"
)

// ServiceName is reported by the status endpoints.
const ServiceName = "Math2Python Optimizer Agent"

// Request bodies may carry a base64 image.
const maxBodyBytes = 10 << 20

// Converter performs a single conversion. *conversion.Service implements it.
type Converter interface {
	Convert(ctx context.Context, req *conversion.Request) *conversion.Conversion
}

// Server is the HTTP front of the conversion service. It is stateless unless
// a merkle.Storer is attached, in which case each conversion is recorded as
// an equation node with the conversion as its child.
type Server struct {
	config     Config
	converter  Converter
	storer     merkle.Storer
	mcpHandler http.Handler
	logger     *zap.Logger
	server     *fiber.App
}

// Option customizes a Server.
type Option func(*Server)

// WithStorer records every conversion in the given store and enables the
// history endpoints.
func WithStorer(storer merkle.Storer) Option {
	return func(s *Server) {
		s.storer = storer
	}
}

// WithMCPHandler mounts an MCP streamable HTTP handler at /mcp.
func WithMCPHandler(h http.Handler) Option {
	return func(s *Server) {
		s.mcpHandler = h
	}
}

// StatusResponse is returned by the root and health endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ErrorResponse carries a client-facing error message.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// NewServer creates a new Server.
func NewServer(config Config, converter Converter, logger *zap.Logger, opts ...Option) (*Server, error) {
	if converter == nil {
		return nil, fmt.Errorf("converter is required")
	}

	s := &Server{
		config:    config,
		converter: converter,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		BodyLimit:             maxBodyBytes,
	})

	allowOrigins := config.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
	}))

	app.Get("/", s.handleStatus)
	app.Get("/health", s.handleStatus)
	app.Post("/convert", s.handleConvert)

	// Conversion tape inspection
	app.Get("/history", s.handleListHistories)
	app.Get("/history/stats", s.handleHistoryStats)
	app.Get("/history/:hash", s.handleGetHistory)

	if s.mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(s.mcpHandler))
	}

	s.server = app
	return s, nil
}

// Run starts the server on the configured listening address
func (s *Server) Run() error {
	s.logger.Info("starting api server",
		zap.String("listen", s.config.ListenAddr),
		zap.Bool("recording", s.storer != nil),
		zap.Bool("mcp", s.mcpHandler != nil),
	)

	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting api server", zap.String("listen", ln.Addr().String()))
	return s.server.Listener(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.server.Shutdown()
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{Status: "ok", Service: ServiceName})
}

// handleConvert validates the request, delegates to the converter and
// returns its response unchanged. Conversion failures are already folded
// into the response, so this only fails for bad input.
func (s *Server) handleConvert(c *fiber.Ctx) error {
	startTime := time.Now()

	var req conversion.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Error("failed to parse request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Detail: "invalid request body"})
	}

	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Detail: "Equation cannot be empty"})
	}
	req.Normalize()

	ctx := c.UserContext()
	conv := s.converter.Convert(ctx, &req)

	s.logger.Debug("conversion finished",
		zap.String("source", string(conv.Source)),
		zap.Duration("duration", time.Since(startTime)),
	)

	if s.storer != nil {
		headHash, err := s.recordConversion(ctx, &req, conv)
		if err != nil {
			// Recording is best effort
			s.logger.Error("failed to record conversion", zap.Error(err))
		} else {
			s.logger.Info("conversion recorded", zap.String("head_hash", textutil.Truncate(headHash, 16)))
		}
	}

	return c.JSON(conv.Response)
}

// recordConversion stores the equation as a root node and the conversion as
// its child, returning the child's hash. Repeating an identical conversion
// stores nothing new; a different answer for the same equation branches
// from the shared root.
func (s *Server) recordConversion(ctx context.Context, req *conversion.Request, conv *conversion.Conversion) (string, error) {
	root := merkle.NewNode(merkle.Bucket{
		Type:      merkle.BucketEquation,
		Equation:  req.Equation,
		Framework: req.Framework,
	}, nil)
	if _, err := s.storer.Put(ctx, root); err != nil {
		return "", fmt.Errorf("storing equation node: %w", err)
	}

	resp := conv.Response
	child := merkle.NewNode(merkle.Bucket{
		Type:        merkle.BucketConversion,
		Sympy:       resp.Sympy,
		Numpy:       resp.Numpy,
		Explanation: resp.Explanation,
		Complexity:  resp.Complexity,
		Source:      string(conv.Source),
		Model:       conv.Model,
		Flags:       conv.Flags,
	}, root)
	isNew, err := s.storer.Put(ctx, child)
	if err != nil {
		return "", fmt.Errorf("storing conversion node: %w", err)
	}

	s.logger.Debug("stored conversion in DAG",
		zap.String("equation_hash", textutil.Truncate(root.Hash, 16)),
		zap.String("hash", textutil.Truncate(child.Hash, 16)),
		zap.Bool("new", isNew),
	)

	return child.Hash, nil
}

// HistoryResponse contains the recorded path for a given node.
type HistoryResponse struct {
	// Nodes in chronological order (equation first, up to and including the requested node)
	Nodes []*merkle.Node `json:"nodes"`
	// HeadHash is the hash of the node that was requested
	HeadHash string `json:"head_hash"`
	// Depth is the number of nodes in the history
	Depth int `json:"depth"`
}

// handleListHistories returns every recorded history (one per leaf node).
func (s *Server) handleListHistories(c *fiber.Ctx) error {
	if s.storer == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Detail: "recording is disabled"})
	}
	ctx := c.UserContext()

	leaves, err := s.storer.Leaves(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Detail: "failed to get leaves"})
	}

	histories := make([]HistoryResponse, 0, len(leaves))
	for _, leaf := range leaves {
		history, err := s.buildHistory(ctx, leaf.Hash)
		if err != nil {
			s.logger.Warn("failed to build history for leaf", zap.String("hash", leaf.Hash), zap.Error(err))
			continue
		}
		histories = append(histories, *history)
	}

	return c.JSON(map[string]any{
		"count":     len(histories),
		"histories": histories,
	})
}

// handleGetHistory returns the path from the equation to the given node.
func (s *Server) handleGetHistory(c *fiber.Ctx) error {
	if s.storer == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Detail: "recording is disabled"})
	}

	hash := c.Params("hash")
	history, err := s.buildHistory(c.UserContext(), hash)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Detail: "node not found"})
	}

	return c.JSON(history)
}

// handleHistoryStats returns node counts for the tape.
func (s *Server) handleHistoryStats(c *fiber.Ctx) error {
	if s.storer == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Detail: "recording is disabled"})
	}
	ctx := c.UserContext()

	nodes, err := s.storer.List(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Detail: "failed to list nodes"})
	}

	roots, err := s.storer.Roots(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Detail: "failed to get roots"})
	}

	return c.JSON(map[string]any{
		"total_nodes": len(nodes),
		"equations":   len(roots),
		"conversions": len(nodes) - len(roots),
	})
}

// buildHistory constructs a HistoryResponse for the given node hash.
func (s *Server) buildHistory(ctx context.Context, hash string) (*HistoryResponse, error) {
	// Ancestry is newest first
	ancestry, err := s.storer.Ancestry(ctx, hash)
	if err != nil {
		return nil, err
	}

	nodes := make([]*merkle.Node, len(ancestry))
	for i, node := range ancestry {
		nodes[len(ancestry)-1-i] = node
	}

	return &HistoryResponse{
		Nodes:    nodes,
		HeadHash: hash,
		Depth:    len(nodes),
	}, nil
}
