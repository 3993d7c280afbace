package conversion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/math2python/pkg/llm"
	"github.com/papercomputeco/math2python/pkg/textutil"
)

// Completer sends a chat completion upstream. *llm.Client implements it.
type Completer interface {
	Complete(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

// Config is the conversion service configuration.
type Config struct {
	// Model identifier sent upstream (e.g., "qwen/qwen-2.5-32b-instruct")
	Model string

	// Temperature is optional; nil leaves the provider default.
	Temperature *float64
}

// Service converts equations with a single upstream call per request. It
// holds no per-request state and is safe for concurrent use.
type Service struct {
	config    Config
	completer Completer
	demos     DemoSelector
	logger    *zap.Logger
}

// NewService creates a new Service. A nil selector defaults to KeywordSelector.
func NewService(config Config, completer Completer, demos DemoSelector, logger *zap.Logger) *Service {
	if demos == nil {
		demos = KeywordSelector{}
	}
	return &Service{
		config:    config,
		completer: completer,
		demos:     demos,
		logger:    logger,
	}
}

// Convert runs one conversion. It never fails: upstream, parse and
// validation errors are replaced by a demonstration or error response and
// reported in Conversion.Err.
func (s *Service) Convert(ctx context.Context, req *Request) *Conversion {
	startTime := time.Now()
	s.logger.Info("processing equation",
		zap.String("equation", textutil.Truncate(req.Equation, 100)),
		zap.String("framework", req.Framework),
		zap.Bool("has_image", req.ImageData != ""),
	)

	resp, err := s.translate(ctx, req.Equation)
	if err != nil {
		return s.substitute(req.Equation, err)
	}

	conv := &Conversion{
		Response: resp,
		Source:   SourceLLM,
		Model:    s.config.Model,
		Flags:    scanResponse(resp),
	}

	if len(conv.Flags) > 0 {
		s.logger.Warn("generated code has potentially unsafe imports", zap.Strings("flags", conv.Flags))
	} else {
		s.logger.Debug("generated code structure seems safe")
	}

	s.logger.Info("equation converted",
		zap.String("model", s.config.Model),
		zap.Duration("duration", time.Since(startTime)),
	)

	return conv
}

// translate performs the upstream call and decodes the reply.
func (s *Service) translate(ctx context.Context, equation string) (*Response, error) {
	chatReq := &llm.ChatRequest{
		Model: s.config.Model,
		Messages: []llm.Message{
			llm.SystemMessage(SystemPrompt),
			llm.UserMessage(UserPrompt(equation)),
		},
		ResponseFormat: llm.JSONObject(),
		Temperature:    s.config.Temperature,
	}

	chatResp, err := s.completer.Complete(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	content := chatResp.Content()
	s.logger.Debug("received completion",
		zap.String("model", chatResp.Model),
		zap.String("content_preview", textutil.Truncate(content, 100)),
	)

	return parseReply(content)
}

// substitute maps a failed conversion to a demonstration or error response.
func (s *Service) substitute(equation string, err error) *Conversion {
	s.logger.Error("error processing equation", zap.Error(err))

	if IsDemoEligible(err) {
		s.logger.Info("upstream unavailable, returning demo response")
		return &Conversion{
			Response: s.demos.Select(equation),
			Source:   SourceDemo,
			Model:    s.config.Model,
			Err:      err,
		}
	}

	return &Conversion{
		Response: ErrorResponse(err),
		Source:   SourceError,
		Model:    s.config.Model,
		Err:      err,
	}
}
