// Package host serves named procedures over HTTP. It is the receiving end of
// httpbridge: every POST /invoke/:procedure is dispatched to the handler
// registered for that procedure on a Router.
//
// The host carries no chat logic of its own. Embedders register handlers;
// package memhost registers an in-memory set for local development, served
// by cmd/chathost.
package host

import (
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbridge/pkg/bridge"
)

// Error codes carried in bridge.ErrorResponse.Code.
const (
	CodeUnknownProcedure = "unknown_procedure"
	CodeInvalidArguments = "invalid_arguments"
	CodeBackend          = "backend"
	CodeSerialization    = "serialization"
)

// Server is an HTTP host for procedures registered on a Router.
type Server struct {
	config Config
	router *Router
	logger *zap.Logger
	app    *fiber.App
}

// New creates a new Server.
func New(config Config, router *Router, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		BodyLimit:             config.BodyLimit,
	})

	s := &Server{
		config: config,
		router: router,
		logger: logger,
		app:    app,
	}

	app.Post("/invoke/:procedure", s.handleInvoke)
	app.Get("/health", s.handleHealth)

	return s
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting host server",
		zap.String("listen", s.config.ListenAddr),
		zap.Strings("procedures", s.router.Procedures()),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the server on an existing listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting host server",
		zap.String("listen", listener.Addr().String()),
		zap.Strings("procedures", s.router.Procedures()),
	)

	return s.app.Listener(listener)
}

// Shutdown stops the server, waiting for in-flight invocations.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(map[string]any{
		"status":     "ok",
		"procedures": s.router.Procedures(),
	})
}

// handleInvoke dispatches one invocation to its handler and writes the
// handler's result as the response body.
func (s *Server) handleInvoke(c *fiber.Ctx) error {
	startTime := time.Now()
	procedure := c.Params("procedure")

	handler, ok := s.router.Lookup(procedure)
	if !ok {
		s.logger.Warn("unknown procedure", zap.String("procedure", procedure))
		return c.Status(fiber.StatusNotFound).JSON(bridge.ErrorResponse{
			Error: "unknown procedure: " + procedure,
			Code:  CodeUnknownProcedure,
		})
	}

	// The request body is only valid for the lifetime of the handler.
	args := json.RawMessage("{}")
	if body := c.Body(); len(body) > 0 {
		args = append(json.RawMessage(nil), body...)
	}
	if !json.Valid(args) {
		return c.Status(fiber.StatusBadRequest).JSON(bridge.ErrorResponse{
			Error: "arguments are not valid JSON",
			Code:  CodeInvalidArguments,
		})
	}

	s.logger.Debug("received invocation",
		zap.String("procedure", procedure),
		zap.String("request_id", c.Get(RequestIDHeader)),
		zap.Int("body_size", len(args)),
	)

	result, err := handler(c.UserContext(), args)
	if err != nil {
		return s.writeError(c, procedure, err)
	}

	body, err := encodeResult(result)
	if err != nil {
		s.logger.Error("failed to encode result", zap.String("procedure", procedure), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(bridge.ErrorResponse{
			Error: "could not encode result",
			Code:  CodeSerialization,
		})
	}

	s.logger.Debug("invocation completed",
		zap.String("procedure", procedure),
		zap.Duration("duration", time.Since(startTime)),
	)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func (s *Server) writeError(c *fiber.Ctx, procedure string, err error) error {
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return c.Status(fiber.StatusBadRequest).JSON(bridge.ErrorResponse{
			Error: argErr.Error(),
			Code:  CodeInvalidArguments,
		})
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		code := statusErr.Code
		if code == "" {
			code = CodeBackend
		}
		status := statusErr.Status
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(bridge.ErrorResponse{
			Error: statusErr.Message,
			Code:  code,
		})
	}

	s.logger.Error("procedure failed", zap.String("procedure", procedure), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(bridge.ErrorResponse{
		Error: err.Error(),
		Code:  CodeBackend,
	})
}

// encodeResult marshals a handler result. Raw JSON results are sent as-is.
func encodeResult(result any) ([]byte, error) {
	switch v := result.(type) {
	case json.RawMessage:
		if len(v) == 0 {
			return []byte("null"), nil
		}
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// RequestIDHeader carries the caller's request identifier.
const RequestIDHeader = "X-Request-Id"
