// Package server exposes doctools tools over the Model Context Protocol.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	doctools "github.com/alnah/go-doctools"
	doclog "github.com/alnah/go-doctools/internal/log"
)

// keepAlive is the ping interval for idle sessions.
const keepAlive = 30 * time.Second

// ErrNoCall is returned when a tool without a Call function is registered.
var ErrNoCall = errors.New("tool has no call function")

// Server adapts doctools tools to an MCP server.
type Server struct {
	mcp    *mcp.Server
	logger *slog.Logger
	tools  []string
}

// Compile-time interface check.
var _ doctools.Registrar = (*Server)(nil)

// New creates an MCP server announcing itself as name/version.
func New(name, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = doclog.Discard()
	}

	impl := &mcp.Implementation{
		Name:    name,
		Version: version,
	}
	opts := &mcp.ServerOptions{
		KeepAlive: keepAlive,
	}

	return &Server{
		mcp:    mcp.NewServer(impl, opts),
		logger: logger,
	}
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Tools returns the names of registered tools in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// RegisterTool implements doctools.Registrar.
func (s *Server) RegisterTool(t doctools.Tool) error {
	if t.Call == nil {
		return fmt.Errorf("%w: %s", ErrNoCall, t.Name)
	}

	schema, err := schemaFor(t.Params)
	if err != nil {
		return fmt.Errorf("building schema for %s: %w", t.Name, err)
	}

	tool := &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,

		InputSchema: schema,
	}

	s.mcp.AddTool(tool, s.handler(t))
	s.tools = append(s.tools, t.Name)
	return nil
}

// handler wraps a tool call with argument decoding and call logging.
func (s *Server) handler(t doctools.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := s.logger.With("tool", t.Name, "call_id", newCallID())
		start := time.Now()

		var raw []byte
		if req != nil && req.Params != nil {
			// Marshalling works whether the SDK hands us raw JSON or a decoded value.
			data, err := json.Marshal(req.Params.Arguments)
			if err != nil {
				return nil, fmt.Errorf("encoding arguments: %w", err)
			}
			raw = data
		}

		args, err := doctools.DecodeArguments(raw)
		if err != nil {
			logger.Warn("rejected tool call", "error", err)
			return textResult(fmt.Sprintf("invalid arguments for %s: %v", t.Name, err)), nil
		}

		logger.Debug("tool call started")
		out := t.Call(ctx, args)

		result, err := toResult(out)
		if err != nil {
			logger.Error("encoding tool output", "error", err)
			return nil, err
		}

		logger.Info("tool call finished", "duration", time.Since(start))
		return result, nil
	}
}

// RunStdio serves the tools on stdin/stdout until ctx is done or the peer
// disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("serving MCP on stdio", "tools", len(s.tools))
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// toResult converts a tool output to an MCP result.
func toResult(out doctools.Output) (*mcp.CallToolResult, error) {
	switch out.Kind {
	case doctools.OutputText:
		return textResult(out.Text), nil

	case doctools.OutputImage:
		if out.Image == nil {
			return nil, errors.New("image output without image")
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.ImageContent{
					Data:     out.Image.Data,
					MIMEType: out.Image.MIMEType,
				},
			},
		}, nil

	case doctools.OutputData:
		data, err := json.Marshal(out.Data)
		if err != nil {
			return nil, fmt.Errorf("encoding structured output: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: string(data),
				},
			},
			StructuredContent: json.RawMessage(data),
		}, nil

	default:
		return nil, fmt.Errorf("unknown output kind %d", out.Kind)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: text,
			},
		},
	}
}

// schemaFor builds the JSON schema of a tool's input object.
func schemaFor(params []doctools.Param) (*jsonschema.Schema, error) {
	properties := make(map[string]any, len(params))
	required := []string{}

	for _, p := range params {
		prop := map[string]any{
			"type": string(p.Type),
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	schema := new(jsonschema.Schema)
	if err := schema.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return schema, nil
}

// newCallID returns a time-ordered id for correlating a call's log lines.
func newCallID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
