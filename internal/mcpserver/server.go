// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the barcode tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/guia/internal/barcode"
)

const layoutURI = "guia://layout"

// Server wraps the MCP server with the barcode tools.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// FieldView is one decoded field.
type FieldView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Width int    `json:"width"`
	Value string `json:"value"`
}

// DecodeResult is returned by decode_barcode and edit_field.
type DecodeResult struct {
	Barcode string          `json:"barcode"`
	Line    string          `json:"line"`
	Fields  []FieldView     `json:"fields"`
	Summary barcode.Summary `json:"summary"`
}

// EditorView describes an editable field.
type EditorView struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Index int    `json:"index"`
	Width int    `json:"width"`
}

// New creates a new MCP server with all barcode tools registered.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{logger: logger}

	s.mcp = server.NewMCPServer(
		"Guia",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("decode_barcode",
		mcp.WithDescription("Decode a municipal collection barcode into its 10 fields and a readable summary. "+
			"Accepts the 55-character typed line or the 44-digit barcode."),
		mcp.WithString("barcode", mcp.Required(), mcp.Description("Typed line (55 characters) or barcode (44 digits)")),
	), s.decodeBarcode)

	s.mcp.AddTool(mcp.NewTool("edit_field",
		mcp.WithDescription("Change one editable field and return the re-encoded barcode. "+
			"Read the layout contract via the guia://layout resource for the editing rules."),
		mcp.WithString("barcode", mcp.Required(), mcp.Description("Typed line (55 characters) or barcode (44 digits)")),
		mcp.WithString("field", mcp.Required(), mcp.Description("One of value, due_date, guide_number, installment, fiscal_year, tribute")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value as a person would type it, e.g. 123,45 or 15/03/2024")),
	), s.editField)

	s.mcp.AddTool(mcp.NewTool("list_fields",
		mcp.WithDescription("List the editable fields with their command keys and widths."),
	), s.listFields)

	s.mcp.AddResource(
		mcp.NewResource(layoutURI, "Barcode Layout",
			mcp.WithResourceDescription("Field layout and editing rules of the municipal collection barcode."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLayoutResource,
	)

	return s
}

// ServeStdio serves on stdin/stdout until ctx is done or the input closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func view(f barcode.Fields) DecodeResult {
	fields := make([]FieldView, len(f))
	for i, v := range f {
		fields[i] = FieldView{Index: i, Name: barcode.Names[i], Width: barcode.Layout[i], Value: v}
	}
	return DecodeResult{
		Barcode: f.Encode(),
		Line:    f.Line(),
		Fields:  fields,
		Summary: barcode.Summarize(f),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) decodeBarcode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("barcode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := barcode.Parse(input)
	if err != nil {
		s.logger.Debug("mcp: decode rejected", slog.String("error", err.Error()))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(view(f))
}

func (s *Server) editField(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("barcode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := req.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := barcode.Parse(input)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, ok := barcode.EditorByName(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("field is not editable: %s", name)), nil
	}
	if err := f.Apply(e, value); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", e.Name, barcode.Reason(err))), nil
	}

	s.logger.Info("mcp: field updated", slog.String("field", e.Name), slog.String("value", f[e.Index]))
	return jsonResult(view(f))
}

func (s *Server) listFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := make([]EditorView, 0, len(barcode.Editors))
	for _, e := range barcode.Editors {
		out = append(out, EditorView{
			Name:  e.Name,
			Key:   string(e.Key),
			Index: e.Index,
			Width: barcode.Layout[e.Index],
		})
	}
	return jsonResult(out)
}

func (s *Server) readLayoutResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      layoutURI,
			MIMEType: "text/markdown",
			Text:     LayoutContract,
		},
	}, nil
}
