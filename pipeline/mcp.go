package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lihtc-analytics/qapflow/mcpkit"
	"github.com/lihtc-analytics/qapflow/pdfprep"
)

// RegisterMCP registers the qapflow tools on an MCP server.
func (p *Pipeline) RegisterMCP(srv *mcp.Server) {
	p.registerPreprocessTool(srv)
	p.registerRunTool(srv)
	p.registerDefinitionsTool(srv)
}

// --- qap_preprocess ---

type preprocessReq struct {
	Path       string `json:"path"`
	ForceSplit bool   `json:"force_split"`
}

func (p *Pipeline) registerPreprocessTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "qap_preprocess",
		Description: "Count pages in a QAP PDF and split it into sections when it exceeds the page threshold.",
		InputSchema: mcpkit.InputSchema(map[string]any{
			"path":        map[string]any{"type": "string", "description": "PDF file path"},
			"force_split": map[string]any{"type": "boolean", "description": "Split even when under the threshold"},
		}, []string{"path"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*preprocessReq)
		res := p.prep.PreprocessSingle(r.Path, r.ForceSplit)
		if res.Status == pdfprep.StatusError {
			return nil, fmt.Errorf("preprocess %s: %s", r.Path, res.Error)
		}
		return res, nil
	}

	decode := func(req *mcp.CallToolRequest) (*mcpkit.DecodeResult, error) {
		var r preprocessReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &mcpkit.DecodeResult{Request: &r}, nil
	}

	mcpkit.RegisterTool(srv, tool, endpoint, decode)
}

// --- qap_run ---

func (p *Pipeline) registerRunTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "qap_run",
		Description: "Run the full QAP pipeline over the configured document tree and return the aggregate result.",
		InputSchema: mcpkit.InputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return p.Run(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (*mcpkit.DecodeResult, error) {
		return &mcpkit.DecodeResult{Request: nil}, nil
	}

	mcpkit.RegisterTool(srv, tool, endpoint, decode)
}

// --- qap_definitions_lookup ---

type lookupReq struct {
	StateCode string `json:"state_code"`
	Term      string `json:"term"`
}

// registerDefinitionsTool looks terms up in a jurisdiction's most
// recent definitions database on disk.
func (p *Pipeline) registerDefinitionsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "qap_definitions_lookup",
		Description: "Look up extracted legal definitions for a jurisdiction, optionally filtered by term substring.",
		InputSchema: mcpkit.InputSchema(map[string]any{
			"state_code": map[string]any{"type": "string", "description": "Two-letter jurisdiction code"},
			"term":       map[string]any{"type": "string", "description": "Term substring filter (optional)"},
		}, []string{"state_code"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*lookupReq)
		db, err := p.LoadDatabase(r.StateCode)
		if err != nil {
			return nil, err
		}
		if r.Term == "" {
			return db.Definitions, nil
		}
		needle := strings.ToLower(r.Term)
		var out []AnnotatedDefinition
		for _, d := range db.Definitions {
			if strings.Contains(strings.ToLower(d.Term), needle) {
				out = append(out, d)
			}
		}
		return out, nil
	}

	decode := func(req *mcp.CallToolRequest) (*mcpkit.DecodeResult, error) {
		var r lookupReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.StateCode == "" {
			return nil, fmt.Errorf("state_code is required")
		}
		return &mcpkit.DecodeResult{Request: &r}, nil
	}

	mcpkit.RegisterTool(srv, tool, endpoint, decode)
}
