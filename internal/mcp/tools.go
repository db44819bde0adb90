package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"monoscope/internal/catalog"
	"monoscope/internal/index"
	"monoscope/internal/query"
	"monoscope/internal/report"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type toolHandler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

func packageNameArg(desc string) mcp.ToolOption {
	return mcp.WithString("package_name", mcp.Required(), mcp.Description(desc))
}

func kindNames() []string {
	out := make([]string, 0, len(catalog.Kinds))
	for _, k := range catalog.Kinds {
		out = append(out, string(k))
	}
	return out
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		s.tool(mcp.NewTool("get_package",
			mcp.WithDescription("Get the full description of a package: kind, namespace, models, traits, UI components and dependencies"),
			packageNameArg("Package name, e.g. addresses"),
		), s.handleGetPackage),
		s.tool(mcp.NewTool("list_packages",
			mcp.WithDescription("List packages, optionally filtered by category and kind"),
			mcp.WithString("category", mcp.Description("Category directory, e.g. crud or blade")),
			mcp.WithString("type", mcp.Description("Package kind"), mcp.Enum(kindNames()...)),
		), s.handleListPackages),
		s.tool(mcp.NewTool("search_packages",
			mcp.WithDescription("Search package names, models, traits and UI components (case-insensitive substring)"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		), s.handleSearch),
		s.tool(mcp.NewTool("find_trait_usages",
			mcp.WithDescription("Find model files that use a trait, outside the package declaring it"),
			mcp.WithString("trait_name", mcp.Required(), mcp.Description("Trait name, with or without the Has prefix")),
		), s.handleTraitUsages),
		s.tool(mcp.NewTool("get_model_relationships",
			mcp.WithDescription("Extract belongsTo, hasMany, morphTo and morphMany associations of a model"),
			mcp.WithString("model_name", mcp.Required(), mcp.Description("Model class name, e.g. Customer")),
		), s.handleRelationships),
		s.tool(mcp.NewTool("audit_package",
			mcp.WithDescription("Score a CRUD package against the API, exports, imports and contracts standard"),
			packageNameArg("Package name to audit"),
		), s.handleAudit),
		s.tool(mcp.NewTool("compare_packages",
			mcp.WithDescription("Compare two packages for consistency and identify differences"),
			mcp.WithString("package1", mcp.Required(), mcp.Description("First package name")),
			mcp.WithString("package2", mcp.Required(), mcp.Description("Second package name")),
		), s.handleCompare),
		s.tool(mcp.NewTool("package_health",
			mcp.WithDescription("Health check combining structure, documentation, audit and dependency checks"),
			packageNameArg("Package name for health check"),
		), s.handleHealth),
		s.tool(mcp.NewTool("get_test_coverage",
			mcp.WithDescription("Inspect a package's tests directory and which models have tests"),
			packageNameArg("Package name to check test coverage for"),
		), s.handleCoverage),
		{
			Tool: mcp.NewTool("reload_index",
				mcp.WithDescription("Discard the package index and rebuild it from disk"),
			),
			Handler: s.handleReload,
		},
	}
}

// tool wraps a handler with call logging and lazy index loading.
func (s *Server) tool(t mcp.Tool, h toolHandler) server.ServerTool {
	return server.ServerTool{
		Tool: t,
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			s.logger.LogToolCall(t.Name, req.GetArguments())
			if err := s.ensureLoaded(); err != nil {
				s.logger.Error("Index load failed", "tool", t.Name, "error", err)
				return mcp.NewToolResultError("Failed to load package index: " + err.Error()), nil
			}
			return h(ctx, req)
		},
	}
}

func textResult(s string) *mcp.CallToolResult {
	return mcp.NewToolResultText(strings.TrimRight(s, "\n"))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// lookupFailure turns query errors into results. Unknown identifiers are
// ordinary text; anything else is a tool error.
func lookupFailure(err error, name string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, index.ErrPackageNotFound):
		return mcp.NewToolResultText(report.NotFound("Package", name))
	case errors.Is(err, query.ErrModelNotFound):
		return mcp.NewToolResultText(report.NotFound("Model", name))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) handleGetPackage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("package_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.engine.Lookup(name)
	if err != nil {
		return lookupFailure(err, name), nil
	}
	return jsonResult(p)
}

func (s *Server) handleListPackages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := query.ListFilter{
		Category: req.GetString("category", ""),
		Kind:     catalog.Kind(req.GetString("type", "")),
	}
	if f.Kind != "" && !f.Kind.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("unknown package type %q", f.Kind)), nil
	}
	return jsonResult(s.engine.List(f))
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches, err := s.engine.Search(q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(s.render.Matches(q, matches)), nil
}

func (s *Server) handleTraitUsages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	trait, err := req.RequireString("trait_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	usages, err := s.engine.FindTraitUsages(trait)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(s.render.TraitUsages(trait, usages)), nil
}

func (s *Server) handleRelationships(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := req.RequireString("model_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rels, err := s.engine.Relationships(model)
	if err != nil {
		return lookupFailure(err, model), nil
	}
	return jsonResult(rels)
}

func (s *Server) handleAudit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("package_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.engine.Audit(name)
	if err != nil {
		return lookupFailure(err, name), nil
	}
	return textResult(s.render.Audit(a)), nil
}

func (s *Server) handleCompare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := req.RequireString("package1")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := req.RequireString("package2")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// report the first unknown name
	for _, name := range []string{a, b} {
		if _, err := s.engine.Lookup(name); err != nil {
			return lookupFailure(err, name), nil
		}
	}
	c, err := s.engine.Compare(a, b)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(s.render.Compare(c)), nil
}

func (s *Server) handleHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("package_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	h, err := s.engine.Health(name)
	if err != nil {
		return lookupFailure(err, name), nil
	}
	return textResult(s.render.Health(h)), nil
}

func (s *Server) handleCoverage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("package_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	c, err := s.engine.Coverage(name)
	if err != nil {
		return lookupFailure(err, name), nil
	}
	return textResult(s.render.Coverage(c)), nil
}

// handleReload bypasses the lazy-load wrapper: it always rebuilds.
func (s *Server) handleReload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.LogToolCall("reload_index", req.GetArguments())
	if err := s.index.Reload(); err != nil {
		s.logger.Error("Index reload failed", "error", err)
		return mcp.NewToolResultError("Failed to reload package index: " + err.Error()), nil
	}
	s.publishResources()
	return textResult(s.render.Reloaded(s.index.Snapshot())), nil
}
