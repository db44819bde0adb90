package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"monoscope/internal/config"
	"monoscope/internal/index"
	"monoscope/internal/logging"
	"monoscope/internal/query"
	"monoscope/internal/report"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "monoscope"
	ServerVersion = "0.1.0"
)

const instructions = `monoscope indexes a monorepo of Composer packages grouped by category.
Use list_packages or search_packages to find a package, then get_package,
audit_package, package_health or compare_packages for details. The index is
built once; call reload_index after the repository changes.`

// Server wires the index and query engine into an mcp-go server.
type Server struct {
	config    config.Config
	index     *index.Index
	engine    *query.Engine
	render    *report.Renderer
	logger    *logging.AppLogger
	mcpServer *server.MCPServer

	mu        sync.Mutex
	published map[string]bool
}

// NewServer registers every tool and the package resource template.
func NewServer(cfg config.Config, ix *index.Index, engine *query.Engine, logger *logging.AppLogger) *Server {
	s := &Server{
		config:    cfg,
		index:     ix,
		engine:    engine,
		render:    report.Plain(),
		logger:    logger,
		published: map[string]bool{},
	}

	s.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	s.mcpServer.AddTools(s.tools()...)
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			packageURITemplate,
			"Package description",
			mcp.WithTemplateDescription("Full description of one indexed package"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.readPackage,
	)
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start loads the index and serves stdio until EOF. A load failure is logged
// and retried on the first request.
func (s *Server) Start() error {
	s.logger.Info("Starting MCP server", "root", s.config.Root())

	start := time.Now()
	if err := s.ensureLoaded(); err != nil {
		s.logger.Warn("Initial index load failed", "error", err)
	} else {
		s.logger.LogPerformance("initial index load", start)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// ensureLoaded populates the index if needed and publishes package resources.
func (s *Server) ensureLoaded() error {
	if err := s.index.EnsureLoaded(); err != nil {
		return err
	}
	s.publishResources()
	return nil
}

// publishResources adds a concrete resource for every package not yet
// published. Resources of packages dropped by a reload stay registered and
// resolve to an error.
func (s *Server) publishResources() {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, p := range s.index.All() {
		uri := packageURI(p.Category, p.Name)
		if s.published[uri] {
			continue
		}
		s.mcpServer.AddResource(
			mcp.NewResource(
				uri,
				p.Category+"/"+p.Name,
				mcp.WithResourceDescription(fmt.Sprintf("%s package with %d models", p.Kind, len(p.Models))),
				mcp.WithMIMEType("application/json"),
			),
			s.readPackage,
		)
		s.published[uri] = true
		added++
	}
	if added > 0 {
		s.logger.Debug("Published package resources", "added", added, "total", len(s.published))
	}
}

// readPackage serves package://<category>/<name>.
func (s *Server) readPackage(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	category, name, err := parsePackageURI(uri)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLoaded(); err != nil {
		return nil, fmt.Errorf("failed to load package index: %w", err)
	}

	p, err := s.engine.Lookup(name)
	if err != nil || p.Category != category {
		return nil, fmt.Errorf("package not found: %s/%s", category, name)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode package %s: %w", name, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
