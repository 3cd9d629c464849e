// Copyright (c) 2025 Neomantra Corp
//
// MCP tool server exposing the raw replay loaders (C8) as read-only tools
// for downstream feature-generator agents. Grounded on
// internal/mcp_data/server.go's Server/RegisterDataTools split (see
// DESIGN.md), re-targeted at the Raw loaders instead of a
// fetch+DuckDB cache (there is no billed remote fetch in THE CORE's
// replay path: data is either on disk or it is not).
//

package mcpserver

import "log/slog"

// Server holds the state MCP tool handlers need: the on-disk replay root
// and a logger, matching dbn-go's mcp_meta.Server fields minus the
// billing-specific ones (ApiKey, MaxCost) this domain has no use for.
type Server struct {
	Root   string
	Logger *slog.Logger
}

// NewServer constructs a Server rooted at root.
func NewServer(root string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Root: root, Logger: logger}
}
