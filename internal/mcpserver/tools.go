// Copyright (c) 2025 Neomantra Corp

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcp_server "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers list_days, get_snapshots, and get_trades against
// mcpServer. All three are read-only and never touch the network: they
// serve whatever has already been downloaded by the Updates Builder.
func (s *Server) RegisterTools(mcpServer *mcp_server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("list_days",
			mcp.WithDescription("Lists the calendar days for which a persisted snapshot or trade file exists for a feedcode."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("feedcode",
				mcp.Required(),
				mcp.Description("Feedcode to list, e.g. XXBTZUSD or PF_XBTUSD"),
			),
		),
		s.listDaysHandler,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_snapshots",
			mcp.WithDescription("Returns the raw per-update order book snapshots for a feedcode over [since, until), read as whole days. Results are truncated to the first 5000 records of the range; records past that within one day are not returned."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("feedcode", mcp.Required(), mcp.Description("Feedcode, e.g. XXBTZUSD")),
			mcp.WithString("since", mcp.Required(), mcp.Description("Start date, inclusive, as YYYY-MM-DD")),
			mcp.WithString("until", mcp.Required(), mcp.Description("End date, exclusive, as YYYY-MM-DD")),
		),
		s.getSnapshotsHandler,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_trades",
			mcp.WithDescription("Returns raw trade prints for a feedcode over [since, until), read as whole days. Results are truncated to the first 5000 records of the range; records past that within one day are not returned."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithString("feedcode", mcp.Required(), mcp.Description("Feedcode, e.g. XXBTZUSD")),
			mcp.WithString("since", mcp.Required(), mcp.Description("Start date, inclusive, as YYYY-MM-DD")),
			mcp.WithString("until", mcp.Required(), mcp.Description("End date, exclusive, as YYYY-MM-DD")),
		),
		s.getTradesHandler,
	)
}
