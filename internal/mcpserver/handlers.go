// Copyright (c) 2025 Neomantra Corp

package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/relvacode/iso8601"

	mbp "github.com/krakenquant/mbpreplay"
	"github.com/krakenquant/mbpreplay/loader"
)

// maxRowsPerCall caps how many snapshot/trade records a single tool call
// will marshal into its result, so a careless wide [since, until) can't
// blow up the response. The first maxRowsPerCall records of the range are
// kept and the rest dropped; the loaders read whole day files, so records
// past the cap within a single day are not reachable by narrowing the window.
const maxRowsPerCall = 5000

// parseDay accepts a plain YYYY-MM-DD date or any ISO8601 timestamp (an
// agent calling these tools may send either); iso8601.ParseString handles
// both, unlike a fixed time.Parse layout.
func parseDay(s string) (time.Time, error) {
	t, err := iso8601.ParseString(s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// resolveFeedcode resolves a feedcode string to its (Asset, Market) pair,
// the inverse of the lookup the loader constructors do internally, so tool
// handlers can fail fast with a clear message before touching disk.
func resolveFeedcode(feedcode string) (mbp.Asset, mbp.Market, error) {
	asset, err := mbp.FeedcodeToAsset(feedcode)
	if err != nil {
		return 0, 0, err
	}
	market, err := mbp.FeedcodeToMarket(feedcode)
	if err != nil {
		return 0, 0, err
	}
	return asset, market, nil
}

func (s *Server) listDaysHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feedcode, err := request.RequireString("feedcode")
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}
	if !mbp.IsKnownFeedcode(feedcode) {
		return mcp.NewToolResultErrorf("unknown feedcode %q", feedcode), nil
	}

	days := map[string]bool{}
	for _, kind := range []mbp.Kind{mbp.Kind_Snapshots, mbp.Kind_Trades} {
		dir := mbp.FeedcodeDir(s.Root, kind, feedcode)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return mcp.NewToolResultErrorf("reading %s: %s", dir, err.Error()), nil
		}
		for _, e := range entries {
			name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			if name != "" {
				days[name] = true
			}
		}
	}

	out := make([]string, 0, len(days))
	for d := range days {
		out = append(out, d)
	}
	sort.Strings(out)

	return mcp.NewToolResultText(strings.Join(out, "\n")), nil
}

func (s *Server) getSnapshotsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feedcode, err := request.RequireString("feedcode")
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}
	sinceStr, err := request.RequireString("since")
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}
	untilStr, err := request.RequireString("until")
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}

	asset, market, err := resolveFeedcode(feedcode)
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}
	since, err := parseDay(sinceStr)
	if err != nil {
		return mcp.NewToolResultErrorf("bad since: %s", err.Error()), nil
	}
	until, err := parseDay(untilStr)
	if err != nil {
		return mcp.NewToolResultErrorf("bad until: %s", err.Error()), nil
	}

	rl, err := loader.NewRawSnapshotLoader(s.Root, asset, market, since, until)
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}
	defer rl.Close()

	recs, err := rl.GetData(since, until)
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}

	truncated := len(recs) > maxRowsPerCall
	if truncated {
		recs = recs[:maxRowsPerCall]
	}

	var b strings.Builder
	for _, r := range recs {
		b.WriteString(formatSnapshotLine(r))
		b.WriteByte('\n')
	}
	if truncated {
		b.WriteString("... truncated, narrow [since, until) and call again\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getTradesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	feedcode, err := request.RequireString("feedcode")
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}
	sinceStr, err := request.RequireString("since")
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}
	untilStr, err := request.RequireString("until")
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}

	asset, market, err := resolveFeedcode(feedcode)
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}
	since, err := parseDay(sinceStr)
	if err != nil {
		return mcp.NewToolResultErrorf("bad since: %s", err.Error()), nil
	}
	until, err := parseDay(untilStr)
	if err != nil {
		return mcp.NewToolResultErrorf("bad until: %s", err.Error()), nil
	}

	rl, err := loader.NewRawTradeLoader(s.Root, asset, market, since, until)
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}
	defer rl.Close()

	recs, err := rl.GetData(since, until)
	if err != nil {
		return mcp.NewToolResultErrorf("%s", err.Error()), nil
	}

	truncated := len(recs) > maxRowsPerCall
	if truncated {
		recs = recs[:maxRowsPerCall]
	}

	var b strings.Builder
	for _, t := range recs {
		b.WriteString(formatTradeLine(t))
		b.WriteByte('\n')
	}
	if truncated {
		b.WriteString("... truncated, narrow [since, until) and call again\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func formatTradeLine(t mbp.TradeMessage) string {
	return time.Unix(int64(t.Time), 0).UTC().Format(time.RFC3339) +
		" " + t.Side.String() + " px=" + ftoa(float64(t.Price)) + " qty=" + ftoa(float64(t.Quantity))
}

func formatSnapshotLine(s mbp.SnapshotMessage) string {
	var b strings.Builder
	b.WriteString(time.Unix(int64(s.Time), 0).UTC().Format(time.RFC3339))
	b.WriteString(" bids=")
	writeLevels(&b, s.Bids)
	b.WriteString(" asks=")
	writeLevels(&b, s.Asks)
	return b.String()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func writeLevels(b *strings.Builder, levels []mbp.PriceLevel) {
	b.WriteByte('[')
	for i, lvl := range levels {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(ftoa(lvl.Price))
		b.WriteByte('@')
		b.WriteString(ftoa(lvl.Qty))
	}
	b.WriteByte(']')
}
