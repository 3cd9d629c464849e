// Copyright (c) 2024 Neomantra Corp
//
// Raw Data Loaders (C8): shared day-cursor plumbing for the snapshot/trade
// raw iterators. Grounded on the historical data_loaders' base_data_loader
// construction checks (see DESIGN.md).
//

package loader

import (
	"os"
	"time"

	"github.com/krakenquant/mbpreplay"
)

// dayCursor walks a [since, until) date range one calendar day at a time,
// resolving each day to its on-disk file path for a given feedcode/kind.
type dayCursor struct {
	root     string
	kind     mbp.Kind
	feedcode string
	since    time.Time
	until    time.Time
	cur      time.Time
}

// newDayCursor validates construction parameters per §4.8: InvalidSymbol if
// the mapping rejects (asset, market); EmptyRange if since >= until;
// MissingDirectory if the asset directory does not exist; MissingFile if
// the first day's file is absent.
func newDayCursor(root string, kind mbp.Kind, asset mbp.Asset, market mbp.Market, since, until time.Time) (dayCursor, error) {
	feedcode, err := mbp.AssetToFeedcode(asset, market)
	if err != nil {
		return dayCursor{}, err
	}
	if !since.Before(until) {
		return dayCursor{}, mbp.ErrEmptyRange
	}
	dir := mbp.FeedcodeDir(root, kind, feedcode)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return dayCursor{}, mbp.ErrMissingDirectory
	}

	c := dayCursor{
		root:     root,
		kind:     kind,
		feedcode: feedcode,
		since:    since,
		until:    until,
		cur:      since,
	}
	if _, err := os.Stat(c.path()); err != nil {
		return dayCursor{}, mbp.ErrMissingFile
	}
	return c, nil
}

func (c *dayCursor) path() string {
	return mbp.DayFilePath(c.root, c.kind, c.feedcode, mbp.YMDFileName(c.cur))
}

func (c *dayCursor) done() bool {
	return !c.cur.Before(c.until)
}

func (c *dayCursor) advanceDay() {
	c.cur = c.cur.AddDate(0, 0, 1)
}
