// Copyright (c) 2024 Neomantra Corp
//
// Raw Data Loader (C8) for the trade stream, mirroring raw_snapshots.go.
// Grounded on raw_trades_data_loader.py (see DESIGN.md).
//

package loader

import (
	"io"
	"os"
	"time"

	"github.com/krakenquant/mbpreplay"
)

// RawTradeLoader iterates persisted trade files in date order, yielding
// each record exactly once.
type RawTradeLoader struct {
	root   string
	asset  mbp.Asset
	market mbp.Market

	cursor dayCursor
	reader *mbp.TradeReader
}

// NewRawTradeLoader validates and constructs a loader for [since, until)
// over (root, asset, market). See §4.8 for failure modes.
func NewRawTradeLoader(root string, asset mbp.Asset, market mbp.Market, since, until time.Time) (*RawTradeLoader, error) {
	cursor, err := newDayCursor(root, mbp.Kind_Trades, asset, market, since, until)
	if err != nil {
		return nil, err
	}
	return &RawTradeLoader{root: root, asset: asset, market: market, cursor: cursor}, nil
}

func (l *RawTradeLoader) feedcode() (string, error) {
	return mbp.AssetToFeedcode(l.asset, l.market)
}

// Next returns the next record, or (nil, nil) once `until` is reached,
// exactly like RawSnapshotLoader.Next.
func (l *RawTradeLoader) Next() (*mbp.TradeMessage, error) {
	for {
		if l.cursor.done() {
			return nil, nil
		}
		if l.reader == nil {
			feedcode, err := l.feedcode()
			if err != nil {
				return nil, err
			}
			r, err := mbp.NewTradeReader(l.cursor.path(), feedcode, l.market)
			if err != nil {
				if os.IsNotExist(err) {
					return nil, nil
				}
				return nil, err
			}
			l.reader = r
		}
		rec, err := l.reader.Next()
		if err == io.EOF {
			l.reader.Close()
			l.reader = nil
			l.cursor.advanceDay()
			continue
		}
		if err != nil {
			return nil, err
		}
		return &rec, nil
	}
}

// Close releases any open file handle.
func (l *RawTradeLoader) Close() error {
	if l.reader != nil {
		return l.reader.Close()
	}
	return nil
}

// GetData returns all records across [since, until) as a slice; a gap is
// fatal (ErrMissingFile), per §4.8.
func (l *RawTradeLoader) GetData(since, until time.Time) ([]mbp.TradeMessage, error) {
	cursor, err := newDayCursor(l.root, mbp.Kind_Trades, l.asset, l.market, since, until)
	if err != nil {
		return nil, err
	}
	feedcode, err := l.feedcode()
	if err != nil {
		return nil, err
	}
	days := int(until.Sub(since).Hours() / 24)
	if days < 1 {
		days = 1
	}
	out := make([]mbp.TradeMessage, 0, days*86400)

	var reader *mbp.TradeReader
	defer func() {
		if reader != nil {
			reader.Close()
		}
	}()

	for !cursor.done() {
		if reader == nil {
			r, err := mbp.NewTradeReader(cursor.path(), feedcode, l.market)
			if err != nil {
				return out, mbp.ErrMissingFile
			}
			reader = r
		}
		rec, err := reader.Next()
		if err == io.EOF {
			reader.Close()
			reader = nil
			cursor.advanceDay()
			continue
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}
