// Copyright (c) 2024 Neomantra Corp
//
// Tick Resampler (C9) for the trade stream. Grounded on §4.9's
// collect-all-at-current-second algorithm (see DESIGN.md).
//

package loader

import (
	"time"

	"github.com/krakenquant/mbpreplay"
)

// TickTradeLoader re-emits, once per wall-clock second over
// [since, until), the (possibly empty) list of raw trades whose time
// equals that second.
type TickTradeLoader struct {
	raw *RawTradeLoader

	second  int64
	until   int64
	pending *mbp.TradeMessage
	done    bool
}

// NewTickTradeLoader wraps a raw trade loader for resampling.
func NewTickTradeLoader(root string, asset mbp.Asset, market mbp.Market, since, until time.Time) (*TickTradeLoader, error) {
	raw, err := NewRawTradeLoader(root, asset, market, since, until)
	if err != nil {
		return nil, err
	}
	return &TickTradeLoader{
		raw:    raw,
		second: since.Unix(),
		until:  until.Unix(),
	}, nil
}

// Next returns the trades for the current second (nil slice if none), or
// (nil, nil, false) once `until` is reached. Returns ErrOutOfOrder if a raw
// record's time is strictly less than the current second.
func (l *TickTradeLoader) Next() ([]mbp.TradeMessage, bool, error) {
	if l.done || l.second >= l.until {
		return nil, false, nil
	}

	var out []mbp.TradeMessage
	for {
		if l.pending == nil {
			rec, err := l.raw.Next()
			if err != nil {
				return nil, false, err
			}
			l.pending = rec
		}
		if l.pending == nil {
			break
		}
		t := int64(l.pending.Time)
		if t < l.second {
			return nil, false, mbp.ErrOutOfOrder
		}
		if t > l.second {
			break
		}
		out = append(out, *l.pending)
		l.pending = nil
	}

	l.second++
	if l.second >= l.until {
		l.done = true
	}
	return out, true, nil
}

// Close releases the underlying raw loader's resources.
func (l *TickTradeLoader) Close() error {
	return l.raw.Close()
}
