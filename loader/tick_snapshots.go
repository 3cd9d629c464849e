// Copyright (c) 2024 Neomantra Corp
//
// Tick Resampler (C9) for the snapshot stream. Grounded on §4.9's
// cur_snapshot lookahead algorithm (see DESIGN.md).
//

package loader

import (
	"time"

	"github.com/krakenquant/mbpreplay"
)

// TickSnapshotLoader re-emits one SnapshotMessage per monotonically
// increasing wall-clock second over [since, until), holding the current
// snapshot steady across seconds with no raw update.
type TickSnapshotLoader struct {
	raw      *RawSnapshotLoader
	feedcode string
	market   mbp.Market

	cur     mbp.SnapshotMessage
	second  int64
	until   int64
	pending *mbp.SnapshotMessage
	done    bool
}

// NewTickSnapshotLoader wraps a raw snapshot loader, starting `cur` as an
// empty book stamped at `since` per §4.9.
func NewTickSnapshotLoader(root string, asset mbp.Asset, market mbp.Market, since, until time.Time) (*TickSnapshotLoader, error) {
	raw, err := NewRawSnapshotLoader(root, asset, market, since, until)
	if err != nil {
		return nil, err
	}
	feedcode, err := mbp.AssetToFeedcode(asset, market)
	if err != nil {
		return nil, err
	}
	return &TickSnapshotLoader{
		raw:      raw,
		feedcode: feedcode,
		market:   market,
		cur:      mbp.NewSnapshotMessage(uint64(since.Unix()), feedcode, market, nil, nil),
		second:   since.Unix(),
		until:    until.Unix(),
	}, nil
}

// Next returns the resampled snapshot for the current second, or (nil, nil)
// once `until` is reached. Returns ErrOutOfOrder if a raw record's time is
// strictly less than the current second.
func (l *TickSnapshotLoader) Next() (*mbp.SnapshotMessage, error) {
	if l.done || l.second >= l.until {
		return nil, nil
	}

	if l.pending == nil {
		rec, err := l.raw.Next()
		if err != nil {
			return nil, err
		}
		l.pending = rec
	}

	if l.pending == nil {
		out := l.cur
		out.Time = uint64(l.second)
		l.second++
		if l.second >= l.until {
			l.done = true
		}
		return &out, nil
	}

	t := int64(l.pending.Time)
	if t < l.second {
		return nil, mbp.ErrOutOfOrder
	}
	if t == l.second {
		l.cur = *l.pending
		l.pending = nil
		out := l.cur
		out.Time = uint64(l.second)
		l.second++
		return &out, nil
	}

	out := l.cur
	out.Time = uint64(l.second)
	l.second++
	return &out, nil
}

// Close releases the underlying raw loader's resources.
func (l *TickSnapshotLoader) Close() error {
	return l.raw.Close()
}
