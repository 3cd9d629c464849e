// Copyright (c) 2024 Neomantra Corp
//
// Raw Data Loader (C8) for the snapshot stream. Grounded on
// raw_snapshots_data_loader.py's get_data/next (see DESIGN.md).
//

package loader

import (
	"io"
	"os"
	"time"

	"github.com/krakenquant/mbpreplay"
)

// RawSnapshotLoader iterates persisted snapshot files in date order,
// yielding each record exactly once.
type RawSnapshotLoader struct {
	root   string
	asset  mbp.Asset
	market mbp.Market

	cursor dayCursor
	reader *mbp.SnapshotReader
}

// NewRawSnapshotLoader validates and constructs a loader for
// [since, until) over (root, asset, market). See §4.8 for failure modes.
func NewRawSnapshotLoader(root string, asset mbp.Asset, market mbp.Market, since, until time.Time) (*RawSnapshotLoader, error) {
	cursor, err := newDayCursor(root, mbp.Kind_Snapshots, asset, market, since, until)
	if err != nil {
		return nil, err
	}
	return &RawSnapshotLoader{root: root, asset: asset, market: market, cursor: cursor}, nil
}

// Next returns the next record, or (nil, nil) once `until` is reached. On
// exhaustion of the current day's stream it advances to the next day; a
// missing intermediate file terminates the iterator cleanly. A read error
// on an existing file is fatal and is never skipped silently.
func (l *RawSnapshotLoader) Next() (*mbp.SnapshotMessage, error) {
	for {
		if l.cursor.done() {
			return nil, nil
		}
		if l.reader == nil {
			r, err := mbp.NewSnapshotReader(l.cursor.path())
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
func (l *RawSnapshotLoader) Close() error {
	if l.reader != nil {
		return l.reader.Close()
	}
	return nil
}

// GetData returns all records across [since, until) as a slice, bounded
// pre-allocated by an 86400-per-day estimate. Unlike Next, a gap (a missing
// intermediate file) is fatal here (ErrMissingFile), per §4.8.
func (l *RawSnapshotLoader) GetData(since, until time.Time) ([]mbp.SnapshotMessage, error) {
	cursor, err := newDayCursor(l.root, mbp.Kind_Snapshots, l.asset, l.market, since, until)
	if err != nil {
		return nil, err
	}
	days := int(until.Sub(since).Hours() / 24)
	if days < 1 {
		days = 1
	}
	out := make([]mbp.SnapshotMessage, 0, days*86400)

	var reader *mbp.SnapshotReader
	defer func() {
		if reader != nil {
			reader.Close()
		}
	}()

	for !cursor.done() {
		if reader == nil {
			r, err := mbp.NewSnapshotReader(cursor.path())
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
