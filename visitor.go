// Copyright (c) 2024 Neomantra Corp

package mbp

import "io"

// Visitor receives decoded records from a TradeReader/SnapshotReader walk.
// cmd/mbp-file's json subcommands use it to dump a day's file without
// hand-rolling the read loop.
type Visitor interface {
	OnTrade(record *TradeMessage) error
	OnSnapshot(record *SnapshotMessage) error
	OnStreamEnd() error
}

// VisitTrades reads every record from r, passing each to visitor until
// io.EOF (clean) or a decode error (which is returned).
func VisitTrades(r *TradeReader, visitor Visitor) error {
	for {
		t, err := r.Next()
		if err != nil {
			if err == io.EOF {
				return visitor.OnStreamEnd()
			}
			return err
		}
		if err := visitor.OnTrade(&t); err != nil {
			return err
		}
	}
}

// VisitSnapshots reads every record from r, passing each to visitor until
// io.EOF (clean) or a decode error (which is returned).
func VisitSnapshots(r *SnapshotReader, visitor Visitor) error {
	for {
		s, err := r.Next()
		if err != nil {
			if err == io.EOF {
				return visitor.OnStreamEnd()
			}
			return err
		}
		if err := visitor.OnSnapshot(&s); err != nil {
			return err
		}
	}
}
