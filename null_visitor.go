// Copyright (c) 2024 Neomantra Corp

package mbp

// NullVisitor implements Visitor with no-ops. Useful for copy/pasting into
// one's own implementation, or for benchmarking the read path alone.
type NullVisitor struct{}

func (v *NullVisitor) OnTrade(record *TradeMessage) error       { return nil }
func (v *NullVisitor) OnSnapshot(record *SnapshotMessage) error { return nil }
func (v *NullVisitor) OnStreamEnd() error                       { return nil }
