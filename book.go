// Copyright (c) 2024 Neomantra Corp
//
// MBP Book: price-indexed two-sided book, delta application, snapshot
// projection. Grounded on the historical-updates MBPBook (see DESIGN.md).
//

package mbp

// UpdateDelta carries one or more signed price-level adjustments that share
// a side and timestamp. Deltas is price -> signed qty change.
type UpdateDelta struct {
	Side      Side
	Timestamp uint64 // seconds
	Deltas    map[float64]float64
}

// NewUpdateDelta constructs an empty delta for side/timestamp.
func NewUpdateDelta(side Side, timestamp uint64) UpdateDelta {
	return UpdateDelta{
		Side:      side,
		Timestamp: timestamp,
		Deltas:    make(map[float64]float64),
	}
}

// Add accumulates qty into the price level.
func (d *UpdateDelta) Add(price, qty float64) {
	d.Deltas[price] += qty
}

// AddDelta merges other into d, requiring matching side and timestamp per
// the §3 invariant: a single logical API event's deltas share both.
func (d *UpdateDelta) AddDelta(other UpdateDelta) bool {
	if d.Side != other.Side || d.Timestamp != other.Timestamp {
		return false
	}
	for price, qty := range other.Deltas {
		d.Deltas[price] += qty
	}
	return true
}

///////////////////////////////////////////////////////////////////////////////

// MBPBook is the price-indexed two-sided order book for one feedcode/market.
// Producers never touch the book (see §5); it is thread-confined to the
// Updates Builder's consumer loop.
type MBPBook struct {
	Feedcode string
	Market   Market
	book     [2]map[float64]float64 // indexed by Side
}

// NewMBPBook constructs an empty book for feedcode/market.
func NewMBPBook(feedcode string, market Market) *MBPBook {
	return &MBPBook{
		Feedcode: feedcode,
		Market:   market,
		book: [2]map[float64]float64{
			Side_Bid: make(map[float64]float64),
			Side_Ask: make(map[float64]float64),
		},
	}
}

// ApplyDelta adds each (price, qty) adjustment to the running sum on the
// delta's side, removing any level whose resulting quantity is within the
// zero-tolerance window. ApplyDelta is total: it never fails.
func (b *MBPBook) ApplyDelta(delta UpdateDelta) {
	levels := b.book[delta.Side]
	for price, qty := range delta.Deltas {
		prev, existed := levels[price]
		next := qty
		ref := qty
		if existed {
			next = prev + qty
			ref = prev
			if ref == 0 {
				ref = qty
			}
		}
		if isNearZero(next, ref) {
			delete(levels, price)
		} else {
			levels[price] = next
		}
	}
}

// Project materializes the current price levels into a Snapshot stamped at
// time t. Callers MUST NOT call Project with a time earlier than the
// previously emitted snapshot's time (§4.3); that ordering is enforced by
// the Updates Builder, not by Project itself.
func (b *MBPBook) Project(t uint64) SnapshotMessage {
	bids := make([]PriceLevel, 0, len(b.book[Side_Bid]))
	for price, qty := range b.book[Side_Bid] {
		bids = append(bids, PriceLevel{Price: price, Qty: qty})
	}
	asks := make([]PriceLevel, 0, len(b.book[Side_Ask]))
	for price, qty := range b.book[Side_Ask] {
		asks = append(asks, PriceLevel{Price: price, Qty: qty})
	}
	return SnapshotMessage{
		Time:     t,
		Feedcode: b.Feedcode,
		Market:   b.Market,
		Bids:     bids,
		Asks:     asks,
	}
}

// Clone deep-copies the book for checkpointing. Subsequent mutation of the
// clone does not affect the original, and vice versa.
func (b *MBPBook) Clone() *MBPBook {
	clone := NewMBPBook(b.Feedcode, b.Market)
	for side := range b.book {
		for price, qty := range b.book[side] {
			clone.book[side][price] = qty
		}
	}
	return clone
}

// RestoreFrom overwrites b's levels with a deep copy of other's, used by the
// Updates Builder to roll back to the last-saved book after a failed retry.
func (b *MBPBook) RestoreFrom(other *MBPBook) {
	for side := range b.book {
		levels := make(map[float64]float64, len(other.book[side]))
		for price, qty := range other.book[side] {
			levels[price] = qty
		}
		b.book[side] = levels
	}
}
