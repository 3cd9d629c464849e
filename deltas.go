// Copyright (c) 2024 Neomantra Corp
//
// Event-to-Delta Mapping (C5): translates history-API event objects into
// signed MBPBook deltas. Grounded on the historical-updates data client's
// _delta_from_order_event / _delta_from_execution_event (see DESIGN.md).
// Price/quantity fields arrive as decimal strings; shopspring/decimal
// parses them exactly before the lossy float64 UpdateDelta boundary.
//

package mbp

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/valyala/fastjson"
)

// Event tag strings as reported by the history API's `event.type` field.
const (
	eventTag_OrderPlaced       = "OrderPlaced"
	eventTag_OrderUpdated      = "OrderUpdated"
	eventTag_OrderCancelled    = "OrderCancelled"
	eventTag_OrderRejected     = "OrderRejected"
	eventTag_OrderEditRejected = "OrderEditRejected"
	eventTag_Execution         = "Execution"
)

// DeltaFromEvent dispatches a parsed `event` object (the tagged union
// described in spec §6) to its delta-producing handler. Unknown tags are a
// hard error (ErrMalformedEvent); Rejected/EditRejected produce no deltas.
func DeltaFromEvent(val *fastjson.Value) ([]UpdateDelta, error) {
	tag := string(val.GetStringBytes("type"))
	switch tag {
	case eventTag_OrderPlaced:
		return deltaFromPlaced(val)
	case eventTag_OrderCancelled:
		return deltaFromCancelled(val)
	case eventTag_OrderUpdated:
		return deltaFromUpdated(val)
	case eventTag_OrderRejected, eventTag_OrderEditRejected:
		return nil, nil
	case eventTag_Execution:
		return deltaFromExecution(val)
	default:
		return nil, fmt.Errorf("%w: unrecognized event type %q", ErrMalformedEvent, tag)
	}
}

func deltaFromPlaced(val *fastjson.Value) ([]UpdateDelta, error) {
	side, err := parseSide(val, "direction")
	if err != nil {
		return nil, err
	}
	price, err := parseDecimalField(val, "limitPrice")
	if err != nil {
		return nil, err
	}
	qty, err := parseDecimalField(val, "quantity")
	if err != nil {
		return nil, err
	}
	ts := eventTimestampSeconds(val)

	delta := NewUpdateDelta(side, ts)
	delta.Add(price, qty)
	return []UpdateDelta{delta}, nil
}

func deltaFromCancelled(val *fastjson.Value) ([]UpdateDelta, error) {
	side, err := parseSide(val, "direction")
	if err != nil {
		return nil, err
	}
	price, err := parseDecimalField(val, "limitPrice")
	if err != nil {
		return nil, err
	}
	qty, err := parseDecimalField(val, "quantity")
	if err != nil {
		return nil, err
	}
	ts := eventTimestampSeconds(val)

	delta := NewUpdateDelta(side, ts)
	delta.Add(price, -qty)
	return []UpdateDelta{delta}, nil
}

// deltaFromUpdated produces add(newPrice, +newQty) and add(oldPrice, -oldQty).
// When both legs share side and timestamp (they always share timestamp; they
// may differ in side across an order flip), they are merged into one delta
// object per §4.5; otherwise two separate deltas are returned.
func deltaFromUpdated(val *fastjson.Value) ([]UpdateDelta, error) {
	newSide, err := parseSide(val, "newDirection")
	if err != nil {
		return nil, err
	}
	oldSide, err := parseSide(val, "oldDirection")
	if err != nil {
		return nil, err
	}
	newPrice, err := parseDecimalField(val, "newLimitPrice")
	if err != nil {
		return nil, err
	}
	oldPrice, err := parseDecimalField(val, "oldLimitPrice")
	if err != nil {
		return nil, err
	}
	newQty, err := parseDecimalField(val, "newQuantity")
	if err != nil {
		return nil, err
	}
	oldQty, err := parseDecimalField(val, "oldQuantity")
	if err != nil {
		return nil, err
	}
	ts := eventTimestampSeconds(val)

	add := NewUpdateDelta(newSide, ts)
	add.Add(newPrice, newQty)
	sub := NewUpdateDelta(oldSide, ts)
	sub.Add(oldPrice, -oldQty)

	if add.AddDelta(sub) {
		return []UpdateDelta{add}, nil
	}
	return []UpdateDelta{add, sub}, nil
}

// deltaFromExecution debits both book sides at the execution price, per the
// reference source's modeling (see DESIGN.md open question #1 - implemented
// as specified, not "corrected").
func deltaFromExecution(val *fastjson.Value) ([]UpdateDelta, error) {
	price, err := parseDecimalField(val, "price")
	if err != nil {
		return nil, err
	}
	qty, err := parseDecimalField(val, "quantity")
	if err != nil {
		return nil, err
	}
	ts := eventTimestampSeconds(val)

	bidDelta := NewUpdateDelta(Side_Bid, ts)
	bidDelta.Add(price, -qty)
	askDelta := NewUpdateDelta(Side_Ask, ts)
	askDelta.Add(price, -qty)
	return []UpdateDelta{bidDelta, askDelta}, nil
}

func parseSide(val *fastjson.Value, field string) (Side, error) {
	switch s := string(val.GetStringBytes(field)); s {
	case "Buy":
		return Side_Bid, nil
	case "Sell":
		return Side_Ask, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized direction %q", ErrMalformedEvent, s)
	}
}

func parseDecimalField(val *fastjson.Value, field string) (float64, error) {
	s := string(val.GetStringBytes(field))
	if s == "" {
		return 0, fmt.Errorf("%w: missing field %q", ErrMalformedEvent, field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %s", ErrMalformedEvent, field, err.Error())
	}
	f, _ := d.Float64()
	return f, nil
}

// eventTimestampSeconds truncates the API's millisecond timestamp to whole
// seconds, the earliest point at which deltas are aggregated (§4.5).
func eventTimestampSeconds(val *fastjson.Value) uint64 {
	return MillisToSeconds(val.GetInt64("timestamp"))
}

// CoalesceDeltas merges consecutive deltas sharing (timestamp, side) within
// a single page of deltas, reducing FIFO churn (§4.5, optimization only —
// the final per-second projection is identical either way).
func CoalesceDeltas(deltas []UpdateDelta) []UpdateDelta {
	if len(deltas) == 0 {
		return deltas
	}
	out := make([]UpdateDelta, 0, len(deltas))
	out = append(out, deltas[0])
	for _, d := range deltas[1:] {
		last := &out[len(out)-1]
		if !last.AddDelta(d) {
			out = append(out, d)
		}
	}
	return out
}
