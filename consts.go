// Copyright (c) 2024 Neomantra Corp
//
// Adapted from the historical-updates domain model (see DESIGN.md).
//

package mbp

// Asset is the closed enumeration of internal tradeable assets.
// Extensible: add a new const and its symbol_map.go table entries.
type Asset uint8

const (
	Asset_BTC Asset = iota + 1
	Asset_ETH
	Asset_WIF
	Asset_XRP
	Asset_SOL
	Asset_DOGE
	Asset_TRX
	Asset_ADA
	Asset_AVAX
	Asset_SHIB
	Asset_DOT
)

func (a Asset) String() string {
	switch a {
	case Asset_BTC:
		return "BTC"
	case Asset_ETH:
		return "ETH"
	case Asset_WIF:
		return "WIF"
	case Asset_XRP:
		return "XRP"
	case Asset_SOL:
		return "SOL"
	case Asset_DOGE:
		return "DOGE"
	case Asset_TRX:
		return "TRX"
	case Asset_ADA:
		return "ADA"
	case Asset_AVAX:
		return "AVAX"
	case Asset_SHIB:
		return "SHIB"
	case Asset_DOT:
		return "DOT"
	default:
		return "UNKNOWN"
	}
}

// Market is the closed enumeration of markets a feedcode can belong to.
type Market uint32

const (
	Market_Spot Market = iota + 1
	Market_UsdFuture
)

func (m Market) String() string {
	switch m {
	case Market_Spot:
		return "SPOT"
	case Market_UsdFuture:
		return "USD_FUTURE"
	default:
		return "UNKNOWN"
	}
}

// Side is the book side. The numeric tag is stable for wire serialization.
type Side uint8

const (
	Side_Bid Side = 0
	Side_Ask Side = 1
)

func (s Side) String() string {
	switch s {
	case Side_Bid:
		return "BID"
	case Side_Ask:
		return "ASK"
	default:
		return "UNKNOWN"
	}
}

// OrderEventType is the closed set of order-lifecycle events the history
// API can report. Only Placed, Updated, Cancelled produce deltas.
type OrderEventType uint8

const (
	OrderEventType_Placed OrderEventType = iota + 1
	OrderEventType_Updated
	OrderEventType_Cancelled
	OrderEventType_Rejected
	OrderEventType_EditRejected
)

func (t OrderEventType) String() string {
	switch t {
	case OrderEventType_Placed:
		return "PLACED"
	case OrderEventType_Updated:
		return "UPDATED"
	case OrderEventType_Cancelled:
		return "CANCELLED"
	case OrderEventType_Rejected:
		return "REJECTED"
	case OrderEventType_EditRejected:
		return "EDIT_REJECTED"
	default:
		return "UNKNOWN"
	}
}

// EventType distinguishes the two independent producer streams per chunk.
type EventType uint8

const (
	EventType_Order EventType = 0
	EventType_Execution EventType = 1
)

func (t EventType) String() string {
	switch t {
	case EventType_Order:
		return "ORDER"
	case EventType_Execution:
		return "EXECUTION"
	default:
		return "UNKNOWN"
	}
}

// zero-qty tolerance for book level removal, see MBPBook.ApplyDelta.
const (
	zeroQtyRelTolerance = 1e-5
	zeroQtyAbsTolerance = 1e-8
)

// isNearZero reports whether qty should be treated as a removed level.
// ref is the resting level before the delta (or the delta itself for a
// fresh or zero-valued level), regardless of which operand is larger; it
// anchors the relative tolerance so "close to zero" scales with that size.
func isNearZero(qty, ref float64) bool {
	if qty < 0 {
		qty = -qty
	}
	if ref < 0 {
		ref = -ref
	}
	if qty < zeroQtyAbsTolerance {
		return true
	}
	return qty < zeroQtyRelTolerance*ref
}
