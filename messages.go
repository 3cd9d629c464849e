// Copyright (c) 2024 Neomantra Corp
//
// Canonical wire records for THE CORE's replay format, see DESIGN.md.
// Binary layouts are fixed and little-endian; see paths.go and
// snapshot_codec.go / trade_codec.go for the on-disk framing.
//

package mbp

import (
	"encoding/binary"
)

///////////////////////////////////////////////////////////////////////////////

// TradeMessage is the canonical Trade record. Feedcode and Market are
// carried by the containing file's directory path, not the wire body.
type TradeMessage struct {
	Time     uint64 // seconds since epoch
	Feedcode string
	Market   Market
	NTrades  uint32
	Price    float32
	Quantity float32
	Side     Side
}

// TradeMessage_BodySize is the packed body size: u64 | f32 | f32 | u8.
const TradeMessage_BodySize = 8 + 4 + 4 + 1

// EncodeTradeBody packs the 17-byte wire body (time, price, quantity, side).
// NTrades is not part of the wire body: the reference layout in §4.2 has no
// room for it, and DecodeTradeBody always sets it to 1.
func EncodeTradeBody(t TradeMessage) [TradeMessage_BodySize]byte {
	var buf [TradeMessage_BodySize]byte
	binary.LittleEndian.PutUint64(buf[0:8], t.Time)
	binary.LittleEndian.PutUint32(buf[8:12], float32bits(t.Price))
	binary.LittleEndian.PutUint32(buf[12:16], float32bits(t.Quantity))
	buf[16] = byte(t.Side)
	return buf
}

// DecodeTradeBody unpacks a 17-byte wire body. Feedcode and Market must be
// supplied by the caller (from the containing file's path).
func DecodeTradeBody(b []byte, feedcode string, market Market) (TradeMessage, error) {
	if len(b) < TradeMessage_BodySize {
		return TradeMessage{}, unexpectedBytesError(len(b), TradeMessage_BodySize)
	}
	return TradeMessage{
		Time:     binary.LittleEndian.Uint64(b[0:8]),
		Feedcode: feedcode,
		Market:   market,
		NTrades:  1,
		Price:    float32frombits(binary.LittleEndian.Uint32(b[8:12])),
		Quantity: float32frombits(binary.LittleEndian.Uint32(b[12:16])),
		Side:     Side(b[16]),
	}, nil
}

///////////////////////////////////////////////////////////////////////////////

// PriceLevel is a single (price, qty) pair, qty always nonzero once placed
// in a SnapshotMessage (see NewSnapshotMessage).
type PriceLevel struct {
	Price float64
	Qty   float64
}

// SnapshotMessage is the canonical per-second book projection.
// Order of Bids/Asks is whatever book.go's Project produces, which is Go
// map iteration order: it is not sorted and not stable between projections.
type SnapshotMessage struct {
	Time     uint64
	Feedcode string
	Market   Market
	Bids     []PriceLevel
	Asks     []PriceLevel
}

// SnapshotMessage_HeaderSize is the packed header: u64|u32|u32|u32|u32.
const SnapshotMessage_HeaderSize = 8 + 4 + 4 + 4 + 4

// priceLevelSize is the packed size of one (f64 price, f64 qty) pair.
const priceLevelSize = 8 + 8

// NewSnapshotMessage builds a SnapshotMessage from raw (price, qty) pairs,
// dropping any level with qty == 0, per §3's construction invariant.
func NewSnapshotMessage(time uint64, feedcode string, market Market, rawBids, rawAsks []PriceLevel) SnapshotMessage {
	return SnapshotMessage{
		Time:     time,
		Feedcode: feedcode,
		Market:   market,
		Bids:     dropZeroLevels(rawBids),
		Asks:     dropZeroLevels(rawAsks),
	}
}

func dropZeroLevels(levels []PriceLevel) []PriceLevel {
	out := make([]PriceLevel, 0, len(levels))
	for _, lvl := range levels {
		if lvl.Qty != 0 {
			out = append(out, lvl)
		}
	}
	return out
}

// EncodeSnapshot packs a SnapshotMessage into its full wire form: header,
// feedcode bytes, bid levels, ask levels.
func EncodeSnapshot(s SnapshotMessage) []byte {
	feedcodeBytes := []byte(s.Feedcode)
	bidsBytes := len(s.Bids) * priceLevelSize
	asksBytes := len(s.Asks) * priceLevelSize

	buf := make([]byte, SnapshotMessage_HeaderSize+len(feedcodeBytes)+bidsBytes+asksBytes)
	binary.LittleEndian.PutUint64(buf[0:8], s.Time)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(s.Market))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(feedcodeBytes)))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(bidsBytes))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(asksBytes))

	offset := SnapshotMessage_HeaderSize
	copy(buf[offset:], feedcodeBytes)
	offset += len(feedcodeBytes)
	offset = encodeLevels(buf, offset, s.Bids)
	encodeLevels(buf, offset, s.Asks)
	return buf
}

func encodeLevels(buf []byte, offset int, levels []PriceLevel) int {
	for _, lvl := range levels {
		binary.LittleEndian.PutUint64(buf[offset:offset+8], float64bits(lvl.Price))
		binary.LittleEndian.PutUint64(buf[offset+8:offset+16], float64bits(lvl.Qty))
		offset += priceLevelSize
	}
	return offset
}

// SnapshotHeader is the decoded fixed-size header, returned by
// DecodeSnapshotHeader so callers (the codec reader) know how many more
// bytes to pull off the stream before decoding the body.
type SnapshotHeader struct {
	Time        uint64
	MarketTag   uint32
	FeedcodeLen uint32
	BidsBytes   uint32
	AsksBytes   uint32
}

// DecodeSnapshotHeader unpacks the fixed 24-byte header.
func DecodeSnapshotHeader(b []byte) (SnapshotHeader, error) {
	if len(b) < SnapshotMessage_HeaderSize {
		return SnapshotHeader{}, ErrTruncated
	}
	return SnapshotHeader{
		Time:        binary.LittleEndian.Uint64(b[0:8]),
		MarketTag:   binary.LittleEndian.Uint32(b[8:12]),
		FeedcodeLen: binary.LittleEndian.Uint32(b[12:16]),
		BidsBytes:   binary.LittleEndian.Uint32(b[16:20]),
		AsksBytes:   binary.LittleEndian.Uint32(b[20:24]),
	}, nil
}

// DecodeSnapshotBody unpacks the feedcode + bids + asks body that follows a
// SnapshotHeader. body must be exactly header.FeedcodeLen+BidsBytes+AsksBytes
// long; the codec reader is responsible for pulling exactly that many bytes.
func DecodeSnapshotBody(header SnapshotHeader, body []byte) (SnapshotMessage, error) {
	want := int(header.FeedcodeLen) + int(header.BidsBytes) + int(header.AsksBytes)
	if len(body) < want {
		return SnapshotMessage{}, ErrTruncated
	}
	market := Market(header.MarketTag)
	if _, err := marketString(market); err != nil {
		return SnapshotMessage{}, ErrBadMarketTag
	}

	feedcodeBytes := body[:header.FeedcodeLen]
	if !utf8Valid(feedcodeBytes) {
		return SnapshotMessage{}, ErrBadUtf8
	}
	feedcode := string(feedcodeBytes)

	offset := int(header.FeedcodeLen)
	bids, err := decodeLevels(body[offset : offset+int(header.BidsBytes)])
	if err != nil {
		return SnapshotMessage{}, err
	}
	offset += int(header.BidsBytes)
	asks, err := decodeLevels(body[offset : offset+int(header.AsksBytes)])
	if err != nil {
		return SnapshotMessage{}, err
	}

	return SnapshotMessage{
		Time:     header.Time,
		Feedcode: feedcode,
		Market:   market,
		Bids:     bids,
		Asks:     asks,
	}, nil
}

func decodeLevels(b []byte) ([]PriceLevel, error) {
	if len(b)%priceLevelSize != 0 {
		return nil, ErrTruncated
	}
	n := len(b) / priceLevelSize
	levels := make([]PriceLevel, n)
	for i := 0; i < n; i++ {
		off := i * priceLevelSize
		levels[i] = PriceLevel{
			Price: float64frombits(binary.LittleEndian.Uint64(b[off : off+8])),
			Qty:   float64frombits(binary.LittleEndian.Uint64(b[off+8 : off+16])),
		}
	}
	return levels, nil
}

func marketString(m Market) (string, error) {
	switch m {
	case Market_Spot, Market_UsdFuture:
		return m.String(), nil
	default:
		return "", ErrBadMarketTag
	}
}

func utf8Valid(b []byte) bool {
	return utf8ValidImpl(b)
}
