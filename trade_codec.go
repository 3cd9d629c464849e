// Copyright (c) 2024 Neomantra Corp
//
// Binary Codec (C7) for the Trade stream. Grounded on dbn-go's
// scanner/writer split (compressed_io.go + the scan-one-record-at-a-time
// loop), re-targeted at the 17-byte trade record instead of variable DBN
// RType records (see DESIGN.md).
//

package mbp

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/zstd"
)

///////////////////////////////////////////////////////////////////////////////

// TradeWriter appends TradeMessage records to a zstd-compressed file.
type TradeWriter struct {
	zw     *zstd.Encoder
	closer func()
}

// NewTradeWriter opens (or appends to) path for writing trade records.
func NewTradeWriter(path string) (*TradeWriter, error) {
	zw, closer, err := MakeLeveledZstdWriter(path)
	if err != nil {
		return nil, err
	}
	return &TradeWriter{zw: zw, closer: closer}, nil
}

// Write appends one trade record's 17-byte body to the stream.
func (w *TradeWriter) Write(t TradeMessage) error {
	body := EncodeTradeBody(t)
	_, err := w.zw.Write(body[:])
	return err
}

// Close flushes and closes the underlying zstd stream and file.
func (w *TradeWriter) Close() error {
	w.closer()
	return nil
}

///////////////////////////////////////////////////////////////////////////////

const defaultTradeReadBufferSize = 16 * 1024

// TradeReader scans a zstd-compressed trade stream one record at a time.
// Feedcode and Market are supplied by the caller since the wire body does
// not carry them (§4.2).
type TradeReader struct {
	feedcode string
	market   Market
	buf      *bufio.Reader
	closer   io.Closer
	lastErr  error
}

// NewTradeReader opens path (expected zstd) for reading trade records
// belonging to feedcode/market.
func NewTradeReader(path string, feedcode string, market Market) (*TradeReader, error) {
	reader, closer, err := MakeCompressedReader(path, true)
	if err != nil {
		return nil, err
	}
	return &TradeReader{
		feedcode: feedcode,
		market:   market,
		buf:      bufio.NewReaderSize(reader, defaultTradeReadBufferSize),
		closer:   closer,
	}, nil
}

// Next reads and decodes the next TradeMessage. A clean end-of-stream
// (short read exactly at a record boundary) returns (zero, io.EOF); a short
// read mid-record returns (zero, ErrTruncated).
func (r *TradeReader) Next() (TradeMessage, error) {
	var body [TradeMessage_BodySize]byte
	n, err := io.ReadFull(r.buf, body[:])
	if err != nil {
		if n == 0 && err == io.EOF {
			r.lastErr = io.EOF
			return TradeMessage{}, io.EOF
		}
		r.lastErr = ErrTruncated
		return TradeMessage{}, ErrTruncated
	}
	return DecodeTradeBody(body[:], r.feedcode, r.market)
}

// Close releases the underlying file handle.
func (r *TradeReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
