// Copyright (c) 2024 Neomantra Corp
//
// Binary Codec (C7) for the Snapshot stream, see trade_codec.go for the
// sibling trade codec and DESIGN.md for grounding.
//

package mbp

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/zstd"
)

///////////////////////////////////////////////////////////////////////////////

// SnapshotWriter appends SnapshotMessage records to a zstd-compressed file.
type SnapshotWriter struct {
	zw     *zstd.Encoder
	closer func()
}

// NewSnapshotWriter opens (or appends to) path for writing snapshot records.
func NewSnapshotWriter(path string) (*SnapshotWriter, error) {
	zw, closer, err := MakeLeveledZstdWriter(path)
	if err != nil {
		return nil, err
	}
	return &SnapshotWriter{zw: zw, closer: closer}, nil
}

// Write appends one snapshot record (header + feedcode + bids + asks).
func (w *SnapshotWriter) Write(s SnapshotMessage) error {
	_, err := w.zw.Write(EncodeSnapshot(s))
	return err
}

// Close flushes and closes the underlying zstd stream and file.
func (w *SnapshotWriter) Close() error {
	w.closer()
	return nil
}

///////////////////////////////////////////////////////////////////////////////

const defaultSnapshotReadBufferSize = 64 * 1024

// SnapshotReader scans a zstd-compressed snapshot stream one record at a time.
type SnapshotReader struct {
	buf    *bufio.Reader
	closer io.Closer
}

// NewSnapshotReader opens path (expected zstd) for reading snapshot records.
func NewSnapshotReader(path string) (*SnapshotReader, error) {
	reader, closer, err := MakeCompressedReader(path, true)
	if err != nil {
		return nil, err
	}
	return &SnapshotReader{
		buf:    bufio.NewReaderSize(reader, defaultSnapshotReadBufferSize),
		closer: closer,
	}, nil
}

// Next reads and decodes the next SnapshotMessage. A clean end-of-stream
// (short read exactly at the header boundary) returns (zero, io.EOF); a
// short read mid-header or mid-body returns (zero, ErrTruncated).
func (r *SnapshotReader) Next() (SnapshotMessage, error) {
	var headerBytes [SnapshotMessage_HeaderSize]byte
	n, err := io.ReadFull(r.buf, headerBytes[:])
	if err != nil {
		if n == 0 && err == io.EOF {
			return SnapshotMessage{}, io.EOF
		}
		return SnapshotMessage{}, ErrTruncated
	}
	header, err := DecodeSnapshotHeader(headerBytes[:])
	if err != nil {
		return SnapshotMessage{}, err
	}

	bodyLen := int(header.FeedcodeLen) + int(header.BidsBytes) + int(header.AsksBytes)
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r.buf, body); err != nil {
		return SnapshotMessage{}, ErrTruncated
	}
	return DecodeSnapshotBody(header, body)
}

// Close releases the underlying file handle.
func (r *SnapshotReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
