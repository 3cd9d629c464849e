// Copyright (c) 2025 Neomantra Corp
//
// Parquet export for replayed trade/snapshot streams. Grounded on
// internal/file/parquet_writer.go's GroupNode + BufferedRowGroupWriter
// column-writer pattern (see DESIGN.md), re-targeted at THE CORE's two
// record types instead of Databento's RType zoo. Snapshot levels are
// flattened to the top maxExportDepth price levels per side, since parquet
// columns are fixed-width.
//

package export

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
	_ "github.com/duckdb/duckdb-go/v2"

	mbp "github.com/krakenquant/mbpreplay"
)

// maxExportDepth is the number of price levels retained per side when
// flattening a SnapshotMessage into fixed parquet columns.
const maxExportDepth = 5

func writerProps() *parquet.WriterProperties {
	return parquet.NewWriterProperties(
		parquet.WithVersion(parquet.V2_LATEST),
		parquet.WithCompression(compress.Codecs.Snappy))
}

///////////////////////////////////////////////////////////////////////////////

func tradeGroupNode() *pqschema.GroupNode {
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, pqschema.FieldList{
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical("ts_event", parquet.Repetitions.Required, pqschema.NewTimestampLogicalType(true, pqschema.TimeUnitSeconds), parquet.Types.Int64, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted("feedcode", parquet.Repetitions.Required, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted("market", parquet.Repetitions.Required, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted("side", parquet.Repetitions.Required, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)),
		pqschema.NewFloat64Node("price", parquet.Repetitions.Required, -1),
		pqschema.NewFloat64Node("quantity", parquet.Repetitions.Required, -1),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical("n_trades", parquet.Repetitions.Required, pqschema.NewIntLogicalType(32, false), parquet.Types.Int32, 0, -1)),
	}, -1))
}

// WriteTradesParquet flattens trades into a single-row-group parquet file
// at destFile, one row per trade print.
func WriteTradesParquet(destFile string, trades []mbp.TradeMessage) error {
	outfile, closer, err := mbp.MakeCompressedWriter(destFile, false)
	if err != nil {
		return err
	}
	defer closer()

	pw := pqfile.NewParquetWriter(outfile, tradeGroupNode(), pqfile.WithWriterProps(writerProps()))
	defer pw.Close()

	rgw := pw.AppendBufferedRowGroup()
	for _, t := range trades {
		if err := writeTradeRow(rgw, t); err != nil {
			rgw.Close()
			return err
		}
	}
	rgw.Close()
	return pw.FlushWithFooter()
}

func writeTradeRow(rgw pqfile.BufferedRowGroupWriter, t mbp.TradeMessage) error {
	cw, err := rgw.Column(0)
	if err != nil {
		return err
	}
	if _, err := cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(t.Time)}, nil, nil); err != nil {
		return err
	}
	cw, _ = rgw.Column(1)
	if _, err := cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{[]byte(t.Feedcode)}, nil, nil); err != nil {
		return err
	}
	cw, _ = rgw.Column(2)
	if _, err := cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{[]byte(t.Market.String())}, nil, nil); err != nil {
		return err
	}
	cw, _ = rgw.Column(3)
	if _, err := cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{[]byte(t.Side.String())}, nil, nil); err != nil {
		return err
	}
	cw, _ = rgw.Column(4)
	if _, err := cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{float64(t.Price)}, nil, nil); err != nil {
		return err
	}
	cw, _ = rgw.Column(5)
	if _, err := cw.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{float64(t.Quantity)}, nil, nil); err != nil {
		return err
	}
	cw, _ = rgw.Column(6)
	_, err = cw.(*pqfile.Int32ColumnChunkWriter).WriteBatch([]int32{int32(t.NTrades)}, nil, nil)
	return err
}

///////////////////////////////////////////////////////////////////////////////

func snapshotGroupNode() *pqschema.GroupNode {
	fields := pqschema.FieldList{
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical("ts_event", parquet.Repetitions.Required, pqschema.NewTimestampLogicalType(true, pqschema.TimeUnitSeconds), parquet.Types.Int64, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted("feedcode", parquet.Repetitions.Required, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)),
		pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted("market", parquet.Repetitions.Required, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)),
	}
	for i := 0; i < maxExportDepth; i++ {
		fields = append(fields,
			pqschema.NewFloat64Node(levelColumnName("bid_px", i), parquet.Repetitions.Optional, -1),
			pqschema.NewFloat64Node(levelColumnName("bid_qty", i), parquet.Repetitions.Optional, -1),
			pqschema.NewFloat64Node(levelColumnName("ask_px", i), parquet.Repetitions.Optional, -1),
			pqschema.NewFloat64Node(levelColumnName("ask_qty", i), parquet.Repetitions.Optional, -1),
		)
	}
	return pqschema.MustGroup(pqschema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1))
}

func levelColumnName(prefix string, depth int) string {
	return prefix + "_" + string(rune('0'+depth))
}

// WriteSnapshotsParquet flattens snapshots (top maxExportDepth levels per
// side, best price first) into a single-row-group parquet file.
func WriteSnapshotsParquet(destFile string, snaps []mbp.SnapshotMessage) error {
	outfile, closer, err := mbp.MakeCompressedWriter(destFile, false)
	if err != nil {
		return err
	}
	defer closer()

	pw := pqfile.NewParquetWriter(outfile, snapshotGroupNode(), pqfile.WithWriterProps(writerProps()))
	defer pw.Close()

	rgw := pw.AppendBufferedRowGroup()
	for _, s := range snaps {
		if err := writeSnapshotRow(rgw, s); err != nil {
			rgw.Close()
			return err
		}
	}
	rgw.Close()
	return pw.FlushWithFooter()
}

func writeSnapshotRow(rgw pqfile.BufferedRowGroupWriter, s mbp.SnapshotMessage) error {
	bids := topLevels(s.Bids, true)
	asks := topLevels(s.Asks, false)

	cw, err := rgw.Column(0)
	if err != nil {
		return err
	}
	if _, err := cw.(*pqfile.Int64ColumnChunkWriter).WriteBatch([]int64{int64(s.Time)}, nil, nil); err != nil {
		return err
	}
	cw, _ = rgw.Column(1)
	if _, err := cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{[]byte(s.Feedcode)}, nil, nil); err != nil {
		return err
	}
	cw, _ = rgw.Column(2)
	if _, err := cw.(*pqfile.ByteArrayColumnChunkWriter).WriteBatch([]parquet.ByteArray{[]byte(s.Market.String())}, nil, nil); err != nil {
		return err
	}

	col := 3
	for i := 0; i < maxExportDepth; i++ {
		if err := writeOptionalLevel(rgw, col, bids, i); err != nil {
			return err
		}
		col += 2
		if err := writeOptionalLevel(rgw, col, asks, i); err != nil {
			return err
		}
		col += 2
	}
	return nil
}

func writeOptionalLevel(rgw pqfile.BufferedRowGroupWriter, col int, levels []mbp.PriceLevel, depth int) error {
	pxCW, err := rgw.Column(col)
	if err != nil {
		return err
	}
	qtyCW, err := rgw.Column(col + 1)
	if err != nil {
		return err
	}
	if depth >= len(levels) {
		_, err := pxCW.(*pqfile.Float64ColumnChunkWriter).WriteBatch(nil, []int16{0}, nil)
		if err != nil {
			return err
		}
		_, err = qtyCW.(*pqfile.Float64ColumnChunkWriter).WriteBatch(nil, []int16{0}, nil)
		return err
	}
	lvl := levels[depth]
	if _, err := pxCW.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{lvl.Price}, []int16{1}, nil); err != nil {
		return err
	}
	_, err = qtyCW.(*pqfile.Float64ColumnChunkWriter).WriteBatch([]float64{lvl.Qty}, []int16{1}, nil)
	return err
}

// topLevels returns up to maxExportDepth levels sorted best-price-first
// (descending for bids, ascending for asks) without mutating the input.
func topLevels(levels []mbp.PriceLevel, descending bool) []mbp.PriceLevel {
	out := make([]mbp.PriceLevel, len(levels))
	copy(out, levels)
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	if len(out) > maxExportDepth {
		out = out[:maxExportDepth]
	}
	return out
}

///////////////////////////////////////////////////////////////////////////////

const queryRowLimit = 10000

// QueryParquet runs a read-only SQL query against one or more exported
// parquet files (globPattern, e.g. "snapshots/*.parquet") via an in-memory
// DuckDB connection, returning the result as CSV. Grounded on
// internal/mcp_data/cache.go's queryDuckDB, minus the persistent cache
// directory and view bookkeeping: THE CORE's parquet files are a one-shot
// export product, not a standing cache of billed remote fetches.
func QueryParquet(globPattern string, userSQL string) (string, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return "", fmt.Errorf("failed to open DuckDB: %w", err)
	}
	defer db.Close()

	for _, stmt := range []string{
		"SET autoinstall_known_extensions = false",
		"SET autoload_known_extensions = false",
		"SET allow_community_extensions = false",
		"SET disabled_filesystems = 'HTTPFileSystem'",
		"SET lock_configuration = true",
	} {
		if _, err := db.Exec(stmt); err != nil {
			return "", fmt.Errorf("failed to configure DuckDB (%s): %w", stmt, err)
		}
	}

	createView := fmt.Sprintf(`CREATE VIEW data AS SELECT * FROM read_parquet(%s)`, sqlLiteral(globPattern))
	if _, err := db.Exec(createView); err != nil {
		return "", fmt.Errorf("failed to view %s: %w", globPattern, err)
	}

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM (%s) LIMIT %d", userSQL, queryRowLimit))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	w.Write(columns)

	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return "", err
		}
		record := make([]string, len(columns))
		for i, val := range values {
			switch v := val.(type) {
			case nil:
				record[i] = ""
			case []byte:
				record[i] = string(v)
			default:
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		w.Write(record)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sqlLiteral escapes a string for use as a SQL string literal.
func sqlLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
