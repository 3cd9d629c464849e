// Copyright (c) 2025 Neomantra Corp
//
// mbp-file inspects and exports the snapshot/trade files BuildDay writes.
// The json subcommands walk one day's file at a time via VisitSnapshots/
// VisitTrades; the parquet subcommands span multi-day ranges through the
// loader package's raw readers.
//

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	mbp "github.com/krakenquant/mbpreplay"
	"github.com/krakenquant/mbpreplay/internal/export"
	"github.com/krakenquant/mbpreplay/loader"
)

///////////////////////////////////////////////////////////////////////////////

var (
	resourceRoot string

	sinceFlag ymdDateFlag
	untilFlag ymdDateFlag

	destFile string
)

type ymdDateFlag struct {
	t   time.Time
	set bool
}

func (f *ymdDateFlag) String() string {
	if !f.set {
		return ""
	}
	return f.t.Format("20060102")
}

func (f *ymdDateFlag) Set(s string) error {
	t, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid YYYYMMDD date %q: %w", s, err)
	}
	f.t = t
	f.set = true
	return nil
}

func (f *ymdDateFlag) Type() string { return "YYYYMMDD" }

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func resolveRange(feedcode string) (mbp.Asset, mbp.Market, time.Time, time.Time) {
	asset, err := mbp.FeedcodeToAsset(feedcode)
	requireNoError(err)
	market, err := mbp.FeedcodeToMarket(feedcode)
	requireNoError(err)
	if !sinceFlag.set {
		fmt.Fprint(os.Stderr, "error: --since is required\n")
		os.Exit(1)
	}
	since := sinceFlag.t
	until := since
	if untilFlag.set {
		until = untilFlag.t
	}
	return asset, market, since, until
}

///////////////////////////////////////////////////////////////////////////////

func main() {
	rootCmd.PersistentFlags().StringVarP(&resourceRoot, "root", "r", ".", "Root directory of the snapshot/trade resource tree")

	for _, cmd := range []*cobra.Command{jsonSnapshotsCmd, jsonTradesCmd, parquetSnapshotsCmd, parquetTradesCmd} {
		cmd.Flags().VarP(&sinceFlag, "since", "s", "First day, as YYYYMMDD")
		cmd.Flags().VarP(&untilFlag, "until", "e", "Last day (inclusive), as YYYYMMDD. Defaults to --since.")
	}
	parquetSnapshotsCmd.Flags().StringVarP(&destFile, "dest", "d", "", "Destination parquet file")
	parquetSnapshotsCmd.MarkFlagRequired("dest")
	parquetTradesCmd.Flags().StringVarP(&destFile, "dest", "d", "", "Destination parquet file")
	parquetTradesCmd.MarkFlagRequired("dest")

	rootCmd.AddCommand(jsonCmd)
	jsonCmd.AddCommand(jsonSnapshotsCmd, jsonTradesCmd)
	rootCmd.AddCommand(parquetCmd)
	parquetCmd.AddCommand(parquetSnapshotsCmd, parquetTradesCmd)
	rootCmd.AddCommand(queryCmd)

	err := rootCmd.Execute()
	requireNoError(err)
}

///////////////////////////////////////////////////////////////////////////////

var rootCmd = &cobra.Command{
	Use:   "mbp-file",
	Short: "mbp-file inspects and exports replayed snapshot/trade files",
	Long:  "mbp-file inspects and exports replayed snapshot/trade files",
}

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Prints snapshot/trade records as newline-delimited JSON",
}

var jsonSnapshotsCmd = &cobra.Command{
	Use:   "snapshots <feedcode>",
	Short: "Prints snapshot records for a feedcode as newline-delimited JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		asset, market, since, until := resolveRange(args[0])
		feedcode, err := mbp.AssetToFeedcode(asset, market)
		requireNoError(err)

		visitor := &jsonVisitor{}
		for day := since; !day.After(until); day = day.AddDate(0, 0, 1) {
			path := mbp.DayFilePath(resourceRoot, mbp.Kind_Snapshots, feedcode, mbp.YMDFileName(day))
			r, err := mbp.NewSnapshotReader(path)
			if err != nil {
				if os.IsNotExist(err) {
					break
				}
				requireNoError(err)
			}
			requireNoError(mbp.VisitSnapshots(r, visitor))
			r.Close()
		}
	},
}

var jsonTradesCmd = &cobra.Command{
	Use:   "trades <feedcode>",
	Short: "Prints trade records for a feedcode as newline-delimited JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		asset, market, since, until := resolveRange(args[0])
		feedcode, err := mbp.AssetToFeedcode(asset, market)
		requireNoError(err)

		visitor := &jsonVisitor{}
		for day := since; !day.After(until); day = day.AddDate(0, 0, 1) {
			path := mbp.DayFilePath(resourceRoot, mbp.Kind_Trades, feedcode, mbp.YMDFileName(day))
			r, err := mbp.NewTradeReader(path, feedcode, market)
			if err != nil {
				if os.IsNotExist(err) {
					break
				}
				requireNoError(err)
			}
			requireNoError(mbp.VisitTrades(r, visitor))
			r.Close()
		}
	},
}

// jsonVisitor implements mbp.Visitor by marshaling each record as
// newline-delimited JSON to stdout.
type jsonVisitor struct{}

func (jsonVisitor) OnTrade(record *mbp.TradeMessage) error {
	jstr, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", jstr)
	return nil
}

func (jsonVisitor) OnSnapshot(record *mbp.SnapshotMessage) error {
	jstr, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", jstr)
	return nil
}

func (jsonVisitor) OnStreamEnd() error { return nil }

///////////////////////////////////////////////////////////////////////////////

var parquetCmd = &cobra.Command{
	Use:   "parquet",
	Short: "Exports snapshot/trade records to a parquet file",
}

var parquetSnapshotsCmd = &cobra.Command{
	Use:   "snapshots <feedcode>",
	Short: "Exports snapshot records for a feedcode to a parquet file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		asset, market, since, until := resolveRange(args[0])
		end := until.AddDate(0, 0, 1) // --until is inclusive; the loader range is [since, end)
		rl, err := loader.NewRawSnapshotLoader(resourceRoot, asset, market, since, end)
		requireNoError(err)
		defer rl.Close()

		recs, err := rl.GetData(since, end)
		requireNoError(err)
		requireNoError(export.WriteSnapshotsParquet(destFile, recs))
		fmt.Printf("wrote %d snapshot records to %s\n", len(recs), destFile)
	},
}

var parquetTradesCmd = &cobra.Command{
	Use:   "trades <feedcode>",
	Short: "Exports trade records for a feedcode to a parquet file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		asset, market, since, until := resolveRange(args[0])
		end := until.AddDate(0, 0, 1) // --until is inclusive; the loader range is [since, end)
		rl, err := loader.NewRawTradeLoader(resourceRoot, asset, market, since, end)
		requireNoError(err)
		defer rl.Close()

		recs, err := rl.GetData(since, end)
		requireNoError(err)
		requireNoError(export.WriteTradesParquet(destFile, recs))
		fmt.Printf("wrote %d trade records to %s\n", len(recs), destFile)
	},
}

///////////////////////////////////////////////////////////////////////////////

var queryCmd = &cobra.Command{
	Use:   "query <glob> <sql>",
	Short: "Runs a read-only SQL query against exported parquet files via DuckDB",
	Long: `Runs a read-only SQL query against one or more exported parquet files.

<glob> is a parquet file glob, e.g. "./out/snapshots/*.parquet".
<sql> selects against a table named "data", e.g. "select * from data limit 10".`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		csv, err := export.QueryParquet(args[0], args[1])
		requireNoError(err)
		fmt.Print(csv)
	},
}
