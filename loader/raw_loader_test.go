// Copyright (c) 2024 Neomantra Corp

package loader_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/krakenquant/mbpreplay"
	"github.com/krakenquant/mbpreplay/loader"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var day = time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC)

func writeSnapshotDay(root string, t time.Time, recs []mbp.SnapshotMessage) {
	dir := mbp.FeedcodeDir(root, mbp.Kind_Snapshots, "XXBTZUSD")
	Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
	path := mbp.DayFilePath(root, mbp.Kind_Snapshots, "XXBTZUSD", mbp.YMDFileName(t))
	w, err := mbp.NewSnapshotWriter(path)
	Expect(err).To(BeNil())
	for _, r := range recs {
		Expect(w.Write(r)).To(BeNil())
	}
	Expect(w.Close()).To(BeNil())
}

func writeTradeDay(root string, t time.Time, recs []mbp.TradeMessage) {
	dir := mbp.FeedcodeDir(root, mbp.Kind_Trades, "XXBTZUSD")
	Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
	path := mbp.DayFilePath(root, mbp.Kind_Trades, "XXBTZUSD", mbp.YMDFileName(t))
	w, err := mbp.NewTradeWriter(path)
	Expect(err).To(BeNil())
	for _, r := range recs {
		Expect(w.Write(r)).To(BeNil())
	}
	Expect(w.Close()).To(BeNil())
}

var _ = Describe("RawSnapshotLoader", func() {
	It("yields an empty day cleanly (spec §8 scenario 1)", func() {
		root := GinkgoT().TempDir()
		writeSnapshotDay(root, day, nil)

		l, err := loader.NewRawSnapshotLoader(root, mbp.Asset_BTC, mbp.Market_Spot, day, day.AddDate(0, 0, 1))
		Expect(err).To(BeNil())
		defer l.Close()

		rec, err := l.Next()
		Expect(err).To(BeNil())
		Expect(rec).To(BeNil())
	})

	It("tolerates a missing intermediate day on Next but not GetData (§4.8)", func() {
		root := GinkgoT().TempDir()
		since := day
		until := day.AddDate(0, 0, 3)
		writeSnapshotDay(root, since, []mbp.SnapshotMessage{
			mbp.NewSnapshotMessage(uint64(since.Unix()), "XXBTZUSD", mbp.Market_Spot, nil, nil),
		})
		// day+2 exists, day+1 is missing
		writeSnapshotDay(root, since.AddDate(0, 0, 2), []mbp.SnapshotMessage{
			mbp.NewSnapshotMessage(uint64(since.AddDate(0, 0, 2).Unix()), "XXBTZUSD", mbp.Market_Spot, nil, nil),
		})

		l, err := loader.NewRawSnapshotLoader(root, mbp.Asset_BTC, mbp.Market_Spot, since, until)
		Expect(err).To(BeNil())
		defer l.Close()

		rec, err := l.Next()
		Expect(err).To(BeNil())
		Expect(rec).ToNot(BeNil())

		// the missing day+1 file ends iteration cleanly
		rec, err = l.Next()
		Expect(err).To(BeNil())
		Expect(rec).To(BeNil())

		_, err = l.GetData(since, until)
		Expect(err).To(MatchError(mbp.ErrMissingFile))
	})

	It("rejects an unrecognized symbol, an empty range, or a missing directory", func() {
		root := GinkgoT().TempDir()
		_, err := loader.NewRawSnapshotLoader(root, mbp.Asset(99), mbp.Market_Spot, day, day.AddDate(0, 0, 1))
		Expect(err).To(MatchError(mbp.ErrInvalidSymbol))

		_, err = loader.NewRawSnapshotLoader(root, mbp.Asset_BTC, mbp.Market_Spot, day, day)
		Expect(err).To(MatchError(mbp.ErrEmptyRange))

		_, err = loader.NewRawSnapshotLoader(filepath.Join(root, "nope"), mbp.Asset_BTC, mbp.Market_Spot, day, day.AddDate(0, 0, 1))
		Expect(err).To(MatchError(mbp.ErrMissingDirectory))
	})
})

var _ = Describe("RawTradeLoader", func() {
	It("round-trips a day of trades via GetData", func() {
		root := GinkgoT().TempDir()
		trades := []mbp.TradeMessage{
			{Time: uint64(day.Unix()) + 1, Feedcode: "XXBTZUSD", Market: mbp.Market_Spot, NTrades: 1, Price: 100, Quantity: 1, Side: mbp.Side_Bid},
			{Time: uint64(day.Unix()) + 2, Feedcode: "XXBTZUSD", Market: mbp.Market_Spot, NTrades: 1, Price: 101, Quantity: 2, Side: mbp.Side_Ask},
		}
		writeTradeDay(root, day, trades)

		l, err := loader.NewRawTradeLoader(root, mbp.Asset_BTC, mbp.Market_Spot, day, day.AddDate(0, 0, 1))
		Expect(err).To(BeNil())
		defer l.Close()

		got, err := l.GetData(day, day.AddDate(0, 0, 1))
		Expect(err).To(BeNil())
		Expect(got).To(Equal(trades))
	})
})
