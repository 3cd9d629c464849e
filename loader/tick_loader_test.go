// Copyright (c) 2024 Neomantra Corp

package loader_test

import (
	"github.com/krakenquant/mbpreplay"
	"github.com/krakenquant/mbpreplay/loader"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TickSnapshotLoader", func() {
	It("fills gaps across 86400 seconds (spec §8 scenario 6)", func() {
		root := GinkgoT().TempDir()
		base := uint64(day.Unix())
		writeSnapshotDay(root, day, []mbp.SnapshotMessage{
			mbp.NewSnapshotMessage(base+1, "XXBTZUSD", mbp.Market_Spot, []mbp.PriceLevel{{Price: 1, Qty: 1}}, nil),
			mbp.NewSnapshotMessage(base+2, "XXBTZUSD", mbp.Market_Spot, []mbp.PriceLevel{{Price: 2, Qty: 1}}, nil),
			mbp.NewSnapshotMessage(base+10, "XXBTZUSD", mbp.Market_Spot, []mbp.PriceLevel{{Price: 10, Qty: 1}}, nil),
		})

		l, err := loader.NewTickSnapshotLoader(root, mbp.Asset_BTC, mbp.Market_Spot, day, day.AddDate(0, 0, 1))
		Expect(err).To(BeNil())
		defer l.Close()

		count := 0
		var lastBidPrice float64
		for {
			rec, err := l.Next()
			Expect(err).To(BeNil())
			if rec == nil {
				break
			}
			switch {
			case count < 1:
				Expect(rec.Bids).To(BeEmpty())
			case count < 2:
				Expect(rec.Bids[0].Price).To(Equal(1.0))
			case count < 10:
				Expect(rec.Bids[0].Price).To(Equal(2.0))
			default:
				Expect(rec.Bids[0].Price).To(Equal(10.0))
			}
			if len(rec.Bids) > 0 {
				lastBidPrice = rec.Bids[0].Price
			}
			count++
		}
		Expect(count).To(Equal(86400))
		Expect(lastBidPrice).To(Equal(10.0))
	})
})

var _ = Describe("TickTradeLoader", func() {
	It("emits 86400 lists whose concatenation equals the raw stream", func() {
		root := GinkgoT().TempDir()
		base := uint64(day.Unix())
		trades := []mbp.TradeMessage{
			{Time: base + 1, Feedcode: "XXBTZUSD", Market: mbp.Market_Spot, NTrades: 1, Price: 100, Quantity: 1, Side: mbp.Side_Bid},
			{Time: base + 1, Feedcode: "XXBTZUSD", Market: mbp.Market_Spot, NTrades: 1, Price: 101, Quantity: 2, Side: mbp.Side_Ask},
			{Time: base + 5, Feedcode: "XXBTZUSD", Market: mbp.Market_Spot, NTrades: 1, Price: 102, Quantity: 3, Side: mbp.Side_Bid},
		}
		writeTradeDay(root, day, trades)

		l, err := loader.NewTickTradeLoader(root, mbp.Asset_BTC, mbp.Market_Spot, day, day.AddDate(0, 0, 1))
		Expect(err).To(BeNil())
		defer l.Close()

		var all []mbp.TradeMessage
		count := 0
		for {
			recs, ok, err := l.Next()
			Expect(err).To(BeNil())
			if !ok {
				break
			}
			all = append(all, recs...)
			count++
		}
		Expect(count).To(Equal(86400))
		Expect(all).To(Equal(trades))
	})
})
