// Copyright (c) 2024 Neomantra Corp

package mbp_test

import (
	"github.com/krakenquant/mbpreplay"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Wire Messages", func() {
	Context("TradeMessage round-trip", func() {
		It("decodes exactly what it encodes", func() {
			t := mbp.TradeMessage{
				Time:     10,
				Feedcode: "XADAZUSD",
				Market:   mbp.Market_Spot,
				NTrades:  1,
				Price:    10.0,
				Quantity: 20.0,
				Side:     mbp.Side_Ask,
			}
			body := mbp.EncodeTradeBody(t)
			Expect(len(body)).To(Equal(mbp.TradeMessage_BodySize))

			got, err := mbp.DecodeTradeBody(body[:], t.Feedcode, t.Market)
			Expect(err).To(BeNil())
			Expect(got).To(Equal(t))
		})
	})

	Context("SnapshotMessage construction", func() {
		It("drops zero-qty levels", func() {
			s := mbp.NewSnapshotMessage(5, "XXBTZUSD", mbp.Market_Spot,
				[]mbp.PriceLevel{{Price: 100, Qty: 1}, {Price: 99, Qty: 0}},
				[]mbp.PriceLevel{{Price: 101, Qty: 2}},
			)
			Expect(s.Bids).To(HaveLen(1))
			Expect(s.Asks).To(HaveLen(1))
		})
	})

	Context("SnapshotMessage round-trip", func() {
		It("decodes exactly what it encodes, preserving level order", func() {
			s := mbp.NewSnapshotMessage(123, "PF_XBTUSD", mbp.Market_UsdFuture,
				[]mbp.PriceLevel{{Price: 100.5, Qty: 1.25}, {Price: 99.5, Qty: 2.0}},
				[]mbp.PriceLevel{{Price: 101.5, Qty: 3.0}},
			)
			encoded := mbp.EncodeSnapshot(s)

			header, err := mbp.DecodeSnapshotHeader(encoded[:mbp.SnapshotMessage_HeaderSize])
			Expect(err).To(BeNil())
			Expect(header.Time).To(Equal(uint64(123)))

			body := encoded[mbp.SnapshotMessage_HeaderSize:]
			got, err := mbp.DecodeSnapshotBody(header, body)
			Expect(err).To(BeNil())
			Expect(got).To(Equal(s))
		})

		It("fails with BadMarketTag for an unknown market", func() {
			s := mbp.NewSnapshotMessage(1, "XXBTZUSD", mbp.Market_Spot, nil, nil)
			encoded := mbp.EncodeSnapshot(s)
			header, _ := mbp.DecodeSnapshotHeader(encoded[:mbp.SnapshotMessage_HeaderSize])
			header.MarketTag = 9999

			_, err := mbp.DecodeSnapshotBody(header, encoded[mbp.SnapshotMessage_HeaderSize:])
			Expect(err).To(MatchError(mbp.ErrBadMarketTag))
		})

		It("fails with Truncated when the body is short", func() {
			header := mbp.SnapshotHeader{Time: 1, MarketTag: uint32(mbp.Market_Spot), FeedcodeLen: 8, BidsBytes: 16, AsksBytes: 0}
			_, err := mbp.DecodeSnapshotBody(header, []byte("XXBTZUSD"))
			Expect(err).To(MatchError(mbp.ErrTruncated))
		})
	})
})
