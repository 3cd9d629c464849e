// Copyright (c) 2024 Neomantra Corp

package mbp_test

import (
	"io"
	"path/filepath"

	"github.com/krakenquant/mbpreplay"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Binary Codec", func() {
	Context("trade stream", func() {
		It("round-trips a handful of records through a zstd file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "trades.bin")
			w, err := mbp.NewTradeWriter(path)
			Expect(err).To(BeNil())

			trades := []mbp.TradeMessage{
				{Time: 1, Feedcode: "XADAZUSD", Market: mbp.Market_Spot, NTrades: 1, Price: 1.5, Quantity: 2.5, Side: mbp.Side_Bid},
				{Time: 2, Feedcode: "XADAZUSD", Market: mbp.Market_Spot, NTrades: 1, Price: 3.5, Quantity: 4.5, Side: mbp.Side_Ask},
			}
			for _, t := range trades {
				Expect(w.Write(t)).To(BeNil())
			}
			Expect(w.Close()).To(BeNil())

			r, err := mbp.NewTradeReader(path, "XADAZUSD", mbp.Market_Spot)
			Expect(err).To(BeNil())
			defer r.Close()

			var got []mbp.TradeMessage
			for {
				t, err := r.Next()
				if err == io.EOF {
					break
				}
				Expect(err).To(BeNil())
				got = append(got, t)
			}
			Expect(got).To(Equal(trades))
		})

		It("returns an empty stream for an empty day (spec §8 scenario 1)", func() {
			path := filepath.Join(GinkgoT().TempDir(), "empty.bin")
			w, err := mbp.NewTradeWriter(path)
			Expect(err).To(BeNil())
			Expect(w.Close()).To(BeNil())

			r, err := mbp.NewTradeReader(path, "XADAZUSD", mbp.Market_Spot)
			Expect(err).To(BeNil())
			defer r.Close()

			_, err = r.Next()
			Expect(err).To(Equal(io.EOF))
		})
	})

	Context("snapshot stream", func() {
		It("round-trips a handful of records through a zstd file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "snapshots.bin")
			w, err := mbp.NewSnapshotWriter(path)
			Expect(err).To(BeNil())

			snaps := []mbp.SnapshotMessage{
				mbp.NewSnapshotMessage(1, "XXBTZUSD", mbp.Market_Spot,
					[]mbp.PriceLevel{{Price: 100, Qty: 1}},
					[]mbp.PriceLevel{{Price: 101, Qty: 2}}),
				mbp.NewSnapshotMessage(2, "XXBTZUSD", mbp.Market_Spot, nil, nil),
			}
			for _, s := range snaps {
				Expect(w.Write(s)).To(BeNil())
			}
			Expect(w.Close()).To(BeNil())

			r, err := mbp.NewSnapshotReader(path)
			Expect(err).To(BeNil())
			defer r.Close()

			var got []mbp.SnapshotMessage
			for {
				s, err := r.Next()
				if err == io.EOF {
					break
				}
				Expect(err).To(BeNil())
				got = append(got, s)
			}
			Expect(got).To(Equal(snaps))
		})
	})
})
