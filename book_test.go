// Copyright (c) 2024 Neomantra Corp

package mbp_test

import (
	"github.com/krakenquant/mbpreplay"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MBPBook", func() {
	var book *mbp.MBPBook

	BeforeEach(func() {
		book = mbp.NewMBPBook("XXBTZUSD", mbp.Market_Spot)
	})

	Context("apply_delta", func() {
		It("adds a fresh level", func() {
			d := mbp.NewUpdateDelta(mbp.Side_Ask, 1)
			d.Add(1, 2)
			book.ApplyDelta(d)

			snap := book.Project(1)
			Expect(snap.Asks).To(ConsistOf(mbp.PriceLevel{Price: 1, Qty: 2}))
		})

		It("removes a level once it nets to zero", func() {
			place := mbp.NewUpdateDelta(mbp.Side_Ask, 1)
			place.Add(1, 2)
			book.ApplyDelta(place)

			cancel := mbp.NewUpdateDelta(mbp.Side_Ask, 10)
			cancel.Add(1, -2)
			book.ApplyDelta(cancel)

			snap := book.Project(10)
			Expect(snap.Asks).To(BeEmpty())
		})

		It("never exposes a near-zero level", func() {
			d := mbp.NewUpdateDelta(mbp.Side_Bid, 1)
			d.Add(7, 1e-10)
			book.ApplyDelta(d)

			snap := book.Project(1)
			Expect(snap.Bids).To(BeEmpty())
		})
	})

	Context("clone", func() {
		It("produces an independent copy", func() {
			d := mbp.NewUpdateDelta(mbp.Side_Bid, 1)
			d.Add(50, 3)
			book.ApplyDelta(d)

			clone := book.Clone()
			more := mbp.NewUpdateDelta(mbp.Side_Bid, 2)
			more.Add(51, 1)
			clone.ApplyDelta(more)

			Expect(book.Project(2).Bids).To(ConsistOf(mbp.PriceLevel{Price: 50, Qty: 3}))
			Expect(clone.Project(2).Bids).To(ConsistOf(
				mbp.PriceLevel{Price: 50, Qty: 3},
				mbp.PriceLevel{Price: 51, Qty: 1},
			))
		})
	})

	Context("end-to-end scenario: single PLACED then CANCELLED", func() {
		It("matches the seed case in spec §8.2", func() {
			placed := mbp.NewUpdateDelta(mbp.Side_Ask, 1)
			placed.Add(1, 2)
			book.ApplyDelta(placed)
			snapAt1 := book.Project(1)
			Expect(snapAt1.Asks).To(ConsistOf(mbp.PriceLevel{Price: 1, Qty: 2}))

			cancelled := mbp.NewUpdateDelta(mbp.Side_Bid, 10)
			cancelled.Add(7, -8)
			book.ApplyDelta(cancelled)
			snapAt10 := book.Project(10)
			Expect(snapAt10.Asks).To(ConsistOf(mbp.PriceLevel{Price: 1, Qty: 2}))
			Expect(snapAt10.Bids).To(ConsistOf(mbp.PriceLevel{Price: 7, Qty: -8}))
		})
	})
})
