// Copyright (c) 2024 Neomantra Corp

package mbp_test

import (
	"github.com/krakenquant/mbpreplay"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/valyala/fastjson"
)

func mustParse(s string) *fastjson.Value {
	var p fastjson.Parser
	v, err := p.Parse(s)
	Expect(err).To(BeNil())
	return v
}

var _ = Describe("Event-to-Delta Mapping", func() {
	It("maps PLACED to a single positive delta (spec §8.2)", func() {
		v := mustParse(`{"type":"OrderPlaced","timestamp":1000,"direction":"Sell","limitPrice":"1","quantity":"2"}`)
		deltas, err := mbp.DeltaFromEvent(v)
		Expect(err).To(BeNil())
		Expect(deltas).To(HaveLen(1))
		Expect(deltas[0].Side).To(Equal(mbp.Side_Ask))
		Expect(deltas[0].Timestamp).To(Equal(uint64(1)))
		Expect(deltas[0].Deltas[1]).To(Equal(2.0))
	})

	It("maps CANCELLED to a single negative delta (spec §8.2)", func() {
		v := mustParse(`{"type":"OrderCancelled","timestamp":10000,"direction":"Buy","limitPrice":"7","quantity":"8"}`)
		deltas, err := mbp.DeltaFromEvent(v)
		Expect(err).To(BeNil())
		Expect(deltas).To(HaveLen(1))
		Expect(deltas[0].Side).To(Equal(mbp.Side_Bid))
		Expect(deltas[0].Timestamp).To(Equal(uint64(10)))
		Expect(deltas[0].Deltas[7]).To(Equal(-8.0))
	})

	It("maps UPDATED to two merged entries when side matches (spec §8.3)", func() {
		v := mustParse(`{"type":"OrderUpdated","timestamp":2000,
			"newDirection":"Buy","newLimitPrice":"3","newQuantity":"4",
			"oldDirection":"Buy","oldLimitPrice":"5","oldQuantity":"6"}`)
		deltas, err := mbp.DeltaFromEvent(v)
		Expect(err).To(BeNil())
		Expect(deltas).To(HaveLen(1))
		Expect(deltas[0].Side).To(Equal(mbp.Side_Bid))
		Expect(deltas[0].Timestamp).To(Equal(uint64(2)))
		Expect(deltas[0].Deltas[3]).To(Equal(4.0))
		Expect(deltas[0].Deltas[5]).To(Equal(-6.0))
	})

	It("maps UPDATED to two separate deltas when side flips", func() {
		v := mustParse(`{"type":"OrderUpdated","timestamp":2000,
			"newDirection":"Sell","newLimitPrice":"3","newQuantity":"4",
			"oldDirection":"Buy","oldLimitPrice":"5","oldQuantity":"6"}`)
		deltas, err := mbp.DeltaFromEvent(v)
		Expect(err).To(BeNil())
		Expect(deltas).To(HaveLen(2))
	})

	It("maps EXECUTION to symmetric BID/ASK debits (spec §8.4)", func() {
		v := mustParse(`{"type":"Execution","timestamp":2000,"price":"68717.5","quantity":"3000"}`)
		deltas, err := mbp.DeltaFromEvent(v)
		Expect(err).To(BeNil())
		Expect(deltas).To(HaveLen(2))
		Expect(deltas[0].Side).To(Equal(mbp.Side_Bid))
		Expect(deltas[0].Deltas[68717.5]).To(Equal(-3000.0))
		Expect(deltas[1].Side).To(Equal(mbp.Side_Ask))
		Expect(deltas[1].Deltas[68717.5]).To(Equal(-3000.0))
	})

	It("emits nothing for REJECTED / EDIT_REJECTED", func() {
		for _, tag := range []string{"OrderRejected", "OrderEditRejected"} {
			v := mustParse(`{"type":"` + tag + `","timestamp":1000}`)
			deltas, err := mbp.DeltaFromEvent(v)
			Expect(err).To(BeNil())
			Expect(deltas).To(BeEmpty())
		}
	})

	It("fails with MalformedEvent on an unrecognized tag", func() {
		v := mustParse(`{"type":"SomethingElse","timestamp":1000}`)
		_, err := mbp.DeltaFromEvent(v)
		Expect(err).To(MatchError(mbp.ErrMalformedEvent))
	})

	Context("coalescing", func() {
		It("merges consecutive deltas sharing (timestamp, side)", func() {
			a := mbp.NewUpdateDelta(mbp.Side_Bid, 1)
			a.Add(1, 1)
			b := mbp.NewUpdateDelta(mbp.Side_Bid, 1)
			b.Add(2, 1)
			c := mbp.NewUpdateDelta(mbp.Side_Ask, 1)
			c.Add(3, 1)

			merged := mbp.CoalesceDeltas([]mbp.UpdateDelta{a, b, c})
			Expect(merged).To(HaveLen(2))
			Expect(merged[0].Deltas[1]).To(Equal(1.0))
			Expect(merged[0].Deltas[2]).To(Equal(1.0))
		})
	})
})
